// Package codemod is the entry point for running the query-key migration
// over files and directories.
package codemod

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/keyfold/internal"
	tt "github.com/gnolang/keyfold/internal/types"
)

type Engine interface {
	Run(filename string) (*tt.Result, error)
	RunSource(filename string, source []byte) (*tt.Result, error)
}

// New builds an engine from a loaded configuration.
func New(config Config, logger *zap.Logger) (*internal.Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return internal.NewEngine(config.Package, config.Passes, logger)
}

// Options control how paths are expanded into files and processed.
type Options struct {
	Extensions []string
	// Ignore holds base names or glob patterns of files and directories to
	// skip while walking.
	Ignore []string
	// Jobs bounds the files processed at once. Zero means runtime.NumCPU().
	Jobs int
	// Progress receives a progress bar for directory runs. Nil disables it.
	Progress io.Writer
}

// OptionsFrom derives processing options from a configuration.
func OptionsFrom(config Config) Options {
	return Options{Extensions: config.Extensions, Ignore: config.Ignore}
}

type Processor func(engine Engine, filename string) (*tt.Result, error)

func ProcessFile(engine Engine, filename string) (*tt.Result, error) {
	return engine.Run(filename)
}

func ProcessSource(engine Engine, filename string, source []byte) (*tt.Result, error) {
	return engine.RunSource(filename, source)
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	opts Options,
	processor Processor,
) ([]*tt.Result, error) {
	results := []*tt.Result{}
	for _, path := range paths {
		res, err := ProcessPath(ctx, logger, engine, path, opts, processor)
		results = append(results, res...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return results, err
		}
	}
	return results, nil
}

// ProcessPath migrates a single file or every matching file below a
// directory. Files that fail to process are logged and left out of the
// results. When ctx is cancelled the results gathered so far are returned
// together with the context error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	opts Options,
	processor Processor,
) ([]*tt.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !opts.hasDesiredExtension(path) {
			return []*tt.Result{}, nil
		}
		res, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []*tt.Result{res}, nil
	}

	files, err := opts.collect(path)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription(path),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(opts.Progress) }),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		results = make([]*tt.Result, 0, len(files))
	)

	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := processor(engine, filePath)
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				logger.Error("Error processing file", zap.String("file", filePath), zap.Error(err))
				return nil
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (o Options) collect(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && o.ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && o.hasDesiredExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

func (o Options) ignored(name string) bool {
	for _, pattern := range o.Ignore {
		if pattern == name {
			return true
		}
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (o Options) hasDesiredExtension(path string) bool {
	exts := o.Extensions
	if exts == nil {
		exts = DefaultConfig().Extensions
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
