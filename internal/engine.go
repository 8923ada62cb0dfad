package internal

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/keyfold/internal/locate"
	"github.com/gnolang/keyfold/internal/nolint"
	"github.com/gnolang/keyfold/internal/syntax"
	"github.com/gnolang/keyfold/internal/transform"
	tt "github.com/gnolang/keyfold/internal/types"
)

// Engine runs the configured migration passes over files.
// The engine itself holds no per-file state, so Run may be called from
// several goroutines at once.
type Engine struct {
	pkg    string
	passes []transform.Config
	logger *zap.Logger
	cache  *Cache
}

// NewEngine creates an engine for the given passes, which run in order.
func NewEngine(pkg string, passes []transform.Config, logger *zap.Logger) (*Engine, error) {
	if pkg == "" {
		pkg = locate.DefaultPackage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for i, p := range passes {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pass %d: %w", i, err)
		}
	}
	return &Engine{pkg: pkg, passes: passes, logger: logger}, nil
}

// SetCache makes Run consult and fill c.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

// Fingerprint identifies the configuration for cache validation.
func (e *Engine) Fingerprint() string {
	return fmt.Sprintf("%s|%+v", e.pkg, e.passes)
}

// Run migrates the file at filename. The file is not written.
func (e *Engine) Run(filename string) (*tt.Result, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if e.cache != nil {
		if res, ok := e.cache.Get(filename, source, e.Fingerprint()); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return res, nil
		}
	}

	res, err := e.RunSource(filename, source)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, source, e.Fingerprint(), res); err != nil {
			e.logger.Warn("failed to update cache", zap.String("file", filename), zap.Error(err))
		}
	}
	return res, nil
}

// RunSource migrates source as if it were the contents of filename. The
// extension of filename selects the grammar.
func (e *Engine) RunSource(filename string, source []byte) (*tt.Result, error) {
	lang, err := syntax.LanguageForFile(filename)
	if err != nil {
		return nil, err
	}

	res := &tt.Result{Filename: filename, Original: source}

	current := source
	// remaps[i] maps the output of pass i back onto its input.
	var remaps []*syntax.Remap
	for i, pass := range e.passes {
		out, remap, issues, stats, err := e.runPass(lang, filename, current, pass)
		if err != nil {
			return nil, fmt.Errorf("pass %d (%s): %w", i, pass.KeyName, err)
		}

		for _, issue := range issues {
			res.Issues = append(res.Issues, relocate(issue, source, remaps))
		}
		res.Rewritten += stats.Rewritten
		res.Skipped += stats.Skipped
		res.Failed += stats.Failed

		if remap != nil {
			current = out
			remaps = append(remaps, remap)
		}
	}

	res.Output = current
	return res, nil
}

// runPass applies one pass. When nothing was replaced, remap is nil and
// out is the input.
func (e *Engine) runPass(
	lang syntax.Language,
	filename string,
	source []byte,
	pass transform.Config,
) (out []byte, remap *syntax.Remap, issues []tt.Issue, stats transform.Stats, err error) {
	f, err := syntax.Parse(lang, filename, source)
	if err != nil {
		return nil, nil, nil, stats, fmt.Errorf("error parsing file: %w", err)
	}
	defer f.Close()

	if f.HasErrors() {
		e.logger.Debug("file has syntax errors, affected call sites are left alone", zap.String("file", filename))
	}

	replacer := transform.NewReplacer(pass, f, filename, e.logger)
	ignores := nolint.ParseComments(f)
	replace := func(call *syntax.Call) syntax.Node {
		if ignores.IsIgnored(call.Span.Start, pass.KeyName) {
			e.logger.Debug("call site ignored by comment",
				zap.String("file", filename),
				zap.Int("line", call.Start.Line),
			)
			return call
		}
		return replacer.Replace(call)
	}

	// client methods first, then hooks, then cache lookups
	steps := []struct {
		locator locate.Locator
		names   []string
	}{
		{locate.NewQueryClientLocator(f, e.pkg), pass.QueryClientMethods},
		{locate.NewHookLocator(f, e.pkg), pass.Hooks},
		{locate.NewQueryCacheLocator(f, e.pkg), nil},
	}
	for _, step := range steps {
		if err := step.locator.Execute(step.names, replace); err != nil {
			return nil, nil, nil, stats, err
		}
	}

	issues, stats = replacer.Issues(), replacer.Stats()
	if !f.Edited() {
		return source, nil, issues, stats, nil
	}
	out, remap = f.Output()
	return out, remap, issues, stats, nil
}

// relocate moves an issue found in the output of earlier passes back onto
// the original source.
func relocate(issue tt.Issue, original []byte, remaps []*syntax.Remap) tt.Issue {
	if len(remaps) == 0 {
		return issue
	}
	start, end := uint(issue.Start.Offset), uint(issue.End.Offset)
	for i := len(remaps) - 1; i >= 0; i-- {
		start = remaps[i].Offset(start)
		end = remaps[i].Offset(end)
	}
	if end < start {
		end = start
	}
	issue.Start = syntax.PositionAt(issue.Filename, original, start)
	issue.End = syntax.PositionAt(issue.Filename, original, end)
	return issue
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits content into lines.
func NewSourceCode(content []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(content), "\n")}
}
