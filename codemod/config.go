package codemod

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/keyfold/internal/locate"
	"github.com/gnolang/keyfold/internal/syntax"
	"github.com/gnolang/keyfold/internal/transform"
)

// DefaultConfigFile is the file `keyfold init` writes and the CLI reads by
// default.
const DefaultConfigFile = ".keyfold.yaml"

// Config is the on-disk configuration of a migration run.
type Config struct {
	// Package is the module whose imports are followed, e.g.
	// "@tanstack/react-query".
	Package    string             `yaml:"package"`
	Extensions []string           `yaml:"extensions"`
	Ignore     []string           `yaml:"ignore"`
	Passes     []transform.Config `yaml:"passes"`
}

var defaultIgnore = []string{"node_modules", ".git", "dist", "build"}

func DefaultConfig() Config {
	return Config{
		Package:    locate.DefaultPackage,
		Extensions: []string{".js", ".jsx", ".ts", ".tsx"},
		Ignore:     append([]string(nil), defaultIgnore...),
		Passes:     transform.DefaultPasses(),
	}
}

// LoadConfig reads the configuration at path. An empty path or a missing
// file yields the defaults, and fields left out of the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	var file Config
	if err := yaml.NewDecoder(f).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if file.Package != "" {
		config.Package = file.Package
	}
	if file.Extensions != nil {
		config.Extensions = file.Extensions
	}
	if file.Ignore != nil {
		config.Ignore = file.Ignore
	}
	if file.Passes != nil {
		config.Passes = file.Passes
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return config, nil
}

func (c Config) Validate() error {
	if len(c.Passes) == 0 {
		return errors.New("no passes configured")
	}
	for i, p := range c.Passes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pass %d: %w", i, err)
		}
	}
	for _, ext := range c.Extensions {
		if _, err := syntax.LanguageForFile("file" + ext); err != nil {
			return err
		}
	}
	return nil
}

// Write stores c as YAML at path.
func (c Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
