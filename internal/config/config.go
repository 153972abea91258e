// Package config loads the optional .typeextractor.toml (or .yaml) file.
// Command-line flags always win over values read here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultNames are looked up, in order, by Discover.
var DefaultNames = []string{".typeextractor.toml", ".typeextractor.yaml", ".typeextractor.yml"}

type Config struct {
	Version int         `toml:"version" yaml:"version"`
	Backend string      `toml:"backend" yaml:"backend"`
	Load    LoadOptions `toml:"load" yaml:"load"`
	Output  Output      `toml:"output" yaml:"output"`
	Log     Log         `toml:"log" yaml:"log"`
	Metrics Metrics     `toml:"metrics" yaml:"metrics"`
	Tracing Tracing     `toml:"tracing" yaml:"tracing"`
	MCP     MCP         `toml:"mcp" yaml:"mcp"`
}

type LoadOptions struct {
	IncludeTests bool     `toml:"include_tests" yaml:"include_tests"`
	BuildTags    []string `toml:"build_tags" yaml:"build_tags"`
	ExcludeDirs  []string `toml:"exclude_dirs" yaml:"exclude_dirs"`
}

type Output struct {
	Format string `toml:"format" yaml:"format"` // text|json
	Dir    string `toml:"dir" yaml:"dir"`
	Indent *bool  `toml:"indent" yaml:"indent"`
}

type Log struct {
	Level string `toml:"level" yaml:"level"` // debug|info|warn|error
}

type Metrics struct {
	Textfile string `toml:"textfile" yaml:"textfile"`
}

type Tracing struct {
	Endpoint string `toml:"endpoint" yaml:"endpoint"`
	Insecure bool   `toml:"insecure" yaml:"insecure"`
}

type MCP struct {
	ServerName string `toml:"server_name" yaml:"server_name"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads path, decoding YAML for .yaml/.yml and TOML otherwise.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Discover returns the first of DefaultNames present in dir, or "".
func Discover(dir string) string {
	for _, name := range DefaultNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// IndentJSON reports whether JSON output is indented; true unless disabled.
func (c *Config) IndentJSON() bool {
	return c.Output.Indent == nil || *c.Output.Indent
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Backend) == "" {
		cfg.Backend = "types"
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "warn"
	}
	if strings.TrimSpace(cfg.MCP.ServerName) == "" {
		cfg.MCP.ServerName = "typeextractor-go"
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	if err := ValidateBackend(cfg.Backend); err != nil {
		return err
	}
	if err := ValidateFormat(cfg.Output.Format); err != nil {
		return err
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error, got %q", cfg.Log.Level)
	}
	for i, p := range cfg.Load.ExcludeDirs {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("load.exclude_dirs[%d] must not be empty", i)
		}
	}
	return nil
}

// ValidateBackend checks a backend name given in a file or on the command line.
func ValidateBackend(b string) error {
	if b != "types" && b != "syntax" {
		return fmt.Errorf("backend must be one of: types, syntax, got %q", b)
	}
	return nil
}

// ValidateFormat checks an output format name.
func ValidateFormat(f string) error {
	if f != "text" && f != "json" {
		return fmt.Errorf("output.format must be one of: text, json, got %q", f)
	}
	return nil
}
