package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	BackendTrie   = "trie"
	BackendSQLite = "sqlite"
)

type Config struct {
	Lookup LookupConfig `yaml:"lookup"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// LookupConfig configures the interactive field.
type LookupConfig struct {
	URL         string        `yaml:"url"`
	Delay       time.Duration `yaml:"delay"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxVisible  int           `yaml:"max_visible"`
	Prompt      string        `yaml:"prompt"`
	Placeholder string        `yaml:"placeholder"`
}

// ServerConfig configures `gsuggest serve`.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
	Backend  string `yaml:"backend"`
	Catalog  string `yaml:"catalog"`
	Database string `yaml:"database"`
	Limit    int    `yaml:"limit"`
	Fuzzy    bool   `yaml:"fuzzy"`
	Watch    bool   `yaml:"watch"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Clean bool   `yaml:"clean"`
}

func Default() *Config {
	return &Config{
		Lookup: LookupConfig{
			URL:         "http://127.0.0.1:7070/countries",
			Delay:       300 * time.Millisecond,
			Timeout:     5 * time.Second,
			MaxVisible:  8,
			Prompt:      "> ",
			Placeholder: "Type a country",
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:7070",
			BasePath: "/countries",
			Backend:  BackendTrie,
			Limit:    10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from GSUGGEST_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("GSUGGEST_LOOKUP_URL"); v != "" {
		c.Lookup.URL = v
	}
	if v := getenv("GSUGGEST_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("GSUGGEST_CATALOG"); v != "" {
		c.Server.Catalog = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if u, err := url.Parse(c.Lookup.URL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("lookup.url %q must be an absolute URL", c.Lookup.URL))
	}
	if c.Lookup.Delay < 0 {
		result = multierror.Append(result, fmt.Errorf("lookup.delay must not be negative"))
	}
	if c.Lookup.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("lookup.timeout must be positive"))
	}
	if c.Lookup.MaxVisible < 0 {
		result = multierror.Append(result, fmt.Errorf("lookup.max_visible must not be negative"))
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		result = multierror.Append(result, fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath))
	}
	if c.Server.Backend != BackendTrie && c.Server.Backend != BackendSQLite {
		result = multierror.Append(result, fmt.Errorf("server.backend %q must be %q or %q", c.Server.Backend, BackendTrie, BackendSQLite))
	}
	if c.Server.Limit < 0 {
		result = multierror.Append(result, fmt.Errorf("server.limit must not be negative"))
	}
	if c.Server.Watch && c.Server.Catalog == "" {
		result = multierror.Append(result, fmt.Errorf("server.watch requires server.catalog"))
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}

	return result.ErrorOrNil()
}
