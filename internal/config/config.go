// Package config loads fa.yaml and applies environment and command-line
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/fa-toolkit/internal/logging"
)

// DefaultPath is read when no path is given and FA_CONFIG is unset.
const DefaultPath = "fa.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	Store  StoreConfig  `yaml:"store" json:"store" mapstructure:"store"`
	HTTP   HTTPConfig   `yaml:"http" json:"http" mapstructure:"http"`
	Log    LogConfig    `yaml:"log" json:"log" mapstructure:"log"`
	Render RenderConfig `yaml:"render" json:"render" mapstructure:"render"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend" json:"backend" mapstructure:"backend"`
	Dir           string `yaml:"dir" json:"dir" mapstructure:"dir"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db" mapstructure:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix" mapstructure:"redis_prefix"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr" mapstructure:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" mapstructure:"level"`
}

type RenderConfig struct {
	Width  int `yaml:"width" json:"width" mapstructure:"width"`
	Height int `yaml:"height" json:"height" mapstructure:"height"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     BackendFile,
			Dir:         ".fa/records",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "fa:record:",
		},
		HTTP:   HTTPConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
		Render: RenderConfig{Width: 800, Height: 600},
	}
}

// envKeys maps environment variables to dotted configuration keys.
var envKeys = map[string]string{
	"FA_STORE_BACKEND":        "store.backend",
	"FA_STORE_DIR":            "store.dir",
	"FA_STORE_REDIS_ADDR":     "store.redis_addr",
	"FA_STORE_REDIS_PASSWORD": "store.redis_password",
	"FA_STORE_REDIS_DB":       "store.redis_db",
	"FA_STORE_REDIS_PREFIX":   "store.redis_prefix",
	"FA_HTTP_ADDR":            "http.addr",
	"FA_LOG_LEVEL":            "log.level",
	"FA_RENDER_WIDTH":         "render.width",
	"FA_RENDER_HEIGHT":        "render.height",
}

// Load builds the configuration: defaults, then the YAML file, then
// FA_* environment variables, then the key=value pairs in sets.
//
// An empty path falls back to FA_CONFIG and then DefaultPath. Only an
// explicitly named file is required to exist.
func Load(path string, sets []string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FA_CONFIG")
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Set(sets...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies the FA_* variables that lookup reports as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	names := make([]string, 0, len(envKeys))
	for name := range envKeys {
		names = append(names, name)
	}
	sort.Strings(names)

	var sets []string
	for _, name := range names {
		if v, ok := lookup(name); ok {
			sets = append(sets, envKeys[name]+"="+v)
		}
	}
	if err := c.Set(sets...); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Set applies "section.key=value" pairs. Values are converted to the
// field type, so "render.width=1024" sets an int.
func (c *Config) Set(pairs ...string) error {
	if len(pairs) == 0 {
		return nil
	}
	tree := make(map[string]interface{})
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid setting %q: want key=value", p)
		}
		section, field, ok := strings.Cut(strings.TrimSpace(key), ".")
		if !ok || section == "" || field == "" {
			return fmt.Errorf("invalid setting key %q: want section.key", key)
		}
		m, _ := tree[section].(map[string]interface{})
		if m == nil {
			m = make(map[string]interface{})
			tree[section] = m
		}
		m[field] = value
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("invalid setting: %w", err)
	}
	return nil
}

// Validate checks values that cannot be caught by decoding.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
