// Package config loads brandmanual settings from defaults, an optional YAML
// file, a .env file and BRANDMANUAL_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: BRANDMANUAL_STORAGE__DRIVER sets storage.driver.
const EnvPrefix = "BRANDMANUAL_"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Template engines for document rendering.
const (
	RendererPongo2     = "pongo2"
	RendererGoTemplate = "go-template"
)

// Redis holds the redis storage connection settings.
type Redis struct {
	Addr     string `yaml:"addr" koanf:"addr"`
	Password string `yaml:"password,omitempty" koanf:"password"`
	DB       int    `yaml:"db" koanf:"db"`
	Prefix   string `yaml:"prefix" koanf:"prefix"`
}

// Storage selects and configures the key/value backend.
type Storage struct {
	Driver string `yaml:"driver" koanf:"driver"`
	Path   string `yaml:"path" koanf:"path"`
	Redis  Redis  `yaml:"redis" koanf:"redis"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// Server configures the HTTP service.
type Server struct {
	Port     int           `yaml:"port" koanf:"port"`
	AllowAll bool          `yaml:"allow_all" koanf:"allow_all"`
	Timeout  time.Duration `yaml:"timeout" koanf:"timeout"`
}

// Chrome configures PDF rendering.
type Chrome struct {
	Path    string        `yaml:"path,omitempty" koanf:"path"`
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// Config is the full settings tree.
type Config struct {
	Storage       Storage       `yaml:"storage" koanf:"storage"`
	OutputDir     string        `yaml:"output_dir" koanf:"output_dir"`
	Log           Log           `yaml:"log" koanf:"log"`
	Server        Server        `yaml:"server" koanf:"server"`
	Chrome        Chrome        `yaml:"chrome" koanf:"chrome"`
	AutoSaveDelay time.Duration `yaml:"autosave_delay" koanf:"autosave_delay"`
	PresetsFile   string        `yaml:"presets_file,omitempty" koanf:"presets_file"`
	Renderer      string        `yaml:"renderer" koanf:"renderer"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Driver: DriverFile,
			Path:   "brandmanual.json",
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "brandmanual:",
			},
		},
		OutputDir: "out",
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Server: Server{
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Chrome: Chrome{
			Timeout: 60 * time.Second,
		},
		AutoSaveDelay: time.Second,
		Renderer:      RendererPongo2,
	}
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file layer.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: access %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

var (
	validDrivers    = map[string]bool{DriverMemory: true, DriverFile: true, DriverSQLite: true, DriverRedis: true}
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"console": true, "json": true}
	validRenderers  = map[string]bool{RendererPongo2: true, RendererGoTemplate: true}
)

// Validate checks that the configuration holds usable values.
func (c *Config) Validate() error {
	driver := strings.ToLower(c.Storage.Driver)
	if !validDrivers[driver] {
		return fmt.Errorf("config: invalid storage driver %q: must be one of memory, file, sqlite, redis", c.Storage.Driver)
	}
	if (driver == DriverFile || driver == DriverSQLite) && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("config: storage path is required for the %s driver", driver)
	}
	if driver == DriverRedis && strings.TrimSpace(c.Storage.Redis.Addr) == "" {
		return errors.New("config: redis addr is required for the redis driver")
	}
	if c.Storage.Redis.DB < 0 {
		return errors.New("config: redis db must be non-negative")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("config: output_dir is required")
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("config: invalid log level %q", c.Log.Level)
	}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("config: invalid log format %q: must be console or json", c.Log.Format)
	}
	if !validRenderers[strings.ToLower(c.Renderer)] {
		return fmt.Errorf("config: invalid renderer %q: must be pongo2 or go-template", c.Renderer)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Server.Timeout < 0 || c.Chrome.Timeout < 0 || c.AutoSaveDelay < 0 {
		return errors.New("config: durations must be non-negative")
	}
	return nil
}

// Addr is the listen address of the HTTP service.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
