package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/theme"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	UI      UIConfig      `yaml:"ui" mapstructure:"ui"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend" mapstructure:"backend"`
	Path       string `yaml:"path" mapstructure:"path"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

type SearchConfig struct {
	Fields []string `yaml:"fields" mapstructure:"fields"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

type UIConfig struct {
	Theme string `yaml:"theme" mapstructure:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    BackendJSON,
			Path:       "storage.json",
			SQLitePath: "phonebook.db",
		},
		Search: SearchConfig{
			Fields: []string{contact.FieldName, contact.FieldNumber},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		UI: UIConfig{
			Theme: theme.Names[0],
		},
	}
}

// Load reads the configuration. An explicit file must exist; otherwise
// config.yaml is looked up in the working directory and the user config
// directory, and defaults are used when none is found. Environment
// variables prefixed PHONEBOOK_ override both, and a .env file in the
// working directory is read first.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "phonebook"))
		}
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "phonebook"))
	}

	v.SetEnvPrefix("PHONEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override keys
// that are absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("search.fields", cfg.Search.Fields)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("ui.theme", cfg.UI.Theme)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for the json backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("config: storage.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("config: storage.backend %q is invalid (must be json or sqlite)", c.Storage.Backend)
	}

	if len(c.Search.Fields) == 0 {
		return fmt.Errorf("config: search.fields must name at least one field")
	}
	for _, f := range c.Search.Fields {
		if !slices.Contains(contact.Fields, f) {
			return fmt.Errorf("config: search.fields has unknown field %q", f)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log.format %q is invalid (must be text or json)", c.Log.Format)
	}

	if !theme.Exists(c.UI.Theme) {
		return fmt.Errorf("config: ui.theme %q is invalid (must be one of %s)", c.UI.Theme, strings.Join(theme.Names, ", "))
	}
	return nil
}

// StoragePath returns the location used by the configured backend.
func (c *Config) StoragePath() string {
	if c.Storage.Backend == BackendSQLite {
		return c.Storage.SQLitePath
	}
	return c.Storage.Path
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
