package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"markestedt/ahkgen/script"
)

type Config struct {
	Script  ScriptConfig  `toml:"script"`
	Web     WebConfig     `toml:"web"`
	History HistoryConfig `toml:"history"`

	path string
}

type ScriptConfig struct {
	DefaultHotkey   string `toml:"default_hotkey" validate:"required,hotkey"`
	WindowTitle     string `toml:"window_title" validate:"required"`
	OutputPath      string `toml:"output_path" validate:"required"`
	CopyToClipboard bool   `toml:"copy_to_clipboard"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port" validate:"min=1,max=65535"`
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("hotkey", func(fl validator.FieldLevel) bool {
		return script.IsKnownHotkey(fl.Field().String())
	})
	return v
}

// Default configuration
func Default() *Config {
	return &Config{
		Script: ScriptConfig{
			DefaultHotkey:   script.DefaultHotkey,
			WindowTitle:     script.DefaultWindowTitle,
			OutputPath:      script.DefaultOutputPath,
			CopyToClipboard: false,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    8765,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Dir returns the per-user configuration directory, creating it if needed
func Dir() (string, error) {
	base := os.Getenv("APPDATA")
	if base == "" {
		var err error
		base, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate config directory: %w", err)
		}
	}

	configDir := filepath.Join(base, "ahkgen")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigPath returns the path to the default configuration file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the TOML file at path, or from the
// default location when path is empty.
// If the file doesn't exist, it creates it with default values
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.path = path

	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the configuration back to its TOML file
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(c)
}

// Clone returns a copy that saves to the same file
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
