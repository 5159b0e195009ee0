package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/database"
	"github.com/Lumos-Labs-HQ/starseed/internal/database/mongodb"
	"github.com/Lumos-Labs-HQ/starseed/internal/export"
	"github.com/Lumos-Labs-HQ/starseed/internal/typemap"
)

type Config struct {
	Version   string    `json:"version" mapstructure:"version"`
	ModelPath string    `json:"model_path" mapstructure:"model_path"`
	OutputDir string    `json:"output_dir" mapstructure:"output_dir"`
	Formats   []string  `json:"formats" mapstructure:"formats"`
	Seed      int64     `json:"seed" mapstructure:"seed"`
	Progress  bool      `json:"progress" mapstructure:"progress"`
	Database  Database  `json:"database" mapstructure:"database"`
	Warehouse Warehouse `json:"warehouse" mapstructure:"warehouse"`
	Logging   Logging   `json:"logging" mapstructure:"logging"`

	// Seeded reports whether seed was set explicitly.
	Seeded bool `json:"-" mapstructure:"-"`
}

type Database struct {
	Provider     string `json:"provider" mapstructure:"provider"`
	URLEnv       string `json:"url_env" mapstructure:"url_env"`
	BatchSize    int    `json:"batch_size" mapstructure:"batch_size"`
	DropExisting bool   `json:"drop_existing" mapstructure:"drop_existing"`
}

type Warehouse struct {
	Adapter   string            `json:"adapter" mapstructure:"adapter"`
	Name      string            `json:"name" mapstructure:"name"`
	Overrides map[string]string `json:"overrides,omitempty" mapstructure:"overrides"`
}

type Logging struct {
	Level string `json:"level" mapstructure:"level"`
}

// Load reads the config from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Seeded = v.IsSet("seed")

	// Set defaults
	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = "starseed.model.yml"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = []string{export.FormatCSV}
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgresql"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}
	if cfg.Database.BatchSize <= 0 {
		cfg.Database.BatchSize = database.DefaultBatchSize
	}
	if cfg.Warehouse.Adapter == "" {
		cfg.Warehouse.Adapter = "postgres"
	}
	if cfg.Warehouse.Name == "" {
		cfg.Warehouse.Name = "seeds"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	if !mongodb.IsProvider(c.Database.Provider) {
		if _, err := database.NewAdapter(c.Database.Provider); err != nil {
			return err
		}
	}

	for _, f := range c.Formats {
		supported := false
		for _, known := range export.Formats {
			if strings.EqualFold(strings.TrimSpace(f), known) {
				supported = true
				break
			}
		}
		if !supported {
			return apperrors.Configf("unsupported format %q. Supported formats: %v", f, export.Formats)
		}
	}

	if _, err := c.TypeMap(); err != nil {
		return err
	}

	if c.OutputDir == "" {
		return apperrors.Configf("output_dir cannot be empty")
	}

	return nil
}

// TypeMap returns the warehouse type map with the configured overrides applied.
func (c *Config) TypeMap() (*typemap.TypeMap, error) {
	tm, err := typemap.ForAdapter(c.Warehouse.Adapter)
	if err != nil {
		return nil, err
	}
	if err := tm.ApplyOverrides(c.Warehouse.Overrides); err != nil {
		return nil, err
	}
	return tm, nil
}
