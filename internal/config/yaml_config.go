package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"socialpulse/internal/growth"
	"socialpulse/internal/loader"
)

// YAMLConfig represents the structure of the config.yaml file.
// Settings that are awkward to express as env vars live here.
type YAMLConfig struct {
	Loader        LoaderConfig        `yaml:"loader"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// LoaderConfig remaps input columns and adds timestamp layouts.
type LoaderConfig struct {
	Columns     loader.Columns `yaml:"columns"`
	TimeLayouts []string       `yaml:"time_layouts,omitempty"` // Go reference-time layouts
}

// NotificationsConfig lists who receives ingestion e-mails.
type NotificationsConfig struct {
	Recipients []string `yaml:"recipients"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Recipients returns the notification recipients, or nil.
func (c *YAMLConfig) Recipients() []string {
	if c == nil {
		return nil
	}
	return c.Notifications.Recipients
}

// LoaderOptions combines env settings with the optional YAML loader section.
func (c *Config) LoaderOptions(y *YAMLConfig) loader.Options {
	opts := loader.DefaultOptions()
	opts.MinSubscribers = c.MinSubscribers
	opts.Delimiter = c.CategoryDelimiter
	if y != nil {
		// Empty column names keep their defaults.
		cols := y.Loader.Columns
		if cols.AccountID != "" {
			opts.Columns.AccountID = cols.AccountID
		}
		if cols.SubscriberCount != "" {
			opts.Columns.SubscriberCount = cols.SubscriberCount
		}
		if cols.Categories != "" {
			opts.Columns.Categories = cols.Categories
		}
		if cols.Date != "" {
			opts.Columns.Date = cols.Date
		}
		opts.TimeLayouts = y.Loader.TimeLayouts
	}
	return opts
}

// GrowthOptions returns the default growth window and threshold.
func (c *Config) GrowthOptions() growth.Options {
	return growth.Options{WindowDays: c.GrowthWindowDays, Threshold: c.GrowthThreshold}
}
