// Package config is responsible for parsing configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File represents a configuration file.
type File struct {
	// Database is the storage section of the configuration file.  Must be
	// specified.
	Database *Database `yaml:"database"`

	// Admin is the admin API section of the configuration file.  Must be
	// specified.
	Admin *Admin `yaml:"admin"`

	// Prometheus is the metrics section of the configuration file.  If not
	// specified, metrics are not exposed.
	Prometheus *Prometheus `yaml:"prometheus"`

	// Sentry is the error reporting section of the configuration file.  If
	// not specified, errors are not reported.
	Sentry *Sentry `yaml:"sentry"`
}

// Prometheus represents the prometheus configuration.
type Prometheus struct {
	// Addr is the address where prometheus metrics are exposed.
	Addr string `yaml:"addr"`

	// Port is the port where prometheus metrics will be exposed.
	Port uint16 `yaml:"port"`
}

// Sentry represents the error reporting configuration.
type Sentry struct {
	// DSN is the Sentry project DSN.
	DSN string `yaml:"dsn"`
}

// Load loads and validates configuration from the specified file.
func Load(path string) (cfg *File, err error) {
	// Ignore G304 here as it's trusted context.
	//nolint:gosec
	b, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg = &File{}
	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	err = validate(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to validate config file: %w", err)
	}

	return cfg, nil
}

func validate(cfg *File) (err error) {
	if cfg.Database == nil {
		return fmt.Errorf("no database configured")
	}

	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if cfg.Admin == nil {
		return fmt.Errorf("no admin configured")
	}

	if cfg.Admin.ListenAddr == "" {
		return fmt.Errorf("admin.listen-addr is required")
	}

	if cfg.Prometheus != nil && cfg.Prometheus.Port == 0 {
		return fmt.Errorf("prometheus.port is required")
	}

	if cfg.Sentry != nil && cfg.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required")
	}

	return nil
}
