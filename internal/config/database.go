package config

import (
	"fmt"

	"github.com/ameshkov/nodeadmin/internal/store"
)

// Database represents the storage section of the configuration file.
type Database struct {
	// Path is the path to the SQLite database file.
	Path string `yaml:"path"`
}

// ToStoreConfig transforms the configuration to the internal store.Config.
func (f *File) ToStoreConfig() (storeCfg *store.Config, err error) {
	if f.Database == nil {
		return nil, fmt.Errorf("database config is empty")
	}

	return &store.Config{Path: f.Database.Path}, nil
}
