// Package config loads server configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/garnet/ack-portal/engine"
)

// Config holds the portal server configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	// Departments is the set of departments documents may target. Requests
	// naming a department outside the set are rejected.
	Departments []string `yaml:"departments"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Database.Path = "portal.db"
	cfg.Log.Level = "info"
	cfg.Departments = []string{
		"engineering",
		"finance",
		"hr",
		"marketing",
		"sales",
	}
	return cfg
}

// Load reads configuration from a YAML file, filling unset fields with
// defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if len(c.Departments) == 0 {
		return fmt.Errorf("at least one department is required")
	}
	seen := map[string]bool{}
	for _, d := range c.Departments {
		if d == "" {
			return fmt.Errorf("department names must not be empty")
		}
		if seen[d] {
			return fmt.Errorf("duplicate department %q", d)
		}
		seen[d] = true
	}
	return nil
}

// KnownDepartment reports whether the department is in the configured set.
func (c *Config) KnownDepartment(id engine.DepartmentID) bool {
	for _, d := range c.Departments {
		if engine.DepartmentID(d) == id {
			return true
		}
	}
	return false
}

// DepartmentIDs returns the configured departments as typed IDs.
func (c *Config) DepartmentIDs() []engine.DepartmentID {
	ids := make([]engine.DepartmentID, 0, len(c.Departments))
	for _, d := range c.Departments {
		ids = append(ids, engine.DepartmentID(d))
	}
	return ids
}
