package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadYAMLFile reads path over the defaults. Keys missing from the file
// keep their default values.
func ReadYAMLFile(path string) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	c := NewConfig()
	if err = yaml.Unmarshal(bytes, c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %q: %w", path, err)
	}
	return c, nil
}

// Load reads the optional config file and applies the environment.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	c := NewConfig()
	if path != "" {
		var err error
		if c, err = ReadYAMLFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return c, nil
}
