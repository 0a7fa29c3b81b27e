package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile merges options from a YAML file. Absent keys are left unchanged.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.LoadYAML(data)
}

// LoadYAML merges options from YAML content.
func (c *Config) LoadYAML(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}
	return nil
}
