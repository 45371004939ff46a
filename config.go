package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config models the PyScript configuration payload carried in a script
// element's config attribute. PyScript itself accepts either TOML or JSON;
// authors typically write TOML, the attribute form is JSON.
type Config struct {
	Packages    []string          `toml:"packages" json:"packages,omitempty"`
	Files       map[string]string `toml:"files" json:"files,omitempty"`
	Plugins     []string          `toml:"plugins" json:"plugins,omitempty"`
	Interpreter string            `toml:"interpreter" json:"interpreter,omitempty"`
}

// ParseConfigTOML parses a TOML-form PyScript configuration. A malformed
// payload is a build-time *ConfigurationError.
func ParseConfigTOML(src string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(src, &cfg); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("parsing config: %v", err)}
	}
	return &cfg, nil
}

// Attr serializes the configuration to the JSON attribute form. An empty
// config serializes to "{}", the attribute's default.
func (c *Config) Attr() (string, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", &ConfigurationError{Reason: fmt.Sprintf("encoding config: %v", err)}
	}
	return string(data), nil
}
