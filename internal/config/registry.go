package config

import (
	"embed"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var sourcesYAML embed.FS

// Registry holds per-source settings for the upstream APIs.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig configures one upstream API client.
type SourceConfig struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"` // Default: 25
	MaxRetries     int    `yaml:"max_retries,omitempty"`
}

// LoadRegistry reads the embedded sources.yaml. The path parameter is a
// filesystem fallback for local development overrides.
func LoadRegistry(path string) (*Registry, error) {
	data, err := sourcesYAML.ReadFile("sources.yaml")
	if path != "" {
		if local, localErr := os.ReadFile(path); localErr == nil {
			data, err = local, nil
		}
	}
	if err != nil {
		return nil, err
	}

	// Expand environment variables within the YAML content (e.g. ${SAM_GOV_API_KEY})
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, err
	}

	return &reg, nil
}

// Source returns the config for id, or nil.
func (r *Registry) Source(id string) *SourceConfig {
	for i := range r.Sources {
		if r.Sources[i].ID == id {
			return &r.Sources[i]
		}
	}
	return nil
}
