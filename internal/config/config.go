// Package config loads process configuration from the environment and
// the embedded source registry.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig is the process environment. Secrets stay empty when unset;
// each consumer decides whether a missing secret disables the feature
// or falls back to an ephemeral one (see adminSecret in api). The lead
// token secret is read directly by the auth package from JWT_SECRET.
type AppConfig struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	BaseURL     string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	SamGovAPIKey         string `envconfig:"SAM_GOV_API_KEY"`
	RegulationsGovAPIKey string `envconfig:"REGULATIONS_GOV_API_KEY"`

	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	FromEmail    string `envconfig:"FROM_EMAIL" default:"matches@grantlink.dev"`

	AdminSecret string `envconfig:"ADMIN_SECRET"`
	CronSecret  string `envconfig:"CRON_SECRET"`

	TemplateBaseURL string `envconfig:"TEMPLATE_BASE_URL" default:"http://localhost:11434"`
	TemplateModel   string `envconfig:"TEMPLATE_MODEL" default:"llama3.1:8b"`
}

// Load reads AppConfig from the environment.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
