package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// TenantID selects which tenant this instance serves; the in-memory
	// domain stores are loaded for this tenant only.
	TenantID string `envconfig:"TENANT_ID"`

	HubURL          string `envconfig:"HUB_URL"`
	HubServiceToken string `envconfig:"HUB_SERVICE_TOKEN"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	// Reload fallback when change notifications are missed.
	ReloadIntervalSeconds int `envconfig:"RELOAD_INTERVAL_SECONDS" default:"300"`

	// Bootstrap: create initial tenant and API key on startup
	InitTenantName string `envconfig:"INIT_TENANT_NAME"`
	InitHubScope   string `envconfig:"INIT_HUB_SCOPE"`
	InitAPIKey     string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("AIGENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasHub() bool {
	return c.HubURL != "" && c.HubServiceToken != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
