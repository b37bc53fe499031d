package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env  string `envconfig:"PRINTSHOP_ENV" default:"dev"`
	Port string `envconfig:"PORT" default:"8080"`

	PostgresDSN  string `envconfig:"POSTGRES_DSN" default:""`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:""`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"order-events"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:""`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	TokenIssueKey string        `envconfig:"TOKEN_ISSUE_KEY" default:""`

	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`

	// AddonMap is an optional JSON document mapping size/color modes to the
	// service option that surcharges them, e.g.
	// {"size":{"oversized":"svc-a3"},"color":{"color":"svc-color"}}.
	AddonMap string `envconfig:"ADDON_MAP" default:""`

	// StrictTransitions rejects status commands against completed or
	// cancelled orders. StrictAmounts requires an accepted payment to match
	// the order total exactly. Both default to the permissive behavior.
	StrictTransitions bool `envconfig:"STRICT_TRANSITIONS" default:"false"`
	StrictAmounts     bool `envconfig:"STRICT_AMOUNTS" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
