package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Pawprint"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pawprint"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Policy Policy
}

// Policy carries the business constants the report pipeline depends on.
// They are injected into the calculators so the same code can be exercised
// against varying fee/commission assumptions.
type Policy struct {
	// Card processing fee estimate: percent of total plus a per-charge surcharge.
	CardFeePercent   float64 `envconfig:"CARD_FEE_PERCENT" default:"2.9"`
	CardFeeFlatCents int64   `envconfig:"CARD_FEE_FLAT_CENTS" default:"30"`

	// Cost of goods estimate as a percent of net sales.
	COGSPercent float64 `envconfig:"COGS_PERCENT" default:"12"`

	// Commission percent assumed for groomers without an explicit rate.
	DefaultCommissionPercent float64 `envconfig:"DEFAULT_COMMISSION_PERCENT" default:"40"`

	// Inventory demand is proxied by appointment volume over this many days.
	DemandWindowDays int `envconfig:"DEMAND_WINDOW_DAYS" default:"30"`

	// Projected days of supply below this threshold flags an inventory risk.
	LowSupplyDays float64 `envconfig:"LOW_SUPPLY_DAYS" default:"7"`
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// DefaultPolicy returns the documented default Policy, for tests and for
// callers running the engine without environment configuration.
func DefaultPolicy() Policy {
	return Policy{
		CardFeePercent:           2.9,
		CardFeeFlatCents:         30,
		COGSPercent:              12,
		DefaultCommissionPercent: 40,
		DemandWindowDays:         30,
		LowSupplyDays:            7,
	}
}
