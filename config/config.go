package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server struct {
		// Port the query service listens on
		Port string `env:"PORT" envDefault:"8080"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		// Full connection string; takes precedence over the discrete parts
		URL string `env:"DATABASE_URL"`

		Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
		User     string `env:"POSTGRES_USER" envDefault:"postgres"`
		Password string `env:"POSTGRES_PASSWORD"`
		Name     string `env:"POSTGRES_DATABASE" envDefault:"property_register"`
		SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	}

	Query struct {
		// Wall-clock budget for a single request's database work (in seconds)
		Timeout int `env:"QUERY_TIMEOUT" envDefault:"10"`

		// Calendar year served by the price-comparison endpoint
		ComparisonYear int `env:"COMPARISON_YEAR" envDefault:"2024"`

		// Trailing window of the trends endpoint (in days)
		TrendWindowDays int `env:"TREND_WINDOW_DAYS" envDefault:"30"`

		// Row batch size for full-table aggregate fetches
		FetchBatchSize int `env:"FETCH_BATCH_SIZE" envDefault:"1000"`
	}

	Import struct {
		// Directory scanned for .csv source files
		DataDir string `env:"SALES_DATA_DIR" envDefault:"public/salesdata"`

		// Maximum number of retries for a failed row persist
		MaxRetries int `env:"IMPORT_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"IMPORT_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the Postgres connection string, preferring DATABASE_URL
// over the discrete host/port/credential parts.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}
