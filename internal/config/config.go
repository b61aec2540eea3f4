package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"lifequest"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"lifequest"`
	DBName     string `env:"DB_NAME" envDefault:"lifequest"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"lifequest.db"`

	PlayerID             string        `env:"PLAYER_ID" envDefault:"u001"`
	OperatorPasswordHash string        `env:"OPERATOR_PASSWORD_HASH"`
	JWTSecret            string        `env:"JWT_SECRET,notEmpty"`
	TokenTTL             time.Duration `env:"TOKEN_TTL" envDefault:"72h"`

	CatalogPath string `env:"CATALOG_PATH"`
	GameTZ      string `env:"GAME_TZ" envDefault:"Local"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres, sqlite or memory, got %q", cfg.DBDriver)
	}
	return cfg, nil
}

// Location resolves GameTZ. Period ids (day, ISO week, month) are computed
// in this zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.GameTZ)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", c.GameTZ, err)
	}
	return loc, nil
}

// PostgresDSN builds a lib/pq connection string.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
