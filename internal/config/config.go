package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port    string
	GinMode string
	Env     string

	EnableDB    bool
	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	ModelDir            string
	ModelRoutedDiseases []string
	SuggestionsFile     string

	LogFormat string
}

// Load reads the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "release"),
		Env:                 getEnv("ENV", "development"),
		EnableDB:            strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		DBDriver:            strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SQLitePath:          getEnv("SQLITE_PATH", "medtriage.db"),
		ModelDir:            getEnv("MODEL_DIR", "models"),
		ModelRoutedDiseases: splitList(os.Getenv("MODEL_ROUTED_DISEASES")),
		SuggestionsFile:     os.Getenv("SUGGESTIONS_FILE"),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.EnableDB && cfg.DBDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
