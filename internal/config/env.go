package config

import "os"

// Env is the process's runtime configuration, loaded from the environment
// rather than from YAML — following events/publisher.go's os.Getenv
// bootstrap style rather than introducing a dedicated env-loading library.
type Env struct {
	BindAddress    string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	GameConfigPath string
	ExplainConfig  string
	LogLevel       string
	LogPretty      bool
}

// LoadEnv reads the process environment, applying the same defaults the
// teacher's service composition root falls back to in local development.
func LoadEnv() Env {
	return Env{
		BindAddress:    getenv("BIND_ADDRESS", ":8080"),
		DatabaseURL:    getenv("DATABASE_URL", "postgres://localhost:5432/orchestration?sslmode=disable"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		GameConfigPath: getenv("GAME_CONFIG_PATH", "config/game.yaml"),
		ExplainConfig:  getenv("EXPLANATION_CONFIG_PATH", "config/explanation.yaml"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogPretty:      os.Getenv("LOG_PRETTY") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
