package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds process-level settings read from the environment.
type Config struct {
	MongoURI      string
	MongoDatabase string
	ListenAddr    string
	JWTSecret     string
	RolloutAPIKey string
}

// Load reads configuration from the environment, consulting a local .env
// file first when one exists. Missing keys fall back to development
// defaults; the JWT secret and Rollout key have no default on purpose.
func Load() Config {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	return Config{
		MongoURI:      getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGODB_DATABASE", "podcatalog"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RolloutAPIKey: os.Getenv("ROLLOUT_API_KEY"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
