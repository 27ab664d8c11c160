package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables as raw strings.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         os.Getenv("SERVER_PORT"),
			Environment:  os.Getenv("SERVER_ENV"),
			ReadTimeout:  os.Getenv("SERVER_READ_TIMEOUT"),
			WriteTimeout: os.Getenv("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Expiration: os.Getenv("JWT_EXPIRATION"),
		},
		Worker: WorkerConfig{
			RefreshInterval: os.Getenv("WORKER_REFRESH_INTERVAL"),
		},
		Logging: LoggingConfig{
			Level:       os.Getenv("LOG_LEVEL"),
			Format:      os.Getenv("LOG_FORMAT"),
			ServiceName: os.Getenv("SERVICE_NAME"),
		},
		Embedding: EmbeddingConfig{
			ServiceURL: os.Getenv("EMBEDDING_SERVICE_URL"),
			Dimension:  os.Getenv("EMBEDDING_DIMENSION"),
			Timeout:    os.Getenv("EMBEDDING_TIMEOUT"),
		},
		Recommendation: RecommendationConfig{
			Neighbors:      os.Getenv("RECOMMENDATION_NEIGHBORS"),
			PurchaseCredit: os.Getenv("RECOMMENDATION_PURCHASE_CREDIT"),
			DefaultLimit:   os.Getenv("RECOMMENDATION_DEFAULT_LIMIT"),
		},
	}
}
