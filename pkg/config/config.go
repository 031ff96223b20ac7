package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string `env:"SERVER_PORT" envDefault:"8080"`
	Environment     string `env:"ENVIRONMENT" envDefault:"development"`
	FirebaseProject string `env:"FIREBASE_PROJECT_ID"`
	FirebaseApiKey  string `env:"FIREBASE_API_KEY"`

	// Service account: inline JSON wins over the file path.
	ServiceAccountJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	ServiceAccountPath string `env:"FIREBASE_SERVICE_ACCOUNT_PATH"`

	Storage StorageConfig

	MaxUploadBytes          int64 `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	ReauthAttemptsPerMinute int   `env:"REAUTH_ATTEMPTS_PER_MINUTE" envDefault:"5"`
	PostsPerMinute          int   `env:"POSTS_PER_MINUTE" envDefault:"10"`
}

type StorageConfig struct {
	Driver         string `env:"STORAGE_DRIVER" envDefault:"gcs"`
	Bucket         string `env:"STORAGE_BUCKET"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"true"`
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if config.FirebaseProject == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if config.FirebaseApiKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY is required")
	}

	switch config.Storage.Driver {
	case "gcs", "minio":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", config.Storage.Driver)
	}
	if config.Storage.Driver == "minio" && config.Storage.MinioEndpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_DRIVER=minio")
	}

	return config, nil
}
