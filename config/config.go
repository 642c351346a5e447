package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
type Config struct {
	MongoURI      string
	MongoDatabase string
	JWTSecretKey  string
	ServerPort    int

	// Shared secret used to verify payment provider webhook signatures.
	WebhookSigningSecret string

	// S3-compatible object storage for ONLUS documents and team logos.
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3PublicBaseURL   string

	// How often the mode scheduler checks schedule windows.
	ModeSchedulerInterval time.Duration
}

// Load reads configuration from environment variables. A .env file is loaded
// first if present (local development convenience, never required).
func Load() (*Config, error) {
	_ = godotenv.Load()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable is not set")
	}

	mongoDB := os.Getenv("MONGO_DATABASE")
	if mongoDB == "" {
		mongoDB = "goodplay"
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	webhookSecret := os.Getenv("WEBHOOK_SIGNING_SECRET")
	if webhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SIGNING_SECRET environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	intervalStr := os.Getenv("MODE_SCHEDULER_INTERVAL")
	if intervalStr == "" {
		intervalStr = "30s"
	}
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid MODE_SCHEDULER_INTERVAL environment variable: %w", err)
	}

	cfg := &Config{
		MongoURI:              mongoURI,
		MongoDatabase:         mongoDB,
		JWTSecretKey:          jwtKey,
		ServerPort:            port,
		WebhookSigningSecret:  webhookSecret,
		S3Endpoint:            os.Getenv("S3_ENDPOINT"),
		S3Region:              getEnvOrDefault("S3_REGION", "auto"),
		S3AccessKeyID:         os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3BucketName:          os.Getenv("S3_BUCKET_NAME"),
		S3PublicBaseURL:       os.Getenv("S3_PUBLIC_BASE_URL"),
		ModeSchedulerInterval: interval,
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
