package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Classifier ClassifierConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Session    SessionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type ClassifierConfig struct {
	APIBaseURL     string
	PredictPath    string
	RequestTimeout time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency   int
	SweepInterval time.Duration
}

type SessionConfig struct {
	TTL          time.Duration
	SingleFlight bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Classifier: ClassifierConfig{
			APIBaseURL:     getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
			PredictPath:    getEnv("PREDICT_PATH", "/predict"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "30s"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 2097152),
		},
		Worker: WorkerConfig{
			Concurrency:   getEnvAsInt("WORKER_CONCURRENCY", 3),
			SweepInterval: getEnvAsDuration("SWEEP_INTERVAL", "1m"),
		},
		Session: SessionConfig{
			TTL:          getEnvAsDuration("SESSION_TTL", "30m"),
			SingleFlight: getEnvAsBool("SINGLE_FLIGHT", false),
		},
	}
}

// Validate reports the first setting that would make the client unusable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Classifier.APIBaseURL)
	if err != nil || c.Classifier.APIBaseURL == "" {
		return fmt.Errorf("invalid API_BASE_URL %q", c.Classifier.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("API_BASE_URL has no host: %q", c.Classifier.APIBaseURL)
	}
	if c.Classifier.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	return nil
}

// PredictURL joins the base URL and the predict path.
func (c *Config) PredictURL() string {
	return joinURL(c.Classifier.APIBaseURL, c.Classifier.PredictPath)
}

func joinURL(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if path == "" {
		return base + "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return base + path
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
