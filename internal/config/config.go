package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Services ServicesConfig
	Redis    RedisConfig
	Server   ServerConfig
	Session  SessionConfig
	Logging  LoggingConfig
}

type ServicesConfig struct {
	ExecutionURL  string
	SimilarityURL string
	StoreURL      string
	Timeout       time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ServerConfig struct {
	HTTPPort string
}

type SessionConfig struct {
	// ClockSkew is the fixed offset between the candidate's local clock
	// and the reference time zone the store records contest times in.
	ClockSkew           time.Duration
	TickInterval        time.Duration
	DefaultTimeLimit    int
	PlagiarismThreshold float64
	DisqualifyDelay     time.Duration
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Services: ServicesConfig{
			ExecutionURL:  getEnv("EXECUTION_SERVICE_URL", "http://localhost:8081"),
			SimilarityURL: getEnv("SIMILARITY_SERVICE_URL", "http://localhost:8080"),
			StoreURL:      getEnv("SUBMISSION_STORE_URL", "http://localhost:8085"),
			Timeout:       getEnvAsDuration("SERVICE_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			HTTPPort: getEnv("HTTP_PORT", "8090"),
		},
		Session: SessionConfig{
			ClockSkew:           getEnvAsDuration("CLOCK_SKEW", 5*time.Hour+30*time.Minute),
			TickInterval:        getEnvAsDuration("TICK_INTERVAL", time.Second),
			DefaultTimeLimit:    getEnvAsInt("DEFAULT_TIME_LIMIT_SECONDS", 1),
			PlagiarismThreshold: getEnvAsFloat("PLAGIARISM_THRESHOLD", 0.8),
			DisqualifyDelay:     getEnvAsDuration("DISQUALIFY_DELAY", 2*time.Second),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
