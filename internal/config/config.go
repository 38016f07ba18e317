package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendFile     = "file"
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	LogLevel string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects the durable backend for the rate cache.
type StoreConfig struct {
	Backend        string
	FileDir        string
	MemorySize     int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string
	ConnectTimeout time.Duration
	PostgresDSN    string
}

// LoadConfig reads the environment, after loading .env if one exists in the working
// directory.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Store: StoreConfig{
			Backend:        getEnvString("STORE_BACKEND", StoreBackendFile),
			FileDir:        getEnvString("STORE_FILE_DIR", "./data"),
			MemorySize:     getEnvInt("STORE_MEMORY_SIZE", 64*1024*1024),
			RedisAddr:      getEnvString("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  getEnvString("REDIS_PASSWORD", ""),
			RedisDB:        getEnvInt("REDIS_DB", 0),
			RedisPrefix:    getEnvString("REDIS_PREFIX", "fx:"),
			ConnectTimeout: getEnvDuration("STORE_CONNECT_TIMEOUT", 5*time.Second),
			PostgresDSN:    getEnvString("POSTGRES_DSN", ""),
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}

	if err := config.Store.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (s StoreConfig) validate() error {
	switch s.Backend {
	case StoreBackendFile, StoreBackendMemory, StoreBackendRedis:
		return nil
	case StoreBackendPostgres:
		if s.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the %s store backend", StoreBackendPostgres)
		}
		return nil
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", s.Backend)
	}
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}
