package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB      DBConfig
	Server  ServerConfig
	Log     LogConfig
	Weather WeatherConfig
	Seeder  SeederConfig
}

// DBType represents database type
type DBType string

const (
	DBTypeSQLite     DBType = "sqlite"
	DBTypeMemory     DBType = "memory"
	DBTypePostgreSQL DBType = "postgres"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		if c.Name != "" && c.Name != "weatherscore" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypePostgreSQL:
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	default:
		// SQLite treats '#', '?' and '%' in a file: URI as syntax
		path := (&url.URL{Path: c.Path}).EscapedPath()
		return fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	}
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true for both the file and the in-memory SQLite backends
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeSQLite || c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
}

// placeholderAPIKey is the value shipped in config templates
const placeholderAPIKey = "YOUR_API_KEY_HERE"

// WeatherConfig holds weather API settings and acts as the credential source
type WeatherConfig struct {
	OpenWeatherAPIKey string
	BaseURL           string
	Units             string
	Timeout           time.Duration
	Breaker           BreakerConfig
}

// IsConfigured reports whether a usable API key is present
func (c WeatherConfig) IsConfigured() bool {
	return c.OpenWeatherAPIKey != "" && c.OpenWeatherAPIKey != placeholderAPIKey
}

// APIKey returns the OpenWeatherMap API key
func (c WeatherConfig) APIKey() string {
	return c.OpenWeatherAPIKey
}

// BreakerConfig controls the optional circuit breaker around weather requests.
// MaxFailures of zero disables it.
type BreakerConfig struct {
	MaxFailures int
	OpenTimeout time.Duration
}

// SeederConfig holds settings for score import
type SeederConfig struct {
	BatchSize    int
	DefaultLevel string
	// File is imported on startup when the store is empty
	File string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", string(DBTypeSQLite)))
	if dbType != DBTypeSQLite && dbType != DBTypeMemory && dbType != DBTypePostgreSQL {
		dbType = DBTypeSQLite
	}

	timeout, err := getEnvAsDuration("WEATHER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	breakerTimeout, err := getEnvAsDuration("WEATHER_BREAKER_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Path:     getEnv("DB_PATH", "data/GameData.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "weatherscore"),
			Password: getEnv("DB_PASSWORD", "weatherscore_password"),
			Name:     getEnv("DB_NAME", "weatherscore"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Weather: WeatherConfig{
			OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
			BaseURL:           getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
			Units:             getEnv("WEATHER_UNITS", "metric"),
			Timeout:           timeout,
			Breaker: BreakerConfig{
				MaxFailures: getEnvAsInt("WEATHER_BREAKER_FAILURES", 0),
				OpenTimeout: breakerTimeout,
			},
		},
		Seeder: SeederConfig{
			BatchSize:    getEnvAsInt("SEEDER_BATCH_SIZE", 500),
			DefaultLevel: getEnv("SEEDER_DEFAULT_LEVEL", "Default"),
			File:         os.Getenv("SEEDER_FILE"),
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

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
