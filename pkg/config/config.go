package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string `yaml:"port" validate:"required,numeric"`
	Env  string `yaml:"env" validate:"oneof=development staging production test"` // development, staging, production

	// Input dataset
	Dataset DatasetConfig `yaml:"dataset"`

	// Pipeline
	Forecast ForecastConfig `yaml:"forecast"`
	Ranking  RankingConfig  `yaml:"ranking"`

	// Scheduled jobs (cron expressions with seconds, empty = disabled)
	Schedule ScheduleConfig `yaml:"schedule"`

	// Outbound HTTP (remote CSV source)
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	HTTPMaxRetries int           `yaml:"http_max_retries" validate:"gte=0,lte=10"` // 0 = no retry
	HTTPRateLimit  float64       `yaml:"http_rate_limit" validate:"gte=0"`         // requests per second, 0 = unlimited

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Monitoring
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// DatasetConfig describes where the wide-format CSV lives
type DatasetConfig struct {
	Path            string   `yaml:"path" validate:"required"`
	MetadataColumns []string `yaml:"metadata_columns"`
}

// ForecastConfig holds the ARIMA model settings
type ForecastConfig struct {
	P         int           `yaml:"p" validate:"min=0,max=24"`
	D         int           `yaml:"d" validate:"min=0,max=2"`
	Q         int           `yaml:"q" validate:"min=0,max=5"`
	Horizon   int           `yaml:"horizon" validate:"eq=24"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	RateLimit float64       `yaml:"rate_limit" validate:"gte=0"` // requests per second, 0 = unlimited
	RateBurst int           `yaml:"rate_burst" validate:"gte=0"`
}

// RankingConfig holds leaderboard settings
type RankingConfig struct {
	Size int `yaml:"size" validate:"min=1"`
}

// ScheduleConfig holds cron expressions for background jobs
type ScheduleConfig struct {
	Reload  string `yaml:"reload"`
	Quality string `yaml:"quality"`
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadWithOverrides("", "")
}

// LoadWithOverrides reads env config, overlays the YAML file at file and the
// dataset path when non-empty, then validates once
func LoadWithOverrides(file, datasetPath string) (*Config, error) {
	cfg := fromEnv()

	if file != "" {
		if err := cfg.decodeFile(file); err != nil {
			return nil, err
		}
	}
	if datasetPath != "" {
		cfg.Dataset.Path = datasetPath
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// fromEnv builds a Config from the environment and .env without validating
func fromEnv() *Config {
	// Try multiple paths for .env file
	loadEnvFile()

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Dataset: DatasetConfig{
			Path:            getEnv("DATASET_PATH", ""),
			MetadataColumns: getEnvAsList("DATASET_METADATA_COLUMNS", []string{"RegionID", "SizeRank", "RegionType", "StateName"}),
		},

		Forecast: ForecastConfig{
			P:         getEnvAsInt("FORECAST_P", 5),
			D:         getEnvAsInt("FORECAST_D", 1),
			Q:         getEnvAsInt("FORECAST_Q", 0),
			Horizon:   getEnvAsInt("FORECAST_HORIZON", 24),
			Timeout:   getEnvAsDuration("FORECAST_TIMEOUT", "5s"),
			RateLimit: getEnvAsFloat("FORECAST_RATE_LIMIT", 5),
			RateBurst: getEnvAsInt("FORECAST_RATE_BURST", 10),
		},

		Ranking: RankingConfig{
			Size: getEnvAsInt("RANKING_SIZE", 10),
		},

		Schedule: ScheduleConfig{
			Reload:  getEnv("RELOAD_SCHEDULE", ""),
			Quality: getEnv("QUALITY_SCHEDULE", "0 0 * * * *"),
		},

		HTTPTimeout:    getEnvAsDuration("HTTP_TIMEOUT", "30s"),
		HTTPMaxRetries: getEnvAsInt("HTTP_MAX_RETRIES", 3),
		HTTPRateLimit:  getEnvAsFloat("HTTP_RATE_LIMIT", 2),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	// (0,0,0)은 평균값만 반복하는 모델
	if c.Forecast.P == 0 && c.Forecast.D == 0 && c.Forecast.Q == 0 {
		return fmt.Errorf("FORECAST_P, FORECAST_D and FORECAST_Q cannot all be zero")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
