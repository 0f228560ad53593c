package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Database configuration (graph read side)
	Database DatabaseConfig `mapstructure:"database"`

	// API configuration (graph mutation side)
	API APIConfig `mapstructure:"api"`

	// Output configuration for plan/report/extract artifacts
	Output OutputConfig `mapstructure:"output"`

	// Execution configuration for merge runs
	Execution ExecutionConfig `mapstructure:"execution"`

	// Checkpoint configuration
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds graph database configuration
type DatabaseConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// APIConfig holds graph mutation API configuration
type APIConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// OutputConfig holds artifact output configuration
type OutputConfig struct {
	Dir     string `mapstructure:"dir"`
	Subject string `mapstructure:"subject"`
}

// ExecutionConfig holds merge execution configuration
type ExecutionConfig struct {
	BatchSize      int     `mapstructure:"batch_size"`
	OpDelayMillis  int     `mapstructure:"op_delay_millis"`
	RetryAttempts  int     `mapstructure:"retry_attempts"`
	InitialDelayMS int     `mapstructure:"initial_delay_millis"`
	BackoffFactor  float64 `mapstructure:"backoff_factor"`
	DeleteRetries  int     `mapstructure:"delete_retries"`
}

// CheckpointConfig holds checkpoint store configuration
type CheckpointConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Dir string `mapstructure:"dir"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Database defaults
	viper.SetDefault("database.uri", "bolt://localhost:7687")
	viper.SetDefault("database.username", "neo4j")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "neo4j")

	// API defaults
	viper.SetDefault("api.url", "http://localhost:9621")
	viper.SetDefault("api.timeout_seconds", 30)

	// Output defaults
	viper.SetDefault("output.dir", "data/db_clean")
	viper.SetDefault("output.subject", "clean")

	// Execution defaults
	viper.SetDefault("execution.batch_size", 10)
	viper.SetDefault("execution.op_delay_millis", 500)
	viper.SetDefault("execution.retry_attempts", 3)
	viper.SetDefault("execution.initial_delay_millis", 1000)
	viper.SetDefault("execution.backoff_factor", 2.0)
	viper.SetDefault("execution.delete_retries", 3)

	// Checkpoint defaults
	viper.SetDefault("checkpoint.enabled", false)
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("checkpoint.dir", fmt.Sprintf("%s/.graphmend/checkpoints", home))
	}

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 60)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		config.Database.Database = db
	}

	// Mutation API endpoint
	if url := os.Getenv("GRAPH_API_URL"); url != "" {
		config.API.URL = url
	}

	// Artifact output
	if dir := os.Getenv("GRAPHMEND_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}

	// Telemetry settings
	if dir := os.Getenv("GRAPHMEND_TELEMETRY_DIR"); dir != "" {
		config.Telemetry.Dir = dir
	}
}
