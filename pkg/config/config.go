// Package config provides centralized configuration management for OpenPBRL.
// It defines configuration structures for all components and supports
// validation, default values, and environment-based configuration loading.
package config

import (
	"fmt"
	"time"

	"github.com/openpbrl/openpbrl/pkg/types"
)

// ============================================================================
// Main Configuration Structure
// ============================================================================

// Config represents the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Preference learning configuration
	PbRL PbRLConfig `mapstructure:"pbrl" yaml:"pbrl" json:"pbrl"`

	// Artifact storage configuration
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`

	// Redis configuration
	Redis RedisConfig `mapstructure:"redis" yaml:"redis" json:"redis"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`

	// Kafka message queue configuration
	Kafka KafkaConfig `mapstructure:"kafka" yaml:"kafka" json:"kafka"`

	// Logging configuration
	Logging LogConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Observability configuration
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability" json:"observability"`
}

// ============================================================================
// Server Configuration
// ============================================================================

// ServerConfig defines HTTP server configuration
type ServerConfig struct {
	// Host to bind to
	Host string `mapstructure:"host" yaml:"host" json:"host"`

	// Port to listen on
	Port int `mapstructure:"port" yaml:"port" json:"port"`

	// Environment (development, staging, production)
	Environment string `mapstructure:"environment" yaml:"environment" json:"environment"`

	// Read timeout
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`

	// Write timeout
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Enable CORS
	EnableCORS bool `mapstructure:"enable_cors" yaml:"enable_cors" json:"enable_cors"`

	// CORS allowed origins
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// Requests per second allowed by the rate limiter (0 disables limiting)
	RateLimitRPS float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps" json:"rate_limit_rps"`

	// Burst size for the rate limiter
	RateLimitBurst int `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst" json:"rate_limit_burst"`
}

// ============================================================================
// Preference Learning Configuration
// ============================================================================

// PbRLConfig defines defaults for corpus generation, training, and relabeling
type PbRLConfig struct {
	// Hyperparameters for corpus sampling and reward model training
	Hyperparameters types.Hyperparameters `mapstructure:",squash" yaml:",inline" json:"hyperparameters"`

	// CheckpointEvery is the epoch interval between evaluation checkpoints
	CheckpointEvery int `mapstructure:"checkpoint_every" yaml:"checkpoint_every" json:"checkpoint_every"`

	// EvalPairs is the number of pairs sampled by the evaluation routine
	EvalPairs int `mapstructure:"eval_pairs" yaml:"eval_pairs" json:"eval_pairs"`

	// MaxSampleRetries bounds the trajectory rejection-sampling loop
	MaxSampleRetries int `mapstructure:"max_sample_retries" yaml:"max_sample_retries" json:"max_sample_retries"`

	// ScaleRewards applies min-max reward normalization before corpus generation
	ScaleRewards bool `mapstructure:"scale_rewards" yaml:"scale_rewards" json:"scale_rewards"`
}

// ============================================================================
// Storage Configuration
// ============================================================================

// StorageConfig defines the artifact store backend
type StorageConfig struct {
	// Backend selects the store implementation (filesystem, minio)
	Backend types.StoreBackend `mapstructure:"backend" yaml:"backend" json:"backend"`

	// Filesystem backend settings
	Filesystem FilesystemStorageConfig `mapstructure:"filesystem" yaml:"filesystem" json:"filesystem"`

	// MinIO backend settings
	MinIO MinIOStorageConfig `mapstructure:"minio" yaml:"minio" json:"minio"`
}

// FilesystemStorageConfig defines local filesystem artifact storage
type FilesystemStorageConfig struct {
	// Root directory for artifacts
	Root string `mapstructure:"root" yaml:"root" json:"root"`
}

// MinIOStorageConfig defines MinIO/S3 artifact storage
type MinIOStorageConfig struct {
	// Endpoint is the MinIO server address
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`

	// AccessKeyID for authentication
	AccessKeyID string `mapstructure:"access_key_id" yaml:"access_key_id" json:"access_key_id"`

	// SecretAccessKey for authentication
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key" json:"secret_access_key"`

	// UseSSL enables TLS transport
	UseSSL bool `mapstructure:"use_ssl" yaml:"use_ssl" json:"use_ssl"`

	// Bucket holding all artifacts
	Bucket string `mapstructure:"bucket" yaml:"bucket" json:"bucket"`

	// Region of the bucket
	Region string `mapstructure:"region" yaml:"region" json:"region"`
}

// ============================================================================
// Redis Configuration
// ============================================================================

// RedisConfig defines the run-status cache
type RedisConfig struct {
	// Enabled toggles the redis cache
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Addr is the redis server address
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`

	// Password for authentication
	Password string `mapstructure:"password" yaml:"password" json:"password"`

	// DB number
	DB int `mapstructure:"db" yaml:"db" json:"db"`

	// PoolSize of the connection pool
	PoolSize int `mapstructure:"pool_size" yaml:"pool_size" json:"pool_size"`

	// KeyPrefix prepended to all keys
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix" json:"key_prefix"`

	// DefaultTTL applied to cached values
	DefaultTTL time.Duration `mapstructure:"default_ttl" yaml:"default_ttl" json:"default_ttl"`
}

// ============================================================================
// Database Configuration
// ============================================================================

// DatabaseConfig defines the PostgreSQL run-record store
type DatabaseConfig struct {
	// Enabled toggles durable run records
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Host address
	Host string `mapstructure:"host" yaml:"host" json:"host"`

	// Port number
	Port int `mapstructure:"port" yaml:"port" json:"port"`

	// User name
	User string `mapstructure:"user" yaml:"user" json:"user"`

	// Password for authentication
	Password string `mapstructure:"password" yaml:"password" json:"password"`

	// DBName is the database name
	DBName string `mapstructure:"dbname" yaml:"dbname" json:"dbname"`

	// SSLMode (disable, require, verify-full)
	SSLMode string `mapstructure:"sslmode" yaml:"sslmode" json:"sslmode"`

	// MaxOpenConns limits open connections
	MaxOpenConns int `mapstructure:"max_open_conns" yaml:"max_open_conns" json:"max_open_conns"`

	// MaxIdleConns limits idle connections
	MaxIdleConns int `mapstructure:"max_idle_conns" yaml:"max_idle_conns" json:"max_idle_conns"`
}

// DSN builds the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ============================================================================
// Kafka Configuration
// ============================================================================

// KafkaConfig defines the run-event publisher
type KafkaConfig struct {
	// Enabled toggles event publishing
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Brokers is the list of bootstrap servers
	Brokers []string `mapstructure:"brokers" yaml:"brokers" json:"brokers"`

	// Topic for run lifecycle events
	Topic string `mapstructure:"topic" yaml:"topic" json:"topic"`

	// ClientID reported to the brokers
	ClientID string `mapstructure:"client_id" yaml:"client_id" json:"client_id"`

	// RequiredAcks (0 none, 1 leader, -1 all)
	RequiredAcks int `mapstructure:"required_acks" yaml:"required_acks" json:"required_acks"`
}

// ============================================================================
// Logging Configuration
// ============================================================================

// LogConfig defines structured logging behavior
type LogConfig struct {
	// Level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level" json:"level"`

	// Format (json, console)
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// OutputPaths for log writes (stdout, stderr, file paths)
	OutputPaths []string `mapstructure:"output_paths" yaml:"output_paths" json:"output_paths"`

	// FilePath enables file rotation when set
	FilePath string `mapstructure:"file_path" yaml:"file_path" json:"file_path"`

	// MaxSize in megabytes before rotation
	MaxSize int `mapstructure:"max_size" yaml:"max_size" json:"max_size"`

	// MaxBackups retained after rotation
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`

	// MaxAge in days before deletion
	MaxAge int `mapstructure:"max_age" yaml:"max_age" json:"max_age"`

	// Compress rotated files
	Compress bool `mapstructure:"compress" yaml:"compress" json:"compress"`
}

// ============================================================================
// Observability Configuration
// ============================================================================

// ObservabilityConfig defines metrics and tracing
type ObservabilityConfig struct {
	// MetricsEnabled exposes the prometheus endpoint
	MetricsEnabled bool `mapstructure:"metrics_enabled" yaml:"metrics_enabled" json:"metrics_enabled"`

	// MetricsNamespace prefixes all metric names
	MetricsNamespace string `mapstructure:"metrics_namespace" yaml:"metrics_namespace" json:"metrics_namespace"`

	// TracingEnabled turns on otel span export
	TracingEnabled bool `mapstructure:"tracing_enabled" yaml:"tracing_enabled" json:"tracing_enabled"`

	// OTLPEndpoint for the trace exporter
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint" json:"otlp_endpoint"`

	// ServiceName reported on spans
	ServiceName string `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
}

// ============================================================================
// Defaults and Validation
// ============================================================================

// Default returns a configuration with sensible development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Environment:     "development",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			EnableCORS:      true,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		PbRL: PbRLConfig{
			Hyperparameters: types.Hyperparameters{
				NumPairs:      1000,
				TrajectoryLen: 20,
				Epochs:        1000,
				Patience:      5,
				LearningRate:  0.001,
				HiddenDim:     64,
			},
			CheckpointEvery:  50,
			EvalPairs:        10000,
			MaxSampleRetries: 10000,
			ScaleRewards:     true,
		},
		Storage: StorageConfig{
			Backend: types.StoreBackendFilesystem,
			Filesystem: FilesystemStorageConfig{
				Root: "./artifacts",
			},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			KeyPrefix:  "openpbrl:",
			DefaultTTL: time.Hour,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "openpbrl",
			DBName:       "openpbrl",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		},
		Kafka: KafkaConfig{
			Brokers:      []string{"localhost:9092"},
			Topic:        "openpbrl.runs",
			ClientID:     "openpbrl",
			RequiredAcks: 1,
		},
		Logging: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stdout"},
			MaxSize:     100,
			MaxBackups:  3,
			MaxAge:      7,
		},
		Observability: ObservabilityConfig{
			MetricsEnabled:   true,
			MetricsNamespace: "openpbrl",
			ServiceName:      "openpbrl",
		},
	}
}

// Validate checks semantic consistency of the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if !c.Storage.Backend.Valid() {
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.Backend == types.StoreBackendMinIO && c.Storage.MinIO.Endpoint == "" {
		return fmt.Errorf("minio storage backend requires an endpoint")
	}
	hp := c.PbRL.Hyperparameters
	if hp.NumPairs <= 0 {
		return fmt.Errorf("pbrl num_pairs must be positive, got %d", hp.NumPairs)
	}
	if hp.TrajectoryLen <= 0 {
		return fmt.Errorf("pbrl trajectory_len must be positive, got %d", hp.TrajectoryLen)
	}
	if hp.Epochs <= 0 {
		return fmt.Errorf("pbrl epochs must be positive, got %d", hp.Epochs)
	}
	if hp.LearningRate <= 0 {
		return fmt.Errorf("pbrl learning_rate must be positive, got %f", hp.LearningRate)
	}
	if c.PbRL.CheckpointEvery <= 0 {
		return fmt.Errorf("pbrl checkpoint_every must be positive, got %d", c.PbRL.CheckpointEvery)
	}
	return nil
}
