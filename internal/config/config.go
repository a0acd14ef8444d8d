// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Runtime RuntimeConfig `mapstructure:"runtime" yaml:"runtime"`
	Models  ModelsConfig  `mapstructure:"models" yaml:"models"`
	Assets  AssetsConfig  `mapstructure:"assets" yaml:"assets"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig tunes the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// MaxBatchSize caps the number of code snippets accepted in one request.
	MaxBatchSize int `mapstructure:"max_batch_size" yaml:"max_batch_size"`
}

// RuntimeConfig points at the inference runtime sidecar.
type RuntimeConfig struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" yaml:"retry_base_delay"`
}

// ModelsConfig carries the model-facing constants the service must agree on
// with the exported ONNX graphs: frame length, repair generation budget, and
// the special-token vocabulary ids.
type ModelsConfig struct {
	MaxSequenceLength int `mapstructure:"max_sequence_length" yaml:"max_sequence_length"`
	MaxRepairTokens   int `mapstructure:"max_repair_tokens" yaml:"max_repair_tokens"`
	BosID             int `mapstructure:"bos_id" yaml:"bos_id"`
	EosID             int `mapstructure:"eos_id" yaml:"eos_id"`
	PadID             int `mapstructure:"pad_id" yaml:"pad_id"`
	// ClsTypeID is the <cls_type> token appended to the vocabulary for the
	// CWE classification head.
	ClsTypeID int `mapstructure:"cls_type_id" yaml:"cls_type_id"`
}

// AssetsConfig locates the label-map artifact: either directly on disk via
// LabelMapPath, or in an object store bucket from which it is fetched into
// CacheDir at startup.
type AssetsConfig struct {
	Endpoint     string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey    string `mapstructure:"access_key" yaml:"-"`
	SecretKey    string `mapstructure:"secret_key" yaml:"-"`
	UseSSL       bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	Bucket       string `mapstructure:"bucket" yaml:"bucket"`
	LabelMapKey  string `mapstructure:"label_map_key" yaml:"label_map_key"`
	CacheDir     string `mapstructure:"cache_dir" yaml:"cache_dir"`
	LabelMapPath string `mapstructure:"label_map_path" yaml:"label_map_path"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "vulnserve")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Server --
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_batch_size", 32)

	// -- Runtime --
	v.SetDefault("runtime.base_url", "http://localhost:8601")
	v.SetDefault("runtime.timeout", "4m")
	v.SetDefault("runtime.max_attempts", 3)
	v.SetDefault("runtime.retry_base_delay", "200ms")

	// -- Models --
	// RoBERTa-style vocabulary: <s>=0, <pad>=1, </s>=2; <cls_type> is the
	// first id appended past the base vocabulary.
	v.SetDefault("models.max_sequence_length", 512)
	v.SetDefault("models.max_repair_tokens", 256)
	v.SetDefault("models.bos_id", 0)
	v.SetDefault("models.pad_id", 1)
	v.SetDefault("models.eos_id", 2)
	v.SetDefault("models.cls_type_id", 50265)

	// -- Assets --
	v.SetDefault("assets.use_ssl", false)
	v.SetDefault("assets.bucket", "inference-common")
	v.SetDefault("assets.label_map_key", "label_map.json")
	v.SetDefault("assets.cache_dir", "/tmp/vulnserve-assets")
	v.SetDefault("assets.label_map_path", "")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("server.max_batch_size must be a positive integer")
	}
	if c.Runtime.BaseURL == "" {
		return fmt.Errorf("runtime.base_url is required")
	}
	if c.Runtime.MaxAttempts <= 0 {
		return fmt.Errorf("runtime.max_attempts must be a positive integer")
	}
	if c.Models.MaxSequenceLength < 4 {
		return fmt.Errorf("models.max_sequence_length must hold at least the special tokens")
	}
	if c.Models.MaxRepairTokens <= 0 {
		return fmt.Errorf("models.max_repair_tokens must be a positive integer")
	}
	if c.Assets.LabelMapPath == "" && c.Assets.Endpoint == "" {
		return fmt.Errorf("either assets.label_map_path or assets.endpoint is required")
	}
	return nil
}
