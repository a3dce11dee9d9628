package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Port                 string        `yaml:"port"`
	LogLevel             string        `yaml:"log_level"`
	RateLimitPerMinute   int           `yaml:"rate_limit_per_minute"`
	MaxBodySizeBytes     int64         `yaml:"max_body_size_bytes"`
	MaxEvidenceSizeBytes int64         `yaml:"max_evidence_size_bytes"`
	DataDir              string        `yaml:"data_dir"`
	ShutdownTimeout      time.Duration `yaml:"shutdown_timeout"`
	StartingGrant        uint64        `yaml:"starting_grant"`
	CallerAuthSecret     string        `yaml:"caller_auth_secret"`
	RequireCallerAuth    bool          `yaml:"require_caller_auth"`
}

// Default values
const (
	DefaultRateLimitPerMinute   = 100
	DefaultMaxBodySizeBytes     = 1 << 20  // 1MB
	DefaultMaxEvidenceSizeBytes = 10 << 20 // 10MB
	DefaultDataDir              = "./data"
	DefaultShutdownTimeout      = 30 * time.Second
	DefaultStartingGrant        = 100
)

func defaultConfig() *Config {
	return &Config{
		Port:                 "8080",
		LogLevel:             "info",
		RateLimitPerMinute:   DefaultRateLimitPerMinute,
		MaxBodySizeBytes:     DefaultMaxBodySizeBytes,
		MaxEvidenceSizeBytes: DefaultMaxEvidenceSizeBytes,
		DataDir:              DefaultDataDir,
		ShutdownTimeout:      DefaultShutdownTimeout,
		StartingGrant:        DefaultStartingGrant,
	}
}

// LoadConfig reads configuration from a YAML file when CONFIG_FILE is set,
// then applies environment variable overrides on top of the defaults.
func LoadConfig() *Config {
	cfg := defaultConfig()

	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		fileCfg, err := LoadConfigFromFile(configFile)
		if err == nil {
			cfg = fileCfg
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if rateLimitEnv := os.Getenv("RATE_LIMIT_PER_MINUTE"); rateLimitEnv != "" {
		if rateLimit, err := strconv.Atoi(rateLimitEnv); err == nil && rateLimit > 0 {
			cfg.RateLimitPerMinute = rateLimit
		}
	}

	if maxBodyEnv := os.Getenv("MAX_BODY_SIZE_BYTES"); maxBodyEnv != "" {
		if maxBody, err := strconv.ParseInt(maxBodyEnv, 10, 64); err == nil && maxBody > 0 {
			cfg.MaxBodySizeBytes = maxBody
		}
	}

	if maxEvidenceEnv := os.Getenv("MAX_EVIDENCE_SIZE_BYTES"); maxEvidenceEnv != "" {
		if maxEvidence, err := strconv.ParseInt(maxEvidenceEnv, 10, 64); err == nil && maxEvidence > 0 {
			cfg.MaxEvidenceSizeBytes = maxEvidence
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	if shutdownTimeout := os.Getenv("SHUTDOWN_TIMEOUT"); shutdownTimeout != "" {
		if duration, err := time.ParseDuration(shutdownTimeout); err == nil {
			cfg.ShutdownTimeout = duration
		}
	}

	if grantEnv := os.Getenv("STARTING_GRANT"); grantEnv != "" {
		if grant, err := strconv.ParseUint(grantEnv, 10, 64); err == nil {
			cfg.StartingGrant = grant
		}
	}

	if secret := os.Getenv("CALLER_AUTH_SECRET"); secret != "" {
		cfg.CallerAuthSecret = secret
	}
	if os.Getenv("REQUIRE_CALLER_AUTH") == "true" {
		cfg.RequireCallerAuth = true
	}

	return cfg
}

// yamlConfig mirrors Config with string durations so "30s" works in files
type yamlConfig struct {
	Port                 string  `yaml:"port"`
	LogLevel             string  `yaml:"log_level"`
	RateLimitPerMinute   int     `yaml:"rate_limit_per_minute"`
	MaxBodySizeBytes     int64   `yaml:"max_body_size_bytes"`
	MaxEvidenceSizeBytes int64   `yaml:"max_evidence_size_bytes"`
	DataDir              string  `yaml:"data_dir"`
	ShutdownTimeout      string  `yaml:"shutdown_timeout"`
	StartingGrant        *uint64 `yaml:"starting_grant"`
	CallerAuthSecret     string  `yaml:"caller_auth_secret"`
	RequireCallerAuth    bool    `yaml:"require_caller_auth"`
}

// LoadConfigFromFile reads a YAML configuration file, falling back to
// defaults for absent fields
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg yamlConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := defaultConfig()

	if fileCfg.Port != "" {
		cfg.Port = fileCfg.Port
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.RateLimitPerMinute > 0 {
		cfg.RateLimitPerMinute = fileCfg.RateLimitPerMinute
	}
	if fileCfg.MaxBodySizeBytes > 0 {
		cfg.MaxBodySizeBytes = fileCfg.MaxBodySizeBytes
	}
	if fileCfg.MaxEvidenceSizeBytes > 0 {
		cfg.MaxEvidenceSizeBytes = fileCfg.MaxEvidenceSizeBytes
	}
	if fileCfg.DataDir != "" {
		cfg.DataDir = fileCfg.DataDir
	}
	if fileCfg.ShutdownTimeout != "" {
		if duration, err := time.ParseDuration(fileCfg.ShutdownTimeout); err == nil {
			cfg.ShutdownTimeout = duration
		}
	}
	if fileCfg.StartingGrant != nil {
		cfg.StartingGrant = *fileCfg.StartingGrant
	}
	if fileCfg.CallerAuthSecret != "" {
		cfg.CallerAuthSecret = fileCfg.CallerAuthSecret
	}
	cfg.RequireCallerAuth = cfg.RequireCallerAuth || fileCfg.RequireCallerAuth

	return cfg, nil
}
