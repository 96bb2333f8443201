package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Fraud      FraudConfig      `yaml:"fraud" mapstructure:"fraud"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
}

// StoreConfig configures the decision store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	CORSOrigins    []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ClassifierConfig locates the frozen classifier artifacts.
// Missing artifacts disable the classifier; they are never fatal.
type ClassifierConfig struct {
	ModelPath           string  `yaml:"model_path" mapstructure:"model_path"`
	EncodersPath        string  `yaml:"encoders_path" mapstructure:"encoders_path"`
	MetadataPath        string  `yaml:"metadata_path" mapstructure:"metadata_path"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	CacheTTLMinutes     int     `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
}

// ExtractConfig configures free-text extraction.
type ExtractConfig struct {
	EntityRecognizer bool `yaml:"entity_recognizer" mapstructure:"entity_recognizer"`
}

// FraudConfig holds operator-supplied fraud rules evaluated after the
// built-in triggers.
type FraudConfig struct {
	Rules []FraudRuleConfig `yaml:"rules" mapstructure:"rules"`
}

// FraudRuleConfig is a single CEL fraud rule.
type FraudRuleConfig struct {
	Name       string  `yaml:"name" mapstructure:"name"`
	Expression string  `yaml:"expression" mapstructure:"expression"`
	Weight     float64 `yaml:"weight" mapstructure:"weight"`
	Indicator  string  `yaml:"indicator" mapstructure:"indicator"`
}

// BatchConfig configures batch routing.
type BatchConfig struct {
	MaxConcurrentClaims int `yaml:"max_concurrent_claims" mapstructure:"max_concurrent_claims"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.rate_limit_rps", 0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("classifier.model_path", "models/model.json")
	v.SetDefault("classifier.encoders_path", "models/label_encoders.json")
	v.SetDefault("classifier.metadata_path", "models/model_metadata.yaml")
	v.SetDefault("classifier.confidence_threshold", 0.7)
	v.SetDefault("classifier.cache_ttl_minutes", 30)
	v.SetDefault("extract.entity_recognizer", true)
	v.SetDefault("batch.max_concurrent_claims", 8)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the config for the given command mode ("serve", "route",
// "batch"). All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be memory or sqlite, got %q", c.Store.Driver))
	}

	if c.Classifier.ConfidenceThreshold < 0 || c.Classifier.ConfidenceThreshold > 1 {
		errs = append(errs, "classifier.confidence_threshold must be between 0 and 1")
	}
	if c.Classifier.CacheTTLMinutes < 0 {
		errs = append(errs, "classifier.cache_ttl_minutes must be >= 0")
	}

	for i, r := range c.Fraud.Rules {
		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("fraud.rules[%d].name is required", i))
		}
		if r.Expression == "" {
			errs = append(errs, fmt.Sprintf("fraud.rules[%d].expression is required", i))
		}
		if r.Weight < 0 || r.Weight > 1 {
			errs = append(errs, fmt.Sprintf("fraud.rules[%d].weight must be between 0 and 1", i))
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS < 0 {
			errs = append(errs, "server.rate_limit_rps must be >= 0")
		}
		if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst <= 0 {
			errs = append(errs, "server.rate_limit_burst must be > 0 when rate limiting is enabled")
		}
	case "batch":
		if c.Batch.MaxConcurrentClaims < 1 || c.Batch.MaxConcurrentClaims > 64 {
			errs = append(errs, "batch.max_concurrent_claims must be between 1 and 64")
		}
	case "route":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
