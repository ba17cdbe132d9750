package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	OCR      OCRConfig      `yaml:"ocr" mapstructure:"ocr"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RegistryConfig configures the NPI registry client.
type RegistryConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// OCRConfig configures license document rasterizing and recognition.
type OCRConfig struct {
	DPI         int      `yaml:"dpi" mapstructure:"dpi"`
	Languages   []string `yaml:"languages" mapstructure:"languages"`
	MinWidth    int      `yaml:"min_width" mapstructure:"min_width"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BatchConfig configures roster validation runs.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the mock registry server.
type ServerConfig struct {
	Port         int    `yaml:"port" mapstructure:"port"`
	FixturesPath string `yaml:"fixtures_path" mapstructure:"fixtures_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml, and VERIFY_* environment variables.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VERIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("registry.base_url", "http://127.0.0.1:5000")
	v.SetDefault("registry.timeout_secs", 10)
	v.SetDefault("registry.rate_limit", 0)
	v.SetDefault("registry.max_attempts", 1)
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("ocr.min_width", 1200)
	v.SetDefault("ocr.timeout_secs", 120)
	v.SetDefault("batch.concurrency", 3)
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.fixtures_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "validate":
		errs = append(errs, c.registryErrors()...)
		errs = append(errs, c.ocrErrors()...)
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 32 {
			errs = append(errs, "batch.concurrency must be between 1 and 32")
		}
	case "lookup":
		errs = append(errs, c.registryErrors()...)
	case "extract":
		errs = append(errs, c.ocrErrors()...)
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) registryErrors() []string {
	var errs []string
	if c.Registry.BaseURL == "" {
		errs = append(errs, "registry.base_url is required")
	}
	if c.Registry.TimeoutSecs <= 0 {
		errs = append(errs, "registry.timeout_secs must be > 0")
	}
	if c.Registry.RateLimit < 0 {
		errs = append(errs, "registry.rate_limit must be >= 0")
	}
	if c.Registry.MaxAttempts < 1 {
		errs = append(errs, "registry.max_attempts must be >= 1")
	}
	return errs
}

func (c *Config) ocrErrors() []string {
	var errs []string
	if c.OCR.DPI < 72 || c.OCR.DPI > 1200 {
		errs = append(errs, "ocr.dpi must be between 72 and 1200")
	}
	if len(c.OCR.Languages) == 0 {
		errs = append(errs, "ocr.languages must not be empty")
	}
	if c.OCR.MinWidth < 0 {
		errs = append(errs, "ocr.min_width must be >= 0")
	}
	return errs
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
