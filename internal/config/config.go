package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Schema    SchemaConfig    `yaml:"schema" mapstructure:"schema"`
	Image     ImageConfig     `yaml:"image" mapstructure:"image"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	VisionModel string  `yaml:"vision_model" mapstructure:"vision_model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// StoreConfig configures the passport persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// SchemaConfig points at an optional category schema override file.
type SchemaConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ImageConfig configures photo preprocessing before vision extraction.
type ImageConfig struct {
	MaxEdge     int `yaml:"max_edge" mapstructure:"max_edge"`
	JPEGQuality int `yaml:"jpeg_quality" mapstructure:"jpeg_quality"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_ocr_model" mapstructure:"mistral_ocr_model"`
}

// ServerConfig configures the public lookup server.
type ServerConfig struct {
	Port          int    `yaml:"port" mapstructure:"port"`
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PASSPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.vision_model", "")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.rate_limit", 0)
	v.SetDefault("anthropic.rate_burst", 1)
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.dir", "passports")
	v.SetDefault("store.dsn", "passports.db")
	v.SetDefault("image.max_edge", 512)
	v.SetDefault("image.jpeg_quality", 80)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a given command mode depends on. Modes:
// "extract" needs oracle credentials, "publish" needs a store, "serve"
// needs a store and a usable port.
func (c *Config) Validate(mode string) error {
	var missing []string

	storeOK := func() {
		switch c.Store.Driver {
		case "file":
			if c.Store.Dir == "" {
				missing = append(missing, "store.dir is required for the file driver")
			}
		case "sqlite":
			if c.Store.DSN == "" {
				missing = append(missing, "store.dsn is required for the sqlite driver")
			}
		default:
			missing = append(missing, "store.driver must be file or sqlite")
		}
	}

	switch mode {
	case "extract":
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
		if c.Anthropic.MaxTokens <= 0 {
			missing = append(missing, "anthropic.max_tokens must be > 0")
		}
		if c.Image.MaxEdge <= 0 {
			missing = append(missing, "image.max_edge must be > 0")
		}
		if c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100 {
			missing = append(missing, "image.jpeg_quality must be between 1 and 100")
		}
	case "publish":
		storeOK()
	case "serve":
		storeOK()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
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
