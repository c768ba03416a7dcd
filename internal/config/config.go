package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Project   ProjectConfig   `yaml:"project" mapstructure:"project"`
	Address   EndpointConfig  `yaml:"address" mapstructure:"address"`
	Property  EndpointConfig  `yaml:"property" mapstructure:"property"`
	AdminUnit AdminUnitConfig `yaml:"admin_unit" mapstructure:"admin_unit"`
	PlaceName EndpointConfig  `yaml:"place_name" mapstructure:"place_name"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Layers    LayersConfig    `yaml:"layers" mapstructure:"layers"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProjectConfig holds the working coordinate reference system.
type ProjectConfig struct {
	// EPSG is the project reference system every result is reconciled into.
	EPSG int `yaml:"epsg" mapstructure:"epsg"`
}

// EndpointConfig holds the base URL for a single registry.
type EndpointConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
}

// AdminUnitConfig holds the administrative-unit registry endpoints. The
// kommuneinfo service is served from two hosts; the fallback is tried when
// the primary is unreachable.
type AdminUnitConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	FallbackBaseURL string `yaml:"fallback_base_url" mapstructure:"fallback_base_url"`
}

// HTTPConfig configures the shared upstream HTTP client.
type HTTPConfig struct {
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns the per-request timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LayersConfig configures the materialized layer store.
type LayersConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	// FieldTypeScheme selects the host field-type metadata scheme:
	// "variant" (legacy enumerated codes) or "typeid" (explicit identifiers).
	FieldTypeScheme string `yaml:"field_type_scheme" mapstructure:"field_type_scheme"`
}

// ServerConfig configures the HTTP search facade.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("KVSOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("project.epsg", 25833)
	v.SetDefault("address.base_url", "https://ws.geonorge.no/adresser/v1")
	v.SetDefault("address.page_size", 100)
	v.SetDefault("property.base_url", "https://api.kartverket.no/eiendom/v1")
	v.SetDefault("admin_unit.base_url", "https://api.kartverket.no/kommuneinfo/v1")
	v.SetDefault("admin_unit.fallback_base_url", "https://ws.geonorge.no/kommuneinfo/v1")
	v.SetDefault("place_name.base_url", "https://api.kartverket.no/stedsnavn/v1")
	v.SetDefault("place_name.page_size", 200)
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.rate_per_second", 10)
	v.SetDefault("http.user_agent", "kvsok/1.0")
	v.SetDefault("layers.path", "kvsok-layers.db")
	v.SetDefault("layers.field_type_scheme", "typeid")
	v.SetDefault("server.port", 8080)
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
