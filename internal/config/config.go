// Package config loads application configuration and initializes logging.
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
	Geocode   GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Providers ProviderConfig `yaml:"providers" mapstructure:"providers"`
	Server    ServerConfig   `yaml:"server" mapstructure:"server"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig holds run defaults, overridable per invocation by flags.
type GeocodeConfig struct {
	Template       string  `yaml:"template" mapstructure:"template"`
	DelaySecs      float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	LatitudeField  string  `yaml:"latitude_field" mapstructure:"latitude_field"`
	LongitudeField string  `yaml:"longitude_field" mapstructure:"longitude_field"`
	GeometryField  string  `yaml:"geometry_field" mapstructure:"geometry_field"`
	HTTPTimeout    int     `yaml:"http_timeout_secs" mapstructure:"http_timeout_secs"`
}

// Delay returns the configured inter-call delay as a duration.
func (c GeocodeConfig) Delay() time.Duration {
	return time.Duration(c.DelaySecs * float64(time.Second))
}

// ProviderConfig holds provider credentials. Each key also reads its
// conventional environment variable via the CLI flag defaults.
type ProviderConfig struct {
	BingKey     string `yaml:"bing_api_key" mapstructure:"bing_api_key"`
	GoogleKey   string `yaml:"google_api_key" mapstructure:"google_api_key"`
	MapQuestKey string `yaml:"mapquest_api_key" mapstructure:"mapquest_api_key"`
	MapboxKey   string `yaml:"mapbox_api_key" mapstructure:"mapbox_api_key"`
	OpenCageKey string `yaml:"opencage_api_key" mapstructure:"opencage_api_key"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the serve command.
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
	v.SetEnvPrefix("GEOCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("geocode.template", "{location}")
	v.SetDefault("geocode.delay_secs", 1.0)
	v.SetDefault("geocode.latitude_field", "latitude")
	v.SetDefault("geocode.longitude_field", "longitude")
	v.SetDefault("geocode.geometry_field", "geometry")
	v.SetDefault("geocode.http_timeout_secs", 30)

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
