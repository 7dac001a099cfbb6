package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/twinmaps/twinmap/internal/match"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Match   MatchConfig   `yaml:"match" mapstructure:"match"`
	Color   ColorConfig   `yaml:"color" mapstructure:"color"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	Cities  []CityConfig  `yaml:"cities" mapstructure:"cities"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// MatchConfig configures proximity matching defaults.
type MatchConfig struct {
	MaxDistance float64 `yaml:"max_distance" mapstructure:"max_distance"`
	SelfMatch   bool    `yaml:"self_match" mapstructure:"self_match"`
}

// ColorConfig configures the deterministic color palette.
type ColorConfig struct {
	Frequency float64 `yaml:"frequency" mapstructure:"frequency"`
	SatMin    float64 `yaml:"sat_min" mapstructure:"sat_min"`
	SatMax    float64 `yaml:"sat_max" mapstructure:"sat_max"`
	LightMin  float64 `yaml:"light_min" mapstructure:"light_min"`
	LightMax  float64 `yaml:"light_max" mapstructure:"light_max"`
}

// Palette converts the color section into match.Palette.
func (c ColorConfig) Palette() match.Palette {
	return match.Palette{
		Frequency: c.Frequency,
		SatMin:    c.SatMin,
		SatMax:    c.SatMax,
		LightMin:  c.LightMin,
		LightMax:  c.LightMax,
	}
}

// RefreshConfig configures pairing-set polling.
type RefreshConfig struct {
	IntervalSecs int `yaml:"interval_secs" mapstructure:"interval_secs"`
}

// Interval returns the polling interval as a duration.
func (c RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

// CityConfig describes one selectable city map.
type CityConfig struct {
	Key    string    `yaml:"key" mapstructure:"key" json:"key"`
	Name   string    `yaml:"name" mapstructure:"name" json:"name"`
	Center []float64 `yaml:"center" mapstructure:"center" json:"center"`
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
	v.SetEnvPrefix("TWINMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "twinmap.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 50.0)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("match.max_distance", match.DefaultMaxDistance)
	v.SetDefault("match.self_match", false)
	v.SetDefault("color.frequency", match.DefaultPalette.Frequency)
	v.SetDefault("color.sat_min", match.DefaultPalette.SatMin)
	v.SetDefault("color.sat_max", match.DefaultPalette.SatMax)
	v.SetDefault("color.light_min", match.DefaultPalette.LightMin)
	v.SetDefault("color.light_max", match.DefaultPalette.LightMax)
	v.SetDefault("refresh.interval_secs", 30)
	v.SetDefault("cities", []map[string]any{
		{"key": "seattle", "name": "Seattle", "center": []float64{47.6062, -122.3321}},
		{"key": "portland", "name": "Portland", "center": []float64{45.5152, -122.6784}},
	})
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
