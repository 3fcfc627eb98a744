package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/paddock/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Live   UpstreamConfig `yaml:"live" mapstructure:"live"`
	Legacy UpstreamConfig `yaml:"legacy" mapstructure:"legacy"`
	HTTP   HTTPConfig     `yaml:"http" mapstructure:"http"`
	Source SourceConfig   `yaml:"source" mapstructure:"source"`
	Store  StoreConfig    `yaml:"store" mapstructure:"store"`
	Server ServerConfig   `yaml:"server" mapstructure:"server"`
	Log    LogConfig      `yaml:"log" mapstructure:"log"`
}

// UpstreamConfig configures one upstream API and its request budget.
type UpstreamConfig struct {
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst      int     `yaml:"burst" mapstructure:"burst"`
}

// HTTPConfig configures the shared upstream transport.
type HTTPConfig struct {
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxAttempts      int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int    `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int    `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	BreakerThreshold int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// SourceConfig controls which upstream serves a season.
type SourceConfig struct {
	LegacyCutoffYear int    `yaml:"legacy_cutoff_year" mapstructure:"legacy_cutoff_year"`
	SessionType      string `yaml:"session_type" mapstructure:"session_type"`
}

// StoreConfig configures the run log backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and PADDOCK_* environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PADDOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("live.base_url", "https://api.openf1.org/v1")
	v.SetDefault("live.rate_per_sec", 3)
	v.SetDefault("live.burst", 1)
	v.SetDefault("legacy.base_url", "https://api.jolpi.ca/ergast/f1")
	v.SetDefault("legacy.rate_per_sec", 4)
	v.SetDefault("legacy.burst", 1)
	v.SetDefault("http.timeout_secs", 15)
	v.SetDefault("http.user_agent", "paddock/1.0")
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.initial_backoff_ms", 500)
	v.SetDefault("http.max_backoff_ms", 10000)
	v.SetDefault("http.breaker_threshold", 5)
	v.SetDefault("http.breaker_reset_secs", 30)
	v.SetDefault("source.legacy_cutoff_year", 2023)
	v.SetDefault("source.session_type", "Race")
	v.SetDefault("store.driver", "none")
	v.SetDefault("store.database_url", "paddock.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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

// Validate checks the settings a command mode depends on. Modes are
// "query" (one-shot CLI loads), "serve" and "runs".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "query", "serve":
		for name, u := range map[string]UpstreamConfig{"live": c.Live, "legacy": c.Legacy} {
			if u.BaseURL == "" {
				errs = append(errs, name+".base_url is required")
			}
			if u.RatePerSec <= 0 {
				errs = append(errs, name+".rate_per_sec must be > 0")
			}
			if u.Burst < 1 {
				errs = append(errs, name+".burst must be >= 1")
			}
		}
		if c.HTTP.TimeoutSecs <= 0 {
			errs = append(errs, "http.timeout_secs must be > 0")
		}
		if c.HTTP.MaxAttempts < 1 {
			errs = append(errs, "http.max_attempts must be >= 1")
		}
		if c.Source.LegacyCutoffYear < 1950 {
			errs = append(errs, "source.legacy_cutoff_year must be >= 1950")
		}
		if _, err := ParseSessionType(c.Source.SessionType); err != nil {
			errs = append(errs, err.Error())
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "runs":
		if c.Store.Driver == "" || c.Store.Driver == "none" {
			errs = append(errs, "store.driver must be sqlite or postgres to read the run log")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "", "none", "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be none, sqlite or postgres")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

var titleCaser = cases.Title(language.English)

// ParseSessionType normalizes user input such as "race" or "QUALIFYING".
// An empty string yields an empty type.
func ParseSessionType(s string) (model.SessionType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t := model.SessionType(titleCaser.String(strings.ToLower(s)))
	switch t {
	case model.SessionTypeRace, model.SessionTypeQualifying, model.SessionTypeSprint, model.SessionTypePractice:
		return t, nil
	}
	return "", eris.Errorf("config: unknown session type %q", s)
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
