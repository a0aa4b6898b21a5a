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
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Alerts  AlertsConfig  `yaml:"alerts" mapstructure:"alerts"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// RoutingConfig configures the OSRM routing provider and Nominatim geocoder.
type RoutingConfig struct {
	OSRMBaseURL      string  `yaml:"osrm_base_url" mapstructure:"osrm_base_url"`
	NominatimBaseURL string  `yaml:"nominatim_base_url" mapstructure:"nominatim_base_url"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	GeocodeRPS       float64 `yaml:"geocode_rps" mapstructure:"geocode_rps"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// AlertsConfig bounds the alert dashboard windows.
type AlertsConfig struct {
	FollowUpWindowDays int `yaml:"followup_window_days" mapstructure:"followup_window_days"`
	StaleHotDays       int `yaml:"stale_hot_days" mapstructure:"stale_hot_days"`
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
	v.SetEnvPrefix("FIELDREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "fieldrep.db")
	v.SetDefault("routing.osrm_base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("routing.user_agent", "fieldrep-cli/1.0")
	v.SetDefault("routing.timeout_secs", 30)
	v.SetDefault("routing.geocode_rps", 1.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("alerts.followup_window_days", 7)
	v.SetDefault("alerts.stale_hot_days", 30)
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

// Validate checks that the fields required by the given mode are set.
// Modes: "store" (any command touching persistence), "plan" (route
// planning), "serve" (HTTP API).
func (c *Config) Validate(mode string) error {
	var missing []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.SQLitePath == "" {
				missing = append(missing, "store.sqlite_path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				missing = append(missing, "store.database_url is required for the postgres driver")
			}
		default:
			missing = append(missing, "store.driver must be sqlite or postgres")
		}
	}

	checkRouting := func() {
		if c.Routing.OSRMBaseURL == "" {
			missing = append(missing, "routing.osrm_base_url is required")
		}
		if c.Routing.NominatimBaseURL == "" {
			missing = append(missing, "routing.nominatim_base_url is required")
		}
		if c.Routing.TimeoutSecs <= 0 {
			missing = append(missing, "routing.timeout_secs must be > 0")
		}
		if c.Routing.GeocodeRPS <= 0 {
			missing = append(missing, "routing.geocode_rps must be > 0")
		}
	}

	switch mode {
	case "store":
		checkStore()
	case "plan":
		checkStore()
		checkRouting()
	case "serve":
		checkStore()
		checkRouting()
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
