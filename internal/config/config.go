package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the sysinfo configuration.
type Config struct {
	Listen            string        `mapstructure:"listen"`
	HTTPListen        string        `mapstructure:"http_listen"`
	EnableSwagger     bool          `mapstructure:"enable_swagger"`
	DatabasePath      string        `mapstructure:"database"`
	RetentionDays     int           `mapstructure:"retention_days"`
	PurgeInterval     time.Duration `mapstructure:"purge_interval"`
	CPUSampleInterval time.Duration `mapstructure:"cpu_sample_interval"`
	LogLevel          string        `mapstructure:"log_level"`
}

// Load reads configuration from file and environment. An explicit
// cfgFile must exist; the default search locations are optional.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("sysinfo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sysinfo")
	}

	v.SetDefault("listen", ":9560")
	v.SetDefault("http_listen", ":9561")
	v.SetDefault("enable_swagger", true)
	v.SetDefault("database", "sysinfo.db")
	v.SetDefault("retention_days", 0)
	v.SetDefault("purge_interval", "24h")
	v.SetDefault("cpu_sample_interval", "1s")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("SYSINFO")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.CPUSampleInterval <= 0 {
		return nil, fmt.Errorf("cpu_sample_interval must be positive, got %s", cfg.CPUSampleInterval)
	}
	if cfg.RetentionDays > 0 && cfg.PurgeInterval <= 0 {
		return nil, fmt.Errorf("purge_interval must be positive when retention_days is set, got %s", cfg.PurgeInterval)
	}

	return &cfg, nil
}
