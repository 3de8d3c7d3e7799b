package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DOCKDASH_BACKEND_URL.
const EnvPrefix = "dockdash"

type Config struct {
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Serve     ServeConfig     `mapstructure:"serve"`
	Docker    DockerConfig    `mapstructure:"docker"`
	Log       LogConfig       `mapstructure:"log"`
}

type BackendConfig struct {
	URL string `mapstructure:"url"`
	// DialAttempts is the total number of initial dial tries.
	DialAttempts uint64 `mapstructure:"dial_attempts"`
}

type DashboardConfig struct {
	Addr      string `mapstructure:"addr"`
	AccessLog bool   `mapstructure:"access_log"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

type DockerConfig struct {
	Host        string        `mapstructure:"host"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads defaults, the optional config file and the environment into a
// Config. A missing config file is not an error unless file names one
// explicitly.
func Load(v *viper.Viper, file string) (*Config, error) {
	InitDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("dockdash")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Backend.URL, "ws://") && !strings.HasPrefix(c.Backend.URL, "wss://") {
		return fmt.Errorf("backend.url must be a ws:// or wss:// URL, got %q", c.Backend.URL)
	}
	if c.Backend.DialAttempts < 1 {
		return fmt.Errorf("backend.dial_attempts must be at least 1, got %d", c.Backend.DialAttempts)
	}
	if c.Docker.StopTimeout < 0 {
		return fmt.Errorf("docker.stop_timeout must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// NewLogger builds the process logger from the log settings.
func NewLogger(c LogConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// PrintSettings logs the effective settings at debug level.
func PrintSettings(v *viper.Viper, log *logrus.Logger) {
	out, _ := json.MarshalIndent(v.AllSettings(), "", "\t")
	log.Debugf("config:\n%s", string(out))
}
