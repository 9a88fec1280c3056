package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncagent/syncagent/internal/errors"
)

const (
	DefaultLogLevel       = "info"
	defaultBaseURL        = "https://api.syncagent.dev/v1"
	defaultFlushInterval  = 10
	defaultStatusInterval = 30
	defaultTimeout        = 30
)

type Config struct {
	// Backend connection
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	ServerID string `mapstructure:"server_id"`
	Timeout  int    `mapstructure:"timeout"`

	// Loop intervals, seconds
	FlushInterval  int `mapstructure:"flush_interval"`
	StatusInterval int `mapstructure:"status_interval"`

	// Telemetry archive
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`

	// Logging and mode
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
	Monitor  bool   `mapstructure:"monitor"`
}

func Load() (*Config, error) {
	errFactory := errors.New()
	config := &Config{}

	flags := pflag.NewFlagSet("syncagent", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.String("api-key", "", "API key for the control plane")
	flags.String("base-url", defaultBaseURL, "Base URL of the control plane")
	flags.String("server-id", "", "Identifier reported for this server instance")
	flags.Int("flush-interval", defaultFlushInterval, "Telemetry flush interval in seconds")
	flags.Int("status-interval", defaultStatusInterval, "Status heartbeat interval in seconds")
	flags.Bool("monitor", false, "Only log received actions, do not enforce them")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	// Every key gets a default so environment-only values survive Unmarshal.
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", defaultBaseURL)
	v.SetDefault("server_id", "")
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("flush_interval", defaultFlushInterval)
	v.SetDefault("status_interval", defaultStatusInterval)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("monitor", false)

	// Load configuration from file
	if path := os.Getenv("SYNCAGENT_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("syncagent.conf")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	v.SetEnvPrefix("SYNCAGENT")
	v.AutomaticEnv()

	// Override config file values with command line flags
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "api-key":
			v.Set("api_key", f.Value.String())
		case "base-url":
			v.Set("base_url", f.Value.String())
		case "server-id":
			v.Set("server_id", f.Value.String())
		case "flush-interval":
			v.Set("flush_interval", f.Value.String())
		case "status-interval":
			v.Set("status_interval", f.Value.String())
		default:
			v.Set(f.Name, f.Value.String())
		}
	})

	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.BaseURL == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "base_url must be set")
	}
	if c.FlushInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.FlushInterval)
	}
	if c.StatusInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.StatusInterval)
	}
	if c.Timeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Timeout)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "database must be set when telemetry is enabled")
	}

	return nil
}

// FlushIntervalDuration returns the telemetry flush interval as a duration.
func (c *Config) FlushIntervalDuration() time.Duration {
	return time.Duration(c.FlushInterval) * time.Second
}

// StatusIntervalDuration returns the heartbeat interval as a duration.
func (c *Config) StatusIntervalDuration() time.Duration {
	return time.Duration(c.StatusInterval) * time.Second
}

// TimeoutDuration returns the per-request transport timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
