package transport

import (
	"net/url"
	"time"

	"github.com/syncagent/syncagent/internal/errors"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "syncagent"

	// Request bodies at or above this size are gzip-encoded.
	gzipThreshold = 1024
)

type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   defaultTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.BaseURL == "" {
		return errFactory.New(ErrInvalidBaseURL)
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return errFactory.Wrap(ErrInvalidBaseURL, err)
	}
	if c.Timeout <= 0 {
		return errFactory.WithMessage(ErrInvalidConfig, "timeout must be positive")
	}

	return nil
}
