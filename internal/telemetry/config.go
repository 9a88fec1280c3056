package telemetry

import (
	"time"

	"github.com/syncagent/syncagent/internal/clock"
	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/transport"
)

const (
	defaultFlushInterval = 10 * time.Second
	pushEndpoint         = "/telemetry/push"
)

type Config struct {
	Session       transport.Session
	Clock         clock.Clock
	FlushInterval time.Duration

	// Archive, when non-nil, receives a local copy of every drained batch.
	Archive Archive

	// OnDrop, when non-nil, is called with the number of samples lost to a
	// failed flush. Loss is otherwise only visible through Dropped().
	OnDrop func(count int)
}

func DefaultConfig(session transport.Session) Config {
	return Config{
		Session:       session,
		FlushInterval: defaultFlushInterval,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Session == nil {
		return errFactory.WithMessage(ErrInvalidConfig, "session is required")
	}
	if c.FlushInterval <= 0 {
		return errFactory.WithMessage(ErrInvalidConfig, "flush interval must be positive")
	}

	return nil
}
