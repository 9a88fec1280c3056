package status

import (
	"context"
	"time"

	"github.com/syncagent/syncagent/internal/clock"
	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
	"github.com/syncagent/syncagent/internal/transport"
)

const (
	statusEndpoint = "/roblox/status"
	closeEndpoint  = "/roblox/close"

	defaultInterval = 30 * time.Second
)

const (
	ErrInvalidConfig = errors.ErrorCode("status_invalid_config")
	ErrReportFailed  = errors.ErrorCode("status_report_failed")
)

// PlayerCounter reports the size of the live player set.
type PlayerCounter interface {
	PlayerCount() int
}

type Config struct {
	Session  transport.Session
	Clock    clock.Clock
	Interval time.Duration
	ServerID string
	Players  PlayerCounter
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.Session == nil {
		return errFactory.WithMessage(ErrInvalidConfig, "session is required")
	}
	return nil
}

type heartbeat struct {
	ServerID string `json:"server_id"`
	Uptime   int64  `json:"uptime"`
	Players  int    `json:"players"`
}

type closing struct {
	Reason string `json:"reason"`
}

// Reporter posts a periodic heartbeat to the control plane. Failures are
// logged and skipped; the next tick reports fresh state anyway.
type Reporter struct {
	cfg     Config
	clk     clock.Clock
	started time.Time
}

func NewReporter(cfg Config) (*Reporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &Reporter{
		cfg:     cfg,
		clk:     clk,
		started: clk.Now(),
	}, nil
}

// Run reports status every interval until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.clk.After(r.cfg.Interval):
			r.report(ctx)
		}
	}
}

func (r *Reporter) report(ctx context.Context) {
	errFactory := errors.New()

	players := 0
	if r.cfg.Players != nil {
		players = r.cfg.Players.PlayerCount()
	}

	body := heartbeat{
		ServerID: r.cfg.ServerID,
		Uptime:   int64(r.clk.Since(r.started).Seconds()),
		Players:  players,
	}

	resp, err := r.cfg.Session.Request(ctx, transport.POST, statusEndpoint, body)
	if err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrReportFailed, err)).Msg("status report failed")
		return
	}
	if !resp.Success {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("user_message", resp.UserMessage).
			Msg("status report rejected")
	}
}

// ReportClosing notifies the control plane that this server instance is
// going away. Best-effort: it races process exit and any failure is only
// logged.
func ReportClosing(ctx context.Context, session transport.Session, reason string) {
	errFactory := errors.New()

	resp, err := session.Request(ctx, transport.POST, closeEndpoint, closing{Reason: reason})
	if err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrReportFailed, err)).Msg("shutdown notification failed")
		return
	}
	if !resp.Success {
		logger.Warn().
			Int("status", resp.StatusCode).
			Msg("shutdown notification rejected")
	}
}
