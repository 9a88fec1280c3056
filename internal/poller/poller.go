package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/syncagent/syncagent/internal/action"
	"github.com/syncagent/syncagent/internal/clock"
	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
	"github.com/syncagent/syncagent/internal/transport"
)

const (
	listenEndpoint  = "/roblox/listen"
	fulfillEndpoint = "/roblox/actions/%d/fulfill"

	// Adaptive wait policy: empty polls creep from minWait to maxWait in
	// waitStep increments; a non-empty poll snaps back to minWait; a failed
	// poll adds failurePenalty once without changing the stored pace.
	minWait        = 2 * time.Second
	maxWait        = 5 * time.Second
	waitStep       = 100 * time.Millisecond
	failurePenalty = 10 * time.Second
)

// Deliverer hands one received action to the listener/default machinery
// and reports whether the action should be marked fulfilled.
type Deliverer interface {
	Deliver(a action.Action) bool
}

// Config carries the poller's collaborators and mode.
type Config struct {
	Session   transport.Session
	Deliverer Deliverer
	Clock     clock.Clock
	// Monitor logs received actions without delivering or fulfilling them.
	Monitor bool
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.Session == nil {
		return errFactory.WithMessage(ErrInvalidConfig, "session is required")
	}
	if c.Deliverer == nil && !c.Monitor {
		return errFactory.WithMessage(ErrInvalidConfig, "deliverer is required")
	}
	return nil
}

// Poller drives the long-poll loop against the control plane: it requests
// actions newer than its cursor, delivers them in order, acknowledges
// handled ones, and adapts its pacing to traffic.
//
// All state is owned by the single goroutine running Run.
type Poller struct {
	cfg    Config
	clk    clock.Clock
	cursor action.Cursor
	wait   time.Duration
}

func New(cfg Config) (*Poller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &Poller{
		cfg:    cfg,
		clk:    clk,
		cursor: action.NewCursor(clk.Now()),
		wait:   minWait,
	}, nil
}

// Run executes the poll/dispatch cycle until ctx is cancelled. Transport
// failures never terminate the loop; they only widen the next wait.
func (p *Poller) Run(ctx context.Context) error {
	logger.Info().
		Str("cursor", p.cursor.String()).
		Msg("action poller started")

	for {
		sleep := p.cycle(ctx)

		select {
		case <-ctx.Done():
			logger.Info().Msg("action poller stopped")
			return nil
		case <-p.clk.After(sleep):
		}
	}
}

// cycle performs one poll and returns how long to sleep before the next.
func (p *Poller) cycle(ctx context.Context) time.Duration {
	errFactory := errors.New()

	endpoint := listenEndpoint + "?since=" + url.QueryEscape(p.cursor.String())
	resp, err := p.cfg.Session.Request(ctx, transport.GET, endpoint, nil)
	if err != nil {
		// Cursor stays put so no action is lost; the stored pace is also
		// untouched, the penalty applies to this round only.
		logger.ErrorWithCode(errFactory.Wrap(ErrPollFailed, err)).
			Str("cursor", p.cursor.String()).
			Msg("poll request failed")
		return p.wait + failurePenalty
	}
	if !resp.Success {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("user_message", resp.UserMessage).
			Msg("poll rejected by control plane")
		return p.wait + failurePenalty
	}

	batch, err := decodeBatch(resp.Data)
	if err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrDecodeBatch, err)).Msg("undecodable poll result")
		return p.wait + failurePenalty
	}

	if len(batch) == 0 {
		p.wait = clampWait(p.wait + waitStep)
		return p.wait
	}

	p.wait = minWait
	// The cursor advances to wall-clock "now", not to any timestamp in the
	// payload. An action stamped earlier than its arrival is skipped past on
	// the next poll; accepted simplification over a precise watermark.
	p.cursor = p.cursor.AdvanceTo(p.clk.Now())

	for _, a := range batch {
		p.handle(ctx, a)
	}

	return p.wait
}

func (p *Poller) handle(ctx context.Context, a action.Action) {
	if p.cfg.Monitor {
		logger.Info().
			Int64("action_id", a.ID).
			Str("type", a.Type.String()).
			Msg("action received (monitor mode, not enforced)")
		return
	}

	logger.Debug().
		Int64("action_id", a.ID).
		Str("type", a.Type.String()).
		Msg("dispatching action")

	if p.cfg.Deliverer.Deliver(a) {
		p.fulfill(ctx, a.ID)
	}
}

// fulfill acknowledges a handled action. Failures are logged and never
// retried; the action was already consumed locally.
func (p *Poller) fulfill(ctx context.Context, id int64) {
	errFactory := errors.New()

	resp, err := p.cfg.Session.Request(ctx, transport.POST, fmt.Sprintf(fulfillEndpoint, id), nil)
	if err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrFulfillFailed, err)).
			Int64("action_id", id).
			Msg("fulfillment request failed")
		return
	}
	if !resp.Success {
		logger.Warn().
			Int64("action_id", id).
			Int("status", resp.StatusCode).
			Str("user_message", resp.UserMessage).
			Msg("fulfillment rejected")
	}
}

// Cursor returns the current stream position.
func (p *Poller) Cursor() action.Cursor {
	return p.cursor
}

func decodeBatch(data json.RawMessage) ([]action.Action, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var batch []action.Action
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func clampWait(d time.Duration) time.Duration {
	if d < minWait {
		return minWait
	}
	if d > maxWait {
		return maxWait
	}
	return d
}
