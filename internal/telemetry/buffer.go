package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/syncagent/syncagent/internal/clock"
	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
	"github.com/syncagent/syncagent/internal/transport"
)

// pushPayload is the wire body of a flush.
type pushPayload struct {
	Buffer []Sample `json:"buffer"`
}

// SampleBuffer accumulates samples from metric handles and flushes them to
// the control plane when a push arrives at or past the flush interval.
//
// Delivery is fire-and-forget: the buffer is drained whether or not the
// push succeeds, trading sample loss for bounded memory. Loss is counted,
// never silent.
//
// Handles push from arbitrary goroutines; the mutex makes append and drain
// each one atomic step, and performing the flush inline under the lock
// keeps batches ordered at the backend.
type SampleBuffer struct {
	cfg Config
	clk clock.Clock

	mu        sync.Mutex
	samples   []Sample
	lastFlush time.Time
	dropped   uint64
}

func NewSampleBuffer(cfg Config) (*SampleBuffer, error) {
	errFactory := errors.New()

	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &SampleBuffer{
		cfg:       cfg,
		clk:       clk,
		lastFlush: clk.Now(),
	}, nil
}

// Push appends one sample and flushes synchronously when the flush
// interval has elapsed since the last drain.
func (b *SampleBuffer) Push(kind Kind, name string, value float64, labels Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, Sample{
		Timestamp: b.clk.Now().Unix(),
		Kind:      kind,
		Name:      name,
		Value:     value,
		Labels:    labels,
	})

	if b.clk.Since(b.lastFlush) >= b.cfg.FlushInterval {
		b.flushLocked(context.Background())
	}
}

// Flush drains the buffer immediately. A no-op when empty.
func (b *SampleBuffer) Flush(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked(ctx)
}

// Len returns the number of buffered samples.
func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Dropped returns the total number of samples lost to failed flushes.
func (b *SampleBuffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// flushLocked posts the whole buffer as one payload, then unconditionally
// clears it and resets the flush timer. Must be called with b.mu held.
func (b *SampleBuffer) flushLocked(ctx context.Context) {
	if len(b.samples) == 0 {
		return
	}

	batch := b.samples
	errFactory := errors.New()

	resp, err := b.cfg.Session.Request(ctx, transport.POST, pushEndpoint, pushPayload{Buffer: batch})
	switch {
	case err != nil:
		b.recordDrop(len(batch))
		logger.ErrorWithCode(errFactory.Wrap(ErrFlushFailed, err)).
			Int("samples", len(batch)).
			Msg("telemetry push failed, batch dropped")
	case !resp.Success:
		b.recordDrop(len(batch))
		logger.Warn().
			Int("samples", len(batch)).
			Int("status", resp.StatusCode).
			Str("user_message", resp.UserMessage).
			Msg("telemetry push rejected, batch dropped")
	default:
		logger.Debug().
			Int("samples", len(batch)).
			Msg("telemetry batch flushed")
	}

	if b.cfg.Archive != nil {
		if aerr := b.cfg.Archive.Store(ctx, batch); aerr != nil {
			logger.Warn().Err(aerr).Msg("telemetry archive write failed")
		}
	}

	b.samples = nil
	b.lastFlush = b.clk.Now()
}

func (b *SampleBuffer) recordDrop(count int) {
	b.dropped += uint64(count)
	if b.cfg.OnDrop != nil {
		b.cfg.OnDrop(count)
	}
}
