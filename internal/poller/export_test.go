package poller

import (
	"context"
	"time"
)

// Cycle exposes one poll round to tests so the wait sequence can be
// observed without running the loop.
func (p *Poller) Cycle(ctx context.Context) time.Duration {
	return p.cycle(ctx)
}

// Wait exposes the stored pacing state.
func (p *Poller) Wait() time.Duration {
	return p.wait
}

const (
	MinWait        = minWait
	MaxWait        = maxWait
	WaitStep       = waitStep
	FailurePenalty = failurePenalty
)
