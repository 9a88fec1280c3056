package telemetry_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncagent/syncagent/internal/clock"
	"github.com/syncagent/syncagent/internal/telemetry"
	"github.com/syncagent/syncagent/internal/transport"
)

// fakeSession captures flush payloads and can be told to fail.
type fakeSession struct {
	bodies [][]telemetry.Sample
	fail   bool
	reject bool
}

func (s *fakeSession) Request(_ context.Context, _ transport.Method, endpoint string, body any) (*transport.Response, error) {
	if s.fail {
		return nil, fmt.Errorf("connection refused")
	}
	if endpoint != "/telemetry/push" {
		return &transport.Response{Success: true, StatusCode: 200}, nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Buffer []telemetry.Sample `json:"buffer"`
	}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, err
	}
	s.bodies = append(s.bodies, payload.Buffer)

	if s.reject {
		return &transport.Response{Success: false, StatusCode: 500}, nil
	}
	return &transport.Response{Success: true, StatusCode: 200}, nil
}

func (s *fakeSession) Close() error { return nil }

func newRegistry(t *testing.T, session *fakeSession, clk clock.Clock, interval time.Duration) *telemetry.Registry {
	t.Helper()
	r, err := telemetry.NewRegistry(telemetry.Config{
		Session:       session,
		Clock:         clk,
		FlushInterval: interval,
	})
	require.NoError(t, err)
	return r
}

func values(batch []telemetry.Sample) []float64 {
	out := make([]float64, 0, len(batch))
	for _, s := range batch {
		out = append(out, s.Value)
	}
	return out
}

func TestCounterEmitsRunningTotal(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	c := r.Counter("requests")
	c.Inc(nil)
	c.Inc(nil)
	c.Inc(nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	batch := session.bodies[0]
	assert.Equal(t, []float64{1, 2, 3}, values(batch), "counter samples are cumulative, never deltas")
	for _, s := range batch {
		assert.Equal(t, telemetry.KindCounter, s.Kind)
		assert.Equal(t, "requests", s.Name)
	}
}

func TestCounterAddDelta(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	c := r.Counter("bytes")
	c.Add(10, nil)
	c.Add(2.5, nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	assert.Equal(t, []float64{10, 12.5}, values(session.bodies[0]))
}

func TestGaugeEmitsRawValues(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	g := r.Gauge("players")
	g.Set(42, nil)
	g.Sub(5, nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	assert.Equal(t, []float64{42, -5}, values(session.bodies[0]),
		"gauges keep no client-side running value")
}

func TestGaugeScenario(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	g := r.Gauge("players")
	g.Set(12, nil)
	g.Inc(nil)
	g.Sub(2, nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	batch := session.bodies[0]
	assert.Equal(t, []float64{12, 1, -2}, values(batch))
	for _, s := range batch {
		assert.Equal(t, telemetry.KindGauge, s.Kind)
	}
}

func TestHistogramAttachesBuckets(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	h := r.Histogram("latency", []float64{10, 50, 100})
	h.Observe(33, telemetry.Labels{"route": "/join"})
	h.Observe(87, nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	batch := session.bodies[0]
	require.Len(t, batch, 2)
	for _, s := range batch {
		assert.Equal(t, telemetry.KindHistogram, s.Kind)
		assert.Equal(t, "[10,50,100]", s.Labels["__buckets"])
	}
	assert.Equal(t, "/join", batch[0].Labels["route"], "caller labels survive alongside the bucket list")
}

func TestHistogramWithoutBuckets(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	h := r.Histogram("latency", nil)
	h.Observe(5, nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	_, ok := session.bodies[0][0].Labels["__buckets"]
	assert.False(t, ok)
}

func TestSummaryEmitsRawObservations(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	s := r.Summary("frame_time")
	s.Observe(16.6, nil)
	s.Observe(33.3, nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	assert.Equal(t, []float64{16.6, 33.3}, values(session.bodies[0]))
	assert.Equal(t, telemetry.KindSummary, session.bodies[0][0].Kind)
}

func TestThresholdFlushDrainsWholeGeneration(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, 10*time.Second)

	c := r.Counter("ticks")

	// Eleven pushes spaced one second apart. No flush fires until the push
	// at t >= 10s, which drains everything accumulated in one batch.
	for i := 0; i < 10; i++ {
		c.Inc(nil)
		assert.Empty(t, session.bodies, "no flush before the interval elapses")
		clk.Advance(time.Second)
	}
	c.Inc(nil)

	require.Len(t, session.bodies, 1, "exactly one flush")
	assert.Len(t, session.bodies[0], 11, "the flush drains every accumulated sample")
}

func TestFlushEmptyBufferIsNoop(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	r.Flush(context.Background())
	assert.Empty(t, session.bodies)
}

func TestFailedFlushDrainsAndCounts(t *testing.T) {
	session := &fakeSession{fail: true}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))

	var dropped int
	r, err := telemetry.NewRegistry(telemetry.Config{
		Session:       session,
		Clock:         clk,
		FlushInterval: time.Hour,
		OnDrop:        func(n int) { dropped += n },
	})
	require.NoError(t, err)

	g := r.Gauge("players")
	g.Set(1, nil)
	g.Set(2, nil)
	r.Flush(context.Background())

	assert.Equal(t, uint64(2), r.Dropped(), "loss is counted, not silent")
	assert.Equal(t, 2, dropped)

	// The buffer was cleared regardless of the failure.
	session.fail = false
	r.Flush(context.Background())
	assert.Empty(t, session.bodies)
}

func TestRejectedFlushAlsoDrains(t *testing.T) {
	session := &fakeSession{reject: true}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))
	r := newRegistry(t, session, clk, time.Hour)

	r.Counter("x").Inc(nil)
	r.Flush(context.Background())

	assert.Equal(t, uint64(1), r.Dropped())

	session.reject = false
	r.Flush(context.Background())
	require.Len(t, session.bodies, 1, "second flush had nothing left to send")
}

func TestSamplesPreservePushOrderAndTimestamps(t *testing.T) {
	session := &fakeSession{}
	start := time.Unix(1_700_000_000, 0)
	clk := clock.NewVirtualClock(start)
	r := newRegistry(t, session, clk, time.Hour)

	g := r.Gauge("players")
	g.Set(1, nil)
	clk.Advance(2 * time.Second)
	g.Set(2, nil)
	r.Flush(context.Background())

	require.Len(t, session.bodies, 1)
	batch := session.bodies[0]
	require.Len(t, batch, 2)
	assert.Equal(t, start.Unix(), batch[0].Timestamp)
	assert.Equal(t, start.Unix()+2, batch[1].Timestamp)
}
