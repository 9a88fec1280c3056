package telemetry

import (
	"context"
	"encoding/json"
	"sync"
)

// Registry creates metric handles bound to one shared sample buffer.
type Registry struct {
	buf *SampleBuffer
}

func NewRegistry(cfg Config) (*Registry, error) {
	buf, err := NewSampleBuffer(cfg)
	if err != nil {
		return nil, err
	}
	return &Registry{buf: buf}, nil
}

// Flush drains any buffered samples immediately.
func (r *Registry) Flush(ctx context.Context) {
	r.buf.Flush(ctx)
}

// Dropped returns the total number of samples lost to failed flushes.
func (r *Registry) Dropped() uint64 {
	return r.buf.Dropped()
}

// Counter returns a handle emitting cumulative samples for name. The
// counter is the only handle with client-side aggregation: every sample
// carries the running total, never the delta.
func (r *Registry) Counter(name string) *Counter {
	return &Counter{buf: r.buf, name: name}
}

// Gauge returns a handle emitting raw gauge samples for name.
func (r *Registry) Gauge(name string) *Gauge {
	return &Gauge{buf: r.buf, name: name}
}

// Histogram returns a handle emitting raw observations for name. When
// buckets is non-empty, a serialized copy of the list rides along on every
// sample under a reserved label key.
func (r *Registry) Histogram(name string, buckets []float64) *Histogram {
	h := &Histogram{buf: r.buf, name: name}
	if len(buckets) > 0 {
		encoded, _ := json.Marshal(buckets)
		h.buckets = string(encoded)
	}
	return h
}

// Summary returns a handle emitting raw observations for name, with no
// local aggregation.
func (r *Registry) Summary(name string) *Summary {
	return &Summary{buf: r.buf, name: name}
}

// Counter accumulates a private running total and emits it on every call.
type Counter struct {
	buf  *SampleBuffer
	name string

	mu    sync.Mutex
	total float64
}

// Inc adds 1 and emits the new total.
func (c *Counter) Inc(labels Labels) {
	c.Add(1, labels)
}

// Add adds delta and emits the new total.
func (c *Counter) Add(delta float64, labels Labels) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total += delta
	// Pushing under the handle lock keeps totals in order in the buffer.
	c.buf.Push(KindCounter, c.name, c.total, labels)
}

// Gauge is a stateless pass-through: every call emits a raw value and no
// client-side running value is kept. Aggregation, if any, happens
// downstream.
type Gauge struct {
	buf  *SampleBuffer
	name string
}

// Set emits value verbatim.
func (g *Gauge) Set(value float64, labels Labels) {
	g.buf.Push(KindGauge, g.name, value, labels)
}

// Inc emits +1 as a raw sample.
func (g *Gauge) Inc(labels Labels) {
	g.buf.Push(KindGauge, g.name, 1, labels)
}

// Dec emits -1 as a raw sample.
func (g *Gauge) Dec(labels Labels) {
	g.buf.Push(KindGauge, g.name, -1, labels)
}

// Add emits +delta as a raw sample.
func (g *Gauge) Add(delta float64, labels Labels) {
	g.buf.Push(KindGauge, g.name, delta, labels)
}

// Sub emits -delta as a raw sample.
func (g *Gauge) Sub(delta float64, labels Labels) {
	g.buf.Push(KindGauge, g.name, -delta, labels)
}

// Histogram emits raw observations; bucketing is computed downstream from
// the attached bucket list.
type Histogram struct {
	buf     *SampleBuffer
	name    string
	buckets string
}

// Observe emits the raw value.
func (h *Histogram) Observe(value float64, labels Labels) {
	if h.buckets != "" {
		withBuckets := make(Labels, len(labels)+1)
		for k, v := range labels {
			withBuckets[k] = v
		}
		withBuckets[bucketsLabel] = h.buckets
		labels = withBuckets
	}
	h.buf.Push(KindHistogram, h.name, value, labels)
}

// Summary emits raw observations with no local aggregation.
type Summary struct {
	buf  *SampleBuffer
	name string
}

// Observe emits the raw value.
func (s *Summary) Observe(value float64, labels Labels) {
	s.buf.Push(KindSummary, s.name, value, labels)
}
