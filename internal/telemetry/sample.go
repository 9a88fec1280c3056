package telemetry

// Kind tags the metric family a sample belongs to, in wire form.
type Kind string

const (
	KindCounter   Kind = "counter"
	KindGauge     Kind = "gauge"
	KindHistogram Kind = "hist"
	KindSummary   Kind = "sum"
)

// Labels are free-form sample dimensions. Ownership transfers to the
// buffer when a sample is emitted; callers must not mutate a map after
// passing it to a handle.
type Labels map[string]string

// bucketsLabel is the reserved label key carrying a histogram's serialized
// bucket list, so bucketing can be computed downstream without redefining
// client code.
const bucketsLabel = "__buckets"

// Sample is one timestamped observation. Immutable once created.
type Sample struct {
	Timestamp int64   `json:"t"`
	Kind      Kind    `json:"k"`
	Name      string  `json:"n"`
	Value     float64 `json:"v"`
	Labels    Labels  `json:"l,omitempty"`
}
