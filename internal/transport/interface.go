package transport

import (
	"context"
	"encoding/json"
)

// Session performs one authenticated request against the control plane
// and returns a uniform result. Callers never interpret raw HTTP status
// codes; they branch on Success and StatusCode as already classified here.
type Session interface {
	Request(ctx context.Context, method Method, endpoint string, body any) (*Response, error)
	Close() error
}

// Method is the subset of HTTP verbs the control plane API uses.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	DELETE Method = "DELETE"
)

// Response is the classified outcome of a completed request. A transport
// failure (request never completed) is reported as an error instead.
type Response struct {
	Success     bool
	UserMessage string
	Data        json.RawMessage
	StatusCode  int
}
