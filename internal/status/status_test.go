package status_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncagent/syncagent/internal/clock"
	"github.com/syncagent/syncagent/internal/status"
	"github.com/syncagent/syncagent/internal/transport"
)

type recorded struct {
	method   transport.Method
	endpoint string
	body     map[string]any
}

type fakeSession struct {
	requests []recorded
}

func (s *fakeSession) Request(_ context.Context, method transport.Method, endpoint string, body any) (*transport.Response, error) {
	var decoded map[string]any
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			return nil, err
		}
	}
	s.requests = append(s.requests, recorded{method: method, endpoint: endpoint, body: decoded})
	return &transport.Response{Success: true, StatusCode: 200}, nil
}

func (s *fakeSession) Close() error { return nil }

type fixedPlayers int

func (f fixedPlayers) PlayerCount() int { return int(f) }

func TestReporterPostsHeartbeat(t *testing.T) {
	session := &fakeSession{}
	clk := clock.NewVirtualClock(time.Unix(1_700_000_000, 0))

	r, err := status.NewReporter(status.Config{
		Session:  session,
		Clock:    clk,
		Interval: 30 * time.Second,
		ServerID: "srv-1",
		Players:  fixedPlayers(12),
	})
	require.NoError(t, err)

	clk.Advance(95 * time.Second)
	r.Report(context.Background())

	require.Len(t, session.requests, 1)
	req := session.requests[0]
	assert.Equal(t, transport.POST, req.method)
	assert.Equal(t, "/roblox/status", req.endpoint)
	assert.Equal(t, "srv-1", req.body["server_id"])
	assert.Equal(t, float64(95), req.body["uptime"])
	assert.Equal(t, float64(12), req.body["players"])
}

func TestReporterWithoutPlayerCounter(t *testing.T) {
	session := &fakeSession{}
	r, err := status.NewReporter(status.Config{
		Session: session,
		Clock:   clock.NewVirtualClock(time.Unix(0, 0)),
	})
	require.NoError(t, err)

	r.Report(context.Background())

	require.Len(t, session.requests, 1)
	assert.Equal(t, float64(0), session.requests[0].body["players"])
}

func TestReporterRunStopsOnCancel(t *testing.T) {
	session := &fakeSession{}
	r, err := status.NewReporter(status.Config{Session: session})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reporter did not stop on cancellation")
	}
}

func TestReportClosing(t *testing.T) {
	session := &fakeSession{}

	status.ReportClosing(context.Background(), session, "maintenance")

	require.Len(t, session.requests, 1)
	assert.Equal(t, "/roblox/close", session.requests[0].endpoint)
	assert.Equal(t, "maintenance", session.requests[0].body["reason"])
}

func TestReporterRequiresSession(t *testing.T) {
	_, err := status.NewReporter(status.Config{})
	assert.Error(t, err)
}
