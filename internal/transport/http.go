package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"

	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
)

// envelope is the wire shape every control-plane endpoint responds with.
type envelope struct {
	Success     bool            `json:"success"`
	UserMessage string          `json:"user_message"`
	Data        json.RawMessage `json:"data"`
}

type httpSession struct {
	cfg    Config
	client *http.Client
	closed atomic.Bool
}

// NewSession creates an HTTP-backed session against the control plane.
func NewSession(cfg Config) (Session, error) {
	errFactory := errors.New()

	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	return &httpSession{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (s *httpSession) Request(ctx context.Context, method Method, endpoint string, body any) (*Response, error) {
	errFactory := errors.New()

	if s.closed.Load() {
		return nil, errFactory.New(ErrSessionClosed)
	}

	var (
		reader      io.Reader
		gzipped     bool
		payloadSize int
	)
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errFactory.Wrap(ErrEncodeBody, err)
		}
		payloadSize = len(encoded)

		if payloadSize >= gzipThreshold {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			if _, err := zw.Write(encoded); err != nil {
				return nil, errFactory.Wrap(ErrEncodeBody, err)
			}
			if err := zw.Close(); err != nil {
				return nil, errFactory.Wrap(ErrEncodeBody, err)
			}
			reader = &buf
			gzipped = true
		} else {
			reader = bytes.NewReader(encoded)
		}
	}

	url := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, string(method), url, reader)
	if err != nil {
		return nil, errFactory.Wrap(ErrBuildRequest, err)
	}

	req.Header.Set("User-Agent", s.cfg.UserAgent)
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		if gzipped {
			req.Header.Set("Content-Encoding", "gzip")
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errFactory.Wrap(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errFactory.Wrap(ErrRequestFailed, err)
	}

	result := &Response{StatusCode: resp.StatusCode}

	var env envelope
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil {
		result.Success = env.Success
		result.UserMessage = env.UserMessage
		result.Data = env.Data
	} else {
		// Endpoints without an envelope (or empty bodies) classify by status.
		result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	}

	logger.Debug().
		Str("method", string(method)).
		Str("endpoint", endpoint).
		Int("status", result.StatusCode).
		Bool("success", result.Success).
		Int("body_bytes", payloadSize).
		Bool("gzip", gzipped).
		Msg("request completed")

	return result, nil
}

func (s *httpSession) Close() error {
	s.closed.Store(true)
	s.client.CloseIdleConnections()
	return nil
}
