package transport

import "github.com/syncagent/syncagent/internal/errors"

const (
	// Configuration errors
	ErrInvalidConfig  = errors.ErrorCode("transport_invalid_config")
	ErrInvalidBaseURL = errors.ErrorCode("transport_invalid_base_url")

	// Request errors
	ErrEncodeBody    = errors.ErrorCode("transport_encode_body_failed")
	ErrBuildRequest  = errors.ErrorCode("transport_build_request_failed")
	ErrRequestFailed = errors.ErrorCode("transport_request_failed")
	ErrSessionClosed = errors.ErrorCode("transport_session_closed")
)
