package poller

import "github.com/syncagent/syncagent/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("poller_invalid_config")
	ErrPollFailed    = errors.ErrorCode("poller_poll_failed")
	ErrDecodeBatch   = errors.ErrorCode("poller_decode_batch_failed")
	ErrFulfillFailed = errors.ErrorCode("poller_fulfill_failed")
)
