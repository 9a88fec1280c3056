package dispatch

import "github.com/syncagent/syncagent/internal/errors"

const (
	// Listener errors
	ErrListenerFailed  = errors.ErrorCode("dispatch_listener_failed")
	ErrListenerPanic   = errors.ErrorCode("dispatch_listener_panic")
	ErrUnknownType     = errors.ErrorCode("dispatch_unknown_action_type")
	ErrDecodeCommand   = errors.ErrorCode("dispatch_decode_command_failed")
	ErrEnforcementFail = errors.ErrorCode("dispatch_enforcement_failed")
)
