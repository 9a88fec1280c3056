package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/syncagent/syncagent/internal/action"
	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
)

// Registry maps each action type to an ordered list of listeners.
// Registration order is invocation order. There is no removal operation.
//
// Registration happens during host startup, before the poller runs;
// dispatch happens only on the poller goroutine. The registry therefore
// needs no locking.
type Registry struct {
	shutdown []Listener
	rce      []Listener
	chat     []Listener
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a listener for the given action type. Moderation
// actions are routed per-subtype through the Moderation dispatcher, not
// here.
func (r *Registry) Register(t action.Type, l Listener) {
	switch t {
	case action.TypeShutdown:
		r.shutdown = append(r.shutdown, l)
	case action.TypeRCE:
		r.rce = append(r.rce, l)
	case action.TypeChat:
		r.chat = append(r.chat, l)
	case action.TypeModeration, action.TypeUnknown:
		logger.Warn().
			Str("type", t.String()).
			Msg("listener not registrable for this action type")
	}
}

// Dispatch invokes every listener registered for the type, in registration
// order, and returns the number invoked. A zero return tells the caller to
// apply the documented default for the type instead.
func (r *Registry) Dispatch(t action.Type, payload json.RawMessage) int {
	listeners := r.listenersFor(t)
	for i, l := range listeners {
		invoke(t.String(), i, func() error { return l(payload) })
	}
	return len(listeners)
}

// HasListeners reports whether any listener is registered for the type.
func (r *Registry) HasListeners(t action.Type) bool {
	return len(r.listenersFor(t)) > 0
}

func (r *Registry) listenersFor(t action.Type) []Listener {
	switch t {
	case action.TypeShutdown:
		return r.shutdown
	case action.TypeRCE:
		return r.rce
	case action.TypeChat:
		return r.chat
	default:
		return nil
	}
}

// invoke runs one listener with panic and error isolation so a single
// failing handler never aborts the remainder of a dispatch batch.
func invoke(key string, index int, fn func() error) {
	errFactory := errors.New()

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorWithCode(errFactory.WithData(ErrListenerPanic, fmt.Sprintf("%v", rec))).
				Str("listener", key).
				Int("index", index).
				Msg("listener panicked")
		}
	}()

	if err := fn(); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrListenerFailed, err)).
			Str("listener", key).
			Int("index", index).
			Msg("listener returned error")
	}
}
