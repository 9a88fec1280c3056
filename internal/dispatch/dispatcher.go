package dispatch

import (
	"github.com/syncagent/syncagent/internal/action"
	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
)

// Dispatcher routes actions to listeners and applies engine defaults for
// types with no listener registered. Delivery to a type with zero
// listeners is never a silent no-op.
type Dispatcher struct {
	registry   *Registry
	moderation *Moderation
	engine     Engine
}

func New(engine Engine) *Dispatcher {
	return &Dispatcher{
		registry:   NewRegistry(),
		moderation: NewModeration(engine),
		engine:     engine,
	}
}

// Registry exposes listener registration for the non-moderation types.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Moderation exposes per-subtype listener registration.
func (d *Dispatcher) Moderation() *Moderation {
	return d.moderation
}

// Deliver handles one action and reports whether it should be marked
// fulfilled at the control plane.
func (d *Dispatcher) Deliver(a action.Action) bool {
	switch a.Type {
	case action.TypeShutdown:
		if d.registry.Dispatch(a.Type, a.Data) == 0 {
			d.applyDefault(a, d.engine.Shutdown)
		}
		return true
	case action.TypeChat:
		if d.registry.Dispatch(a.Type, a.Data) == 0 {
			d.applyDefault(a, d.engine.Broadcast)
		}
		return true
	case action.TypeRCE:
		if d.registry.Dispatch(a.Type, a.Data) == 0 {
			d.applyDefault(a, d.engine.Execute)
		}
		return true
	case action.TypeModeration:
		cmd, err := a.Moderation()
		if err != nil {
			logger.ErrorWithCode(errors.New().Wrap(ErrDecodeCommand, err)).
				Int64("action_id", a.ID).
				Msg("undecodable moderation payload")
			return false
		}
		return d.moderation.Dispatch(cmd)
	case action.TypeUnknown:
		fallthrough
	default:
		logger.Warn().
			Int64("action_id", a.ID).
			Msg("action with unknown type ignored")
		return false
	}
}

// applyDefault decodes the action's text payload and hands it to the
// engine primitive for the type.
func (d *Dispatcher) applyDefault(a action.Action, apply func(string) error) {
	errFactory := errors.New()

	text, err := a.Text()
	if err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrDecodeCommand, err)).
			Int64("action_id", a.ID).
			Str("type", a.Type.String()).
			Msg("undecodable action payload")
		return
	}

	if err := apply(text); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrEnforcementFail, err)).
			Int64("action_id", a.ID).
			Str("type", a.Type.String()).
			Msg("default handling failed")
		return
	}

	logger.Debug().
		Int64("action_id", a.ID).
		Str("type", a.Type.String()).
		Msg("default handling applied")
}
