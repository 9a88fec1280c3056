package dispatch

import (
	"github.com/syncagent/syncagent/internal/action"
	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
)

// Moderation routes moderation actions to per-subtype listeners, falling
// back to engine-level enforcement for subtypes nobody listens on.
// Delegation is total: one registered listener disables the default for
// that subtype.
type Moderation struct {
	engine Engine

	ban    []ModerationListener
	mute   []ModerationListener
	kick   []ModerationListener
	report []ModerationListener
}

func NewModeration(engine Engine) *Moderation {
	return &Moderation{engine: engine}
}

// Register appends a listener for the given moderation subtype.
func (m *Moderation) Register(s action.Subtype, l ModerationListener) {
	switch s {
	case action.SubtypeBan:
		m.ban = append(m.ban, l)
	case action.SubtypeMute:
		m.mute = append(m.mute, l)
	case action.SubtypeKick:
		m.kick = append(m.kick, l)
	case action.SubtypeReport:
		m.report = append(m.report, l)
	case action.SubtypeUnknown:
		logger.Warn().Msg("listener not registrable for unknown moderation subtype")
	}
}

// Dispatch handles one moderation command and reports whether the action
// counts as handled, which drives fulfillment. An unlistened report has no
// default enforcement and is deliberately left unhandled so the control
// plane can re-deliver it once a listener exists.
func (m *Moderation) Dispatch(cmd action.ModerationCommand) bool {
	listeners := m.listenersFor(cmd.Subtype)
	if len(listeners) > 0 {
		for i, l := range listeners {
			invoke("moderation/"+cmd.Subtype.String(), i, func() error { return l(cmd) })
		}
		return true
	}

	switch cmd.Subtype {
	case action.SubtypeBan, action.SubtypeKick:
		m.enforce(cmd, func(p Player) error { return m.engine.KickPlayer(p, cmd.Reason) })
		return true
	case action.SubtypeMute:
		m.enforce(cmd, func(p Player) error { return m.engine.MutePlayer(p) })
		return true
	case action.SubtypeReport:
		logger.Warn().
			Int64("player_id", cmd.PlayerID).
			Msg("report received with no listener registered; leaving unfulfilled")
		return false
	default:
		logger.Warn().
			Str("subtype", cmd.Subtype.String()).
			Msg("moderation command with unknown subtype")
		return false
	}
}

// enforce applies a default engine action against the target player, when
// the player is still in the live set. A missing player is not an error:
// the command is considered handled either way.
func (m *Moderation) enforce(cmd action.ModerationCommand, apply func(Player) error) {
	errFactory := errors.New()

	p, ok := m.engine.FindPlayer(cmd.PlayerID)
	if !ok {
		logger.Info().
			Int64("player_id", cmd.PlayerID).
			Str("subtype", cmd.Subtype.String()).
			Msg("target player not in live set; nothing to enforce")
		return
	}

	if err := apply(p); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(ErrEnforcementFail, err)).
			Int64("player_id", cmd.PlayerID).
			Str("subtype", cmd.Subtype.String()).
			Msg("default enforcement failed")
		return
	}

	logger.Info().
		Int64("player_id", cmd.PlayerID).
		Str("player", p.Name()).
		Str("subtype", cmd.Subtype.String()).
		Str("reason", cmd.Reason).
		Msg("default enforcement applied")
}

func (m *Moderation) listenersFor(s action.Subtype) []ModerationListener {
	switch s {
	case action.SubtypeBan:
		return m.ban
	case action.SubtypeMute:
		return m.mute
	case action.SubtypeKick:
		return m.kick
	case action.SubtypeReport:
		return m.report
	default:
		return nil
	}
}
