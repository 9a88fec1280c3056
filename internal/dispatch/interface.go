package dispatch

import (
	"encoding/json"

	"github.com/syncagent/syncagent/internal/action"
)

// Listener is an application callback for one action type. It receives the
// raw action payload. A listener error or panic is isolated: it never
// blocks delivery to the remaining listeners of the same action.
type Listener func(payload json.RawMessage) error

// ModerationListener is an application callback for one moderation
// subtype. Registering any listener for a subtype opts out of the built-in
// enforcement for that subtype entirely.
type ModerationListener func(cmd action.ModerationCommand) error

// Player is one member of the engine's live player set.
type Player interface {
	ID() int64
	Name() string
}

// Engine is the game-engine binding the agent enforces through. The agent
// only depends on this contract; the host process supplies the
// implementation.
type Engine interface {
	// FindPlayer looks up a player by id in the live player set.
	FindPlayer(id int64) (Player, bool)
	// KickPlayer forcibly disconnects a player with the given reason.
	KickPlayer(p Player, reason string) error
	// MutePlayer applies the engine-level chat mute primitive.
	MutePlayer(p Player) error
	// Shutdown closes the server with the given reason.
	Shutdown(reason string) error
	// Broadcast sends a chat message to every connected player.
	Broadcast(message string) error
	// Execute runs a piece of server-side code.
	Execute(source string) error
	// PlayerCount returns the size of the live player set.
	PlayerCount() int
}
