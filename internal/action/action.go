package action

import (
	"encoding/json"

	"github.com/syncagent/syncagent/internal/errors"
)

// Type identifies the family of work an action carries. The set is closed:
// dispatch tables switch over it exhaustively instead of keying on raw
// wire strings.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeShutdown
	TypeRCE
	TypeChat
	TypeModeration
)

var typeNames = map[Type]string{
	TypeShutdown:   "shutdown",
	TypeRCE:        "rce",
	TypeChat:       "chat",
	TypeModeration: "moderation",
}

var typeValues = map[string]Type{
	"shutdown":   TypeShutdown,
	"rce":        TypeRCE,
	"chat":       TypeChat,
	"moderation": TypeModeration,
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = typeValues[raw] // unknown strings map to TypeUnknown
	return nil
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Action is a unit of work pushed from the control plane. Immutable once
// received; the payload stays opaque here except for the typed accessors
// below.
type Action struct {
	ID   int64           `json:"id"`
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ErrDecodePayload = errors.ErrorCode("action_decode_payload_failed")
)

// Text decodes a payload that carries a bare string: the shutdown reason,
// the chat broadcast message, or the rce source text.
func (a Action) Text() (string, error) {
	var s string
	if err := json.Unmarshal(a.Data, &s); err != nil {
		return "", errors.New().Wrap(ErrDecodePayload, err)
	}
	return s, nil
}

// Moderation decodes the payload of a moderation action.
func (a Action) Moderation() (ModerationCommand, error) {
	var cmd ModerationCommand
	if err := json.Unmarshal(a.Data, &cmd); err != nil {
		return ModerationCommand{}, errors.New().Wrap(ErrDecodePayload, err)
	}
	return cmd, nil
}
