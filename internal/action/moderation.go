package action

import "encoding/json"

// Subtype identifies the moderation action family member. Closed set, same
// rationale as Type.
type Subtype uint8

const (
	SubtypeUnknown Subtype = iota
	SubtypeBan
	SubtypeMute
	SubtypeKick
	SubtypeReport
)

var subtypeNames = map[Subtype]string{
	SubtypeBan:    "ban",
	SubtypeMute:   "mute",
	SubtypeKick:   "kick",
	SubtypeReport: "report",
}

var subtypeValues = map[string]Subtype{
	"ban":    SubtypeBan,
	"mute":   SubtypeMute,
	"kick":   SubtypeKick,
	"report": SubtypeReport,
}

func (s Subtype) String() string {
	if name, ok := subtypeNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s *Subtype) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = subtypeValues[raw]
	return nil
}

func (s Subtype) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ModerationCommand is the decoded payload of a moderation action.
type ModerationCommand struct {
	Subtype  Subtype `json:"type"`
	PlayerID int64   `json:"player_id"`
	Reason   string  `json:"reason"`
}
