package action

import "time"

// cursorLayout is the wire format for the listen cursor: UTC with
// millisecond precision.
const cursorLayout = "2006-01-02T15:04:05.000Z"

// Cursor marks the last successfully observed point in the action stream.
// It is monotonically non-decreasing: AdvanceTo silently ignores any
// attempt to move it backwards.
type Cursor struct {
	t time.Time
}

// NewCursor creates a cursor positioned at t.
func NewCursor(t time.Time) Cursor {
	return Cursor{t: t.UTC()}
}

// AdvanceTo returns a cursor moved forward to t, or the receiver unchanged
// when t is not after the current position.
func (c Cursor) AdvanceTo(t time.Time) Cursor {
	t = t.UTC()
	if t.After(c.t) {
		return Cursor{t: t}
	}
	return c
}

// Time returns the cursor position.
func (c Cursor) Time() time.Time {
	return c.t
}

// String renders the cursor in the wire timestamp format.
func (c Cursor) String() string {
	return c.t.Format(cursorLayout)
}
