package dispatch_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncagent/syncagent/internal/action"
	"github.com/syncagent/syncagent/internal/dispatch"
)

type fakePlayer struct {
	id   int64
	name string
}

func (p *fakePlayer) ID() int64    { return p.id }
func (p *fakePlayer) Name() string { return p.name }

type kickCall struct {
	playerID int64
	reason   string
}

type fakeEngine struct {
	players    map[int64]*fakePlayer
	kicks      []kickCall
	mutes      []int64
	shutdowns  []string
	broadcasts []string
	executed   []string
}

func newFakeEngine(players ...*fakePlayer) *fakeEngine {
	e := &fakeEngine{players: make(map[int64]*fakePlayer)}
	for _, p := range players {
		e.players[p.id] = p
	}
	return e
}

func (e *fakeEngine) FindPlayer(id int64) (dispatch.Player, bool) {
	p, ok := e.players[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (e *fakeEngine) KickPlayer(p dispatch.Player, reason string) error {
	e.kicks = append(e.kicks, kickCall{playerID: p.ID(), reason: reason})
	return nil
}

func (e *fakeEngine) MutePlayer(p dispatch.Player) error {
	e.mutes = append(e.mutes, p.ID())
	return nil
}

func (e *fakeEngine) Shutdown(reason string) error {
	e.shutdowns = append(e.shutdowns, reason)
	return nil
}

func (e *fakeEngine) Broadcast(message string) error {
	e.broadcasts = append(e.broadcasts, message)
	return nil
}

func (e *fakeEngine) Execute(source string) error {
	e.executed = append(e.executed, source)
	return nil
}

func (e *fakeEngine) PlayerCount() int { return len(e.players) }

func moderationAction(t *testing.T, subtype string, playerID int64, reason string) action.Action {
	t.Helper()
	data, err := json.Marshal(map[string]any{"type": subtype, "player_id": playerID, "reason": reason})
	require.NoError(t, err)
	return action.Action{ID: 1, Type: action.TypeModeration, Data: data}
}

func TestRegistryInvokesInRegistrationOrder(t *testing.T) {
	d := dispatch.New(newFakeEngine())

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		d.Registry().Register(action.TypeChat, func(json.RawMessage) error {
			order = append(order, i)
			return nil
		})
	}

	fulfilled := d.Deliver(action.Action{ID: 5, Type: action.TypeChat, Data: json.RawMessage(`"hello"`)})
	assert.True(t, fulfilled)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRegistryIsolatesFailingListeners(t *testing.T) {
	engine := newFakeEngine()
	d := dispatch.New(engine)

	var reached bool
	d.Registry().Register(action.TypeShutdown, func(json.RawMessage) error {
		panic("listener exploded")
	})
	d.Registry().Register(action.TypeShutdown, func(json.RawMessage) error {
		return errors.New("listener failed")
	})
	d.Registry().Register(action.TypeShutdown, func(json.RawMessage) error {
		reached = true
		return nil
	})

	fulfilled := d.Deliver(action.Action{ID: 2, Type: action.TypeShutdown, Data: json.RawMessage(`"maintenance"`)})
	assert.True(t, fulfilled)
	assert.True(t, reached, "later listeners must run despite earlier failures")
	assert.Empty(t, engine.shutdowns, "registered listeners disable the default")
}

func TestDeliverAppliesDefaultsWithoutListeners(t *testing.T) {
	engine := newFakeEngine()
	d := dispatch.New(engine)

	assert.True(t, d.Deliver(action.Action{ID: 1, Type: action.TypeShutdown, Data: json.RawMessage(`"maintenance"`)}))
	assert.True(t, d.Deliver(action.Action{ID: 2, Type: action.TypeChat, Data: json.RawMessage(`"server restarting"`)}))
	assert.True(t, d.Deliver(action.Action{ID: 3, Type: action.TypeRCE, Data: json.RawMessage(`"print(1)"`)}))

	assert.Equal(t, []string{"maintenance"}, engine.shutdowns)
	assert.Equal(t, []string{"server restarting"}, engine.broadcasts)
	assert.Equal(t, []string{"print(1)"}, engine.executed)
}

func TestDeliverUnknownTypeNotFulfilled(t *testing.T) {
	d := dispatch.New(newFakeEngine())
	assert.False(t, d.Deliver(action.Action{ID: 4, Type: action.TypeUnknown}))
}

func TestModerationBanDefaultKicksAndFulfills(t *testing.T) {
	engine := newFakeEngine(&fakePlayer{id: 99, name: "griefer"})
	d := dispatch.New(engine)

	fulfilled := d.Deliver(moderationAction(t, "ban", 99, "exploiting"))
	assert.True(t, fulfilled)
	require.Len(t, engine.kicks, 1)
	assert.Equal(t, kickCall{playerID: 99, reason: "exploiting"}, engine.kicks[0])
}

func TestModerationKickDefaultWithAbsentPlayer(t *testing.T) {
	engine := newFakeEngine()
	d := dispatch.New(engine)

	fulfilled := d.Deliver(moderationAction(t, "kick", 12, "afk"))
	assert.True(t, fulfilled, "a missing player still counts as handled")
	assert.Empty(t, engine.kicks)
}

func TestModerationMuteDefault(t *testing.T) {
	engine := newFakeEngine(&fakePlayer{id: 77, name: "spammer"})
	d := dispatch.New(engine)

	fulfilled := d.Deliver(moderationAction(t, "mute", 77, "spam"))
	assert.True(t, fulfilled)
	assert.Equal(t, []int64{77}, engine.mutes)
}

func TestModerationListenerOptsOutOfDefault(t *testing.T) {
	engine := newFakeEngine(&fakePlayer{id: 99, name: "griefer"})
	d := dispatch.New(engine)

	var got action.ModerationCommand
	d.Moderation().Register(action.SubtypeBan, func(cmd action.ModerationCommand) error {
		got = cmd
		return nil
	})

	fulfilled := d.Deliver(moderationAction(t, "ban", 99, "exploiting"))
	assert.True(t, fulfilled)
	assert.Empty(t, engine.kicks, "delegation is total, not additive")
	assert.Equal(t, int64(99), got.PlayerID)
	assert.Equal(t, "exploiting", got.Reason)
}

func TestModerationReportUnlistenedNotFulfilled(t *testing.T) {
	engine := newFakeEngine(&fakePlayer{id: 9, name: "victim"})
	d := dispatch.New(engine)

	fulfilled := d.Deliver(moderationAction(t, "report", 9, "harassment"))
	assert.False(t, fulfilled, "no default enforcement exists for report")
	assert.Empty(t, engine.kicks)
	assert.Empty(t, engine.mutes)
}

func TestModerationReportWithListenerFulfills(t *testing.T) {
	d := dispatch.New(newFakeEngine())

	var seen []action.ModerationCommand
	d.Moderation().Register(action.SubtypeReport, func(cmd action.ModerationCommand) error {
		seen = append(seen, cmd)
		return nil
	})

	fulfilled := d.Deliver(moderationAction(t, "report", 9, "harassment"))
	assert.True(t, fulfilled)
	require.Len(t, seen, 1)
	assert.Equal(t, "harassment", seen[0].Reason)
}

func TestModerationUndecodablePayloadNotFulfilled(t *testing.T) {
	d := dispatch.New(newFakeEngine())

	fulfilled := d.Deliver(action.Action{ID: 3, Type: action.TypeModeration, Data: json.RawMessage(`"garbage"`)})
	assert.False(t, fulfilled)
}
