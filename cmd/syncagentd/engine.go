package main

import (
	"github.com/syncagent/syncagent/internal/dispatch"
	"github.com/syncagent/syncagent/internal/logger"
)

// logEngine is the engine binding used when no host process supplies one.
// It keeps an empty player set and logs every primitive instead of
// enforcing it.
type logEngine struct{}

func newLogEngine() *logEngine {
	return &logEngine{}
}

func (*logEngine) FindPlayer(id int64) (dispatch.Player, bool) {
	logger.Debug().Int64("player_id", id).Msg("player lookup against empty player set")
	return nil, false
}

func (*logEngine) KickPlayer(p dispatch.Player, reason string) error {
	logger.Info().Int64("player_id", p.ID()).Str("reason", reason).Msg("kick requested")
	return nil
}

func (*logEngine) MutePlayer(p dispatch.Player) error {
	logger.Info().Int64("player_id", p.ID()).Msg("mute requested")
	return nil
}

func (*logEngine) Shutdown(reason string) error {
	logger.Info().Str("reason", reason).Msg("shutdown requested")
	return nil
}

func (*logEngine) Broadcast(message string) error {
	logger.Info().Str("message", message).Msg("broadcast requested")
	return nil
}

func (*logEngine) Execute(source string) error {
	logger.Warn().Int("source_bytes", len(source)).Msg("remote execution requested but no engine is attached")
	return nil
}

func (*logEngine) PlayerCount() int {
	return 0
}
