package feedback

import (
	"context"

	"companion-recall/internal/platform/logger"
	"companion-recall/internal/ports/feedback"
	"companion-recall/internal/ports/world"
)

// LogSink solo loguea los cues; es el default cuando no hay webhook.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log.With(map[string]any{"component": "feedback"})}
}

func (s *LogSink) Play(_ context.Context, zoneID string, pos world.Vec3, cue feedback.Cue) {
	s.log.Debug("cue", map[string]any{
		"cue":  string(cue),
		"zone": zoneID,
		"x":    pos.X,
		"y":    pos.Y,
		"z":    pos.Z,
	})
}
