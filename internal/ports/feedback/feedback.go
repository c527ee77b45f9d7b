package feedback

import (
	"context"

	"companion-recall/internal/ports/world"
)

// Cue identifica un efecto de sonido o visual.
type Cue string

const (
	CueWhistlePet   Cue = "whistle.pet"
	CueWhistleMount Cue = "whistle.mount"
)

// Sink recibe cues; es fire-and-forget, el core no mira el resultado.
type Sink interface {
	Play(ctx context.Context, zoneID string, pos world.Vec3, cue Cue)
}
