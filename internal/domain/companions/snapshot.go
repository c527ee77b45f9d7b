package companions

import (
	"fmt"
	"time"

	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// Capture arma el registro de una criatura viva. Si el estado no se puede
// serializar devuelve el registro sin State junto con el error.
func Capture(c world.Creature, owner uuid.UUID, cat eligibility.Category, zoneID string, at time.Time) (Record, error) {
	rec := Record{
		ID:        c.ID(),
		OwnerID:   owner,
		ZoneID:    zoneID,
		Position:  c.Position(),
		Category:  cat,
		Name:      CreatureName(c),
		UpdatedAt: at.UTC(),
	}

	blob, err := c.Snapshot()
	if err != nil {
		return rec, fmt.Errorf("snapshot %s: %w", c.ID(), err)
	}
	rec.State = blob
	return rec, nil
}

// Track registra la criatura si está viva, es elegible y tiene dueño.
// Devuelve false si no correspondía registrarla. Hilo de la zona.
func Track(reg *Registry, rules *eligibility.Rules, c world.Creature, at time.Time) (Record, bool, error) {
	if c == nil || !c.Alive() {
		return Record{}, false, nil
	}
	cat, ok := rules.CategoryOf(c)
	if !ok {
		return Record{}, false, nil
	}
	owner, ok := rules.OwnerOf(c)
	if !ok {
		return Record{}, false, nil
	}
	return TrackAs(reg, c, owner, cat, at)
}

// TrackAs registra con dueño y categoría ya resueltos.
// Un error de snapshot no impide el upsert: se conserva el State anterior si había.
func TrackAs(reg *Registry, c world.Creature, owner uuid.UUID, cat eligibility.Category, at time.Time) (Record, bool, error) {
	rec, snapErr := Capture(c, owner, cat, reg.ZoneID(), at)
	if snapErr != nil {
		if prev, ok := reg.Get(rec.ID); ok {
			rec.State = prev.State
		}
	}
	if err := reg.Upsert(rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, snapErr
}
