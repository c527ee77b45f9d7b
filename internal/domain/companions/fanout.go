package companions

import (
	"context"
	"fmt"

	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// Las funciones de este archivo recorren zonas con Do, una detrás de otra.
// No se deben llamar desde el hilo de una zona.

// CollectOwned junta los registros del dueño en todas las zonas, en el orden del servidor.
// Con cat vacío devuelve todas las categorías.
func (rs *Registries) CollectOwned(ctx context.Context, srv world.Server, owner uuid.UUID, cat eligibility.Category) ([]Record, error) {
	out := make([]Record, 0)
	for _, z := range srv.Zones() {
		reg, ok := rs.For(z.ID())
		if !ok {
			continue
		}

		var found []Record
		err := z.Do(ctx, func(world.ZoneState) {
			if cat == "" {
				found = reg.ByOwner(owner)
				return
			}
			found = reg.ByOwnerAndCategory(owner, cat)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: zone %s: %v", ErrServerUnavailable, z.ID(), err)
		}
		out = append(out, found...)
	}
	return out, nil
}

// UntrackEverywhere borra los IDs de todas las zonas. Devuelve cuántos registros se borraron.
func (rs *Registries) UntrackEverywhere(ctx context.Context, srv world.Server, ids ...uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	removed := 0
	for _, z := range srv.Zones() {
		reg, ok := rs.For(z.ID())
		if !ok {
			continue
		}

		n := 0
		err := z.Do(ctx, func(world.ZoneState) {
			for _, id := range ids {
				if reg.Remove(id) {
					n++
				}
			}
		})
		if err != nil {
			return removed, fmt.Errorf("%w: zone %s: %v", ErrServerUnavailable, z.ID(), err)
		}
		removed += n
	}
	return removed, nil
}
