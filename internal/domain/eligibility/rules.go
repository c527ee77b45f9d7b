package eligibility

import (
	"strings"

	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// Rules son los predicados de elegibilidad y propiedad.
// Es inmutable después de NewRules, así que se puede compartir entre zonas.
type Rules struct {
	table  map[string]Capability
	pets   map[string]struct{}
	mounts map[string]struct{}
}

// NewRules construye la tabla con los tipos built-in más las allowlists configuradas.
func NewRules(petTypes, mountTypes []string) *Rules {
	r := &Rules{
		table:  make(map[string]Capability),
		pets:   normalizeSet(petTypes),
		mounts: normalizeSet(mountTypes),
	}
	for _, c := range builtins() {
		r.table[c.TypeID] = c
	}

	// Tipos de extensión: se tratan como domables genéricos. Las monturas
	// declaran todos los huecos conocidos; los vacíos no sueltan nada.
	for id := range r.pets {
		if _, ok := r.table[id]; !ok {
			r.table[id] = Capability{TypeID: id, Category: CategoryPet, Ownership: OwnershipTameable}
		}
	}
	for id := range r.mounts {
		if _, ok := r.table[id]; !ok {
			r.table[id] = Capability{
				TypeID: id, Category: CategoryMount, Ownership: OwnershipTameable,
				Slots: extensionMountSlots(), Release: ReleaseDiscard,
			}
		}
	}
	return r
}

// Capability devuelve la fila de la tabla para un tipo.
func (r *Rules) Capability(typeID string) (Capability, bool) {
	c, ok := r.table[strings.TrimSpace(typeID)]
	return c, ok
}

func (r *Rules) IsPet(c world.Creature) bool {
	if c == nil {
		return false
	}
	if _, ok := r.pets[c.TypeID()]; ok {
		return true
	}
	cp, ok := r.table[c.TypeID()]
	return ok && cp.BuiltIn && cp.Category == CategoryPet
}

func (r *Rules) IsMount(c world.Creature) bool {
	if c == nil {
		return false
	}
	if _, ok := r.mounts[c.TypeID()]; ok {
		return true
	}
	cp, ok := r.table[c.TypeID()]
	if !ok || !cp.BuiltIn || cp.Category != CategoryMount {
		return false
	}
	switch cp.Ownership {
	case OwnershipRider:
		return c.Saddled()
	default:
		return c.Tamed()
	}
}

// Is evalúa la categoría pedida.
func (r *Rules) Is(c world.Creature, cat Category) bool {
	switch cat {
	case CategoryPet:
		return r.IsPet(c)
	case CategoryMount:
		return r.IsMount(c)
	default:
		return false
	}
}

func (r *Rules) IsEligible(c world.Creature) bool {
	return r.IsPet(c) || r.IsMount(c)
}

// CategoryOf devuelve la categoría efectiva; pet tiene prioridad.
func (r *Rules) CategoryOf(c world.Creature) (Category, bool) {
	switch {
	case r.IsPet(c):
		return CategoryPet, true
	case r.IsMount(c):
		return CategoryMount, true
	default:
		return "", false
	}
}

// OwnerOf devuelve el dueño domado o, para tipos de jinete, el jugador que lo monta.
func (r *Rules) OwnerOf(c world.Creature) (uuid.UUID, bool) {
	if c == nil {
		return uuid.Nil, false
	}
	mode := OwnershipTameable
	if cp, ok := r.table[c.TypeID()]; ok {
		mode = cp.Ownership
	}

	switch mode {
	case OwnershipRider:
		if !c.Saddled() {
			return uuid.Nil, false
		}
		riders := c.Riders()
		if len(riders) == 0 || riders[0] == uuid.Nil {
			return uuid.Nil, false
		}
		return riders[0], true
	case OwnershipTamed:
		if !c.Tamed() {
			return uuid.Nil, false
		}
	}

	id, ok := c.OwnerID()
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (r *Rules) IsOwned(c world.Creature) bool {
	_, ok := r.OwnerOf(c)
	return ok
}

func (r *Rules) IsOwnedBy(c world.Creature, playerID uuid.UUID) bool {
	id, ok := r.OwnerOf(c)
	return ok && playerID != uuid.Nil && id == playerID
}

// IsRecallableBy: del tipo pedido y sin otro dueño. Una montura de jinete
// sin nadie encima no tiene dueño y sigue siendo de quien la registró.
func (r *Rules) IsRecallableBy(c world.Creature, cat Category, playerID uuid.UUID) bool {
	if playerID == uuid.Nil || !r.Is(c, cat) {
		return false
	}
	owner, ok := r.OwnerOf(c)
	return !ok || owner == playerID
}

func normalizeSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, raw := range in {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
