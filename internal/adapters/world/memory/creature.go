package memory

import (
	"errors"
	"fmt"

	"companion-recall/internal/ports/world"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

var ErrInvalidBlob = errors.New("invalid creature blob")

// CreatureSpec describe una criatura a crear en el host en memoria.
type CreatureSpec struct {
	ID        uuid.UUID
	Type      string
	Name      *string
	Position  world.Vec3
	Tamed     bool
	Owner     uuid.UUID
	Saddled   bool
	Health    float64
	MaxHealth float64
	Slots     map[world.Slot][]world.Item
}

// Creature implementa world.Creature. Solo se toca desde el hilo de su zona
// (o antes de spawnearla).
type Creature struct {
	id        uuid.UUID
	typeID    string
	name      *string
	pos       world.Vec3
	tamed     bool
	owner     uuid.UUID
	saddled   bool
	riders    []uuid.UUID
	health    float64
	maxHealth float64
	slots     map[world.Slot][]world.Item

	alive      bool
	sitting    bool
	aggressive bool
	navigating bool
	discarded  bool

	// failSnapshot simula un estado que no se puede serializar.
	failSnapshot bool

	zone *Zone
}

// state es la forma serializada (CBOR) de una criatura.
type state struct {
	ID        []byte                      `cbor:"1,keyasint"`
	Type      string                      `cbor:"2,keyasint"`
	Name      *string                     `cbor:"3,keyasint,omitempty"`
	Tamed     bool                        `cbor:"4,keyasint"`
	Owner     []byte                      `cbor:"5,keyasint,omitempty"`
	Saddled   bool                        `cbor:"6,keyasint"`
	Health    float64                     `cbor:"7,keyasint"`
	MaxHealth float64                     `cbor:"8,keyasint"`
	Sitting   bool                        `cbor:"9,keyasint"`
	Slots     map[world.Slot][]world.Item `cbor:"10,keyasint,omitempty"`
}

func NewCreature(spec CreatureSpec) *Creature {
	id := spec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	maxHealth := spec.MaxHealth
	if maxHealth <= 0 {
		maxHealth = 20
	}
	health := spec.Health
	if health <= 0 || health > maxHealth {
		health = maxHealth
	}
	slots := make(map[world.Slot][]world.Item, len(spec.Slots))
	for k, v := range spec.Slots {
		slots[k] = append([]world.Item(nil), v...)
	}
	return &Creature{
		id:        id,
		typeID:    spec.Type,
		name:      spec.Name,
		pos:       spec.Position,
		tamed:     spec.Tamed,
		owner:     spec.Owner,
		saddled:   spec.Saddled,
		health:    health,
		maxHealth: maxHealth,
		slots:     slots,
		alive:     true,
	}
}

func (c *Creature) ID() uuid.UUID        { return c.id }
func (c *Creature) TypeID() string       { return c.typeID }
func (c *Creature) Alive() bool          { return c.alive }
func (c *Creature) Position() world.Vec3 { return c.pos }

func (c *Creature) CustomName() (string, bool) {
	if c.name == nil {
		return "", false
	}
	return *c.name, true
}

func (c *Creature) Tamed() bool { return c.tamed }

func (c *Creature) OwnerID() (uuid.UUID, bool) {
	if c.owner == uuid.Nil {
		return uuid.Nil, false
	}
	return c.owner, true
}

func (c *Creature) Saddled() bool { return c.saddled }

func (c *Creature) Riders() []uuid.UUID {
	return append([]uuid.UUID(nil), c.riders...)
}

func (c *Creature) Health() float64    { return c.health }
func (c *Creature) MaxHealth() float64 { return c.maxHealth }

func (c *Creature) SetHealth(v float64) {
	switch {
	case v > c.maxHealth:
		v = c.maxHealth
	case v < 0:
		v = 0
	}
	c.health = v
}

func (c *Creature) Heal(amount float64) { c.SetHealth(c.health + amount) }

func (c *Creature) StopNavigation()         { c.navigating = false }
func (c *Creature) ClearAggression()        { c.aggressive = false }
func (c *Creature) SetSitting(sitting bool) { c.sitting = sitting }

func (c *Creature) ClearOwner() {
	c.owner = uuid.Nil
	c.tamed = false
}

func (c *Creature) ClearCustomName() { c.name = nil }

func (c *Creature) Dismount(rider uuid.UUID) {
	out := c.riders[:0]
	for _, r := range c.riders {
		if r != rider {
			out = append(out, r)
		}
	}
	c.riders = out
}

func (c *Creature) StripOwnership() error {
	c.tamed = false
	c.owner = uuid.Nil
	return nil
}

func (c *Creature) ExtractSlot(slot world.Slot) ([]world.Item, error) {
	items := c.slots[slot]
	delete(c.slots, slot)
	if slot == world.SlotSaddle {
		c.saddled = false
	}
	return items, nil
}

func (c *Creature) Snapshot() ([]byte, error) {
	if c.failSnapshot {
		return nil, fmt.Errorf("snapshot %s: unsupported state", c.id)
	}
	st := state{
		ID:        c.id[:],
		Type:      c.typeID,
		Name:      c.name,
		Tamed:     c.tamed,
		Saddled:   c.saddled,
		Health:    c.health,
		MaxHealth: c.maxHealth,
		Sitting:   c.sitting,
		Slots:     c.slots,
	}
	if c.owner != uuid.Nil {
		st.Owner = c.owner[:]
	}
	return cbor.Marshal(st)
}

func (c *Creature) Discard() {
	c.alive = false
	c.discarded = true
	if c.zone != nil {
		delete(c.zone.creatures, c.id)
		c.zone = nil
	}
}

// Helpers de test/simulación.

func (c *Creature) Kill() {
	c.alive = false
	c.health = 0
}

func (c *Creature) Mount(rider uuid.UUID)   { c.riders = append(c.riders, rider) }
func (c *Creature) SetAggressive(v bool)    { c.aggressive = v }
func (c *Creature) SetNavigating(v bool)    { c.navigating = v }
func (c *Creature) SetFailSnapshot(v bool)  { c.failSnapshot = v }
func (c *Creature) Sitting() bool           { return c.sitting }
func (c *Creature) Aggressive() bool        { return c.aggressive }
func (c *Creature) Navigating() bool        { return c.navigating }
func (c *Creature) Discarded() bool         { return c.discarded }

func (c *Creature) Slot(s world.Slot) []world.Item { return c.slots[s] }

func fromBlob(blob []byte, pos world.Vec3) (*Creature, error) {
	var st state
	if err := cbor.Unmarshal(blob, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	id, err := uuid.FromBytes(st.ID)
	if err != nil || st.Type == "" {
		return nil, ErrInvalidBlob
	}

	owner := uuid.Nil
	if len(st.Owner) > 0 {
		if owner, err = uuid.FromBytes(st.Owner); err != nil {
			return nil, fmt.Errorf("%w: owner: %v", ErrInvalidBlob, err)
		}
	}

	c := NewCreature(CreatureSpec{
		ID:        id,
		Type:      st.Type,
		Name:      st.Name,
		Position:  pos,
		Tamed:     st.Tamed,
		Owner:     owner,
		Saddled:   st.Saddled,
		Health:    st.Health,
		MaxHealth: st.MaxHealth,
		Slots:     st.Slots,
	})
	c.sitting = st.Sitting
	return c, nil
}
