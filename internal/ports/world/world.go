package world

import (
	"context"
	"math"

	"github.com/google/uuid"
)

// Vec3 es una posición dentro de una zona.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Dist devuelve la distancia euclídea entre dos posiciones.
func (v Vec3) Dist(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Slot identifica un hueco de inventario propio de un tipo de criatura.
type Slot string

const (
	SlotSaddle    Slot = "saddle"
	SlotArmor     Slot = "armor"
	SlotDecor     Slot = "decor"
	SlotContainer Slot = "container"
)

// Item es un objeto que puede soltarse al mundo.
// Props conserva las propiedades embebidas (encantamientos, color, etc).
type Item struct {
	Kind  string         `cbor:"kind" json:"kind"`
	Count int            `cbor:"count" json:"count"`
	Props map[string]any `cbor:"props,omitempty" json:"props,omitempty"`
}

// Creature es la vista que el core necesita de una criatura viva.
// Sus métodos solo se llaman desde el hilo de la zona que la contiene.
type Creature interface {
	ID() uuid.UUID
	TypeID() string
	Alive() bool
	Position() Vec3
	CustomName() (string, bool)

	Tamed() bool
	OwnerID() (uuid.UUID, bool)
	Saddled() bool
	// Riders devuelve los jugadores montados, el primero es el conductor.
	Riders() []uuid.UUID

	Health() float64
	MaxHealth() float64
	SetHealth(v float64)
	Heal(amount float64)

	StopNavigation()
	ClearAggression()
	SetSitting(sitting bool)
	ClearOwner()
	ClearCustomName()
	Dismount(rider uuid.UUID)

	// StripOwnership edita la representación de estado quitando las
	// etiquetas de dueño y doma.
	StripOwnership() error
	// ExtractSlot vacía el hueco y devuelve lo que contenía.
	ExtractSlot(slot Slot) ([]Item, error)
	// Snapshot serializa el estado completo (blob opaco).
	Snapshot() ([]byte, error)
	Discard()
}

// Player es un jugador conectado.
type Player interface {
	ID() uuid.UUID
	Name() string
	Position() Vec3
	Send(msg string)
}

// ZoneState es la vista de una zona válida solo dentro de su hilo.
type ZoneState interface {
	ZoneID() string
	Creature(id uuid.UUID) (Creature, bool)
	Creatures() []Creature
	// CreaturesWithin con radius <= 0 devuelve todas.
	CreaturesWithin(center Vec3, radius float64) []Creature
	Players() []Player
	Player(id uuid.UUID) (Player, bool)
	SpawnFromBlob(blob []byte, pos Vec3) (Creature, error)
	DropItem(pos Vec3, item Item)
}

// DamageEvent describe un daño a punto de aplicarse.
type DamageEvent struct {
	Target     Creature
	AttackerID uuid.UUID // uuid.Nil si no lo causó un jugador
	Amount     float64
}

// DamageVerdict es la respuesta de un handler de daño.
type DamageVerdict struct {
	Cancel bool
}

type (
	TickHandler     func(st ZoneState, tick uint64)
	LoadHandler     func(st ZoneState, c Creature)
	InteractHandler func(playerID uuid.UUID, creatureID uuid.UUID)
	DamageHandler   func(st ZoneState, ev DamageEvent) DamageVerdict
)

// Zone es una región que corre en su propio hilo lógico.
type Zone interface {
	ID() string

	// Do ejecuta fn en el hilo de la zona y espera a que termine.
	// No se debe llamar desde el hilo de otra zona.
	Do(ctx context.Context, fn func(st ZoneState)) error
	// Submit encola fn en el hilo de la zona sin esperar.
	Submit(fn func(st ZoneState))

	OnTick(h TickHandler)
	OnCreatureLoad(h LoadHandler)
	// OnInteract puede invocarse desde cualquier hilo.
	OnInteract(h InteractHandler)
	OnDamage(h DamageHandler)
}

// Server agrupa las zonas de un mundo.
type Server interface {
	Zones() []Zone
	Zone(id string) (Zone, bool)
	// PlayerZone devuelve la zona donde está conectado el jugador.
	PlayerZone(playerID uuid.UUID) (Zone, bool)
	// Teleport mueve una criatura viva a pos en la zona to, aunque esté en otra zona.
	Teleport(ctx context.Context, creatureID uuid.UUID, from, to string, pos Vec3) error
}
