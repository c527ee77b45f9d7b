package eligibility

import "companion-recall/internal/ports/world"

// Category distingue mascotas de monturas.
type Category string

const (
	CategoryPet   Category = "pet"
	CategoryMount Category = "mount"
)

// ParseCategory acepta "pet"/"pets" y "mount"/"mounts".
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "pet", "pets":
		return CategoryPet, true
	case "mount", "mounts":
		return CategoryMount, true
	default:
		return "", false
	}
}

// Plural devuelve el nombre para mensajes ("pets", "mounts").
func (c Category) Plural() string {
	return string(c) + "s"
}

// Ownership indica cómo se resuelve el dueño de un tipo.
type Ownership int

const (
	// OwnershipTameable: el dueño es el que expone la criatura.
	OwnershipTameable Ownership = iota
	// OwnershipTamed: además tiene que estar domada.
	OwnershipTamed
	// OwnershipRider: sin doma persistente; el jinete actúa como dueño
	// mientras la criatura esté ensillada.
	OwnershipRider
)

// ReleaseMode indica cómo liberar una montura.
type ReleaseMode int

const (
	// ReleaseDiscard elimina la criatura (tipos de extensión).
	ReleaseDiscard ReleaseMode = iota
	// ReleaseStripTags quita las etiquetas de dueño de su estado.
	ReleaseStripTags
)

// Capability es la fila de la tabla de tipos.
type Capability struct {
	TypeID    string
	Category  Category
	Ownership Ownership
	Slots     []world.Slot
	Release   ReleaseMode
	// BuiltIn marca tipos que no dependen de la allowlist.
	BuiltIn bool
}

const (
	TypeWolf   = "minecraft:wolf"
	TypeCat    = "minecraft:cat"
	TypeParrot = "minecraft:parrot"
	TypeHorse  = "minecraft:horse"
	TypeDonkey = "minecraft:donkey"
	TypeMule   = "minecraft:mule"
	TypeLlama  = "minecraft:llama"
	TypePig    = "minecraft:pig"
)

func extensionMountSlots() []world.Slot {
	return []world.Slot{world.SlotSaddle, world.SlotArmor, world.SlotDecor, world.SlotContainer}
}

func builtins() []Capability {
	return []Capability{
		{TypeID: TypeWolf, Category: CategoryPet, Ownership: OwnershipTameable, BuiltIn: true},
		{TypeID: TypeCat, Category: CategoryPet, Ownership: OwnershipTameable, BuiltIn: true},
		{TypeID: TypeParrot, Category: CategoryPet, Ownership: OwnershipTameable, BuiltIn: true},
		{
			TypeID: TypeHorse, Category: CategoryMount, Ownership: OwnershipTamed, BuiltIn: true,
			Slots: []world.Slot{world.SlotSaddle, world.SlotArmor}, Release: ReleaseStripTags,
		},
		{
			TypeID: TypeDonkey, Category: CategoryMount, Ownership: OwnershipTamed, BuiltIn: true,
			Slots: []world.Slot{world.SlotSaddle, world.SlotContainer}, Release: ReleaseStripTags,
		},
		{
			TypeID: TypeMule, Category: CategoryMount, Ownership: OwnershipTamed, BuiltIn: true,
			Slots: []world.Slot{world.SlotSaddle, world.SlotContainer}, Release: ReleaseStripTags,
		},
		{
			TypeID: TypeLlama, Category: CategoryMount, Ownership: OwnershipTamed, BuiltIn: true,
			Slots: []world.Slot{world.SlotDecor, world.SlotContainer}, Release: ReleaseStripTags,
		},
		{
			TypeID: TypePig, Category: CategoryMount, Ownership: OwnershipRider, BuiltIn: true,
			Slots: []world.Slot{world.SlotSaddle}, Release: ReleaseStripTags,
		},
	}
}
