package companions

import (
	"strings"
	"time"

	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

const (
	// Noname es el nombre que se muestra para compañeros sin nombre.
	// Como filtro solo matchea registros sin nombre.
	Noname = "Noname"
	// unknownAlias se acepta como sinónimo de Noname.
	unknownAlias = "Unknown"
)

// Record es la foto persistida de un compañero.
type Record struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	// ZoneID es la zona que lo guardó por última vez.
	ZoneID   string
	Position world.Vec3
	Category eligibility.Category

	Name  *string // nil = sin nombre (distinto de "")
	State []byte  // blob opaco; nil = nunca se pudo serializar

	UpdatedAt time.Time
}

func (r Record) DisplayName() string {
	if r.Name == nil {
		return Noname
	}
	return *r.Name
}

// MatchesName aplica el filtro de nombre; filtro vacío matchea todo.
func (r Record) MatchesName(filter string) bool {
	if strings.TrimSpace(filter) == "" {
		return true
	}
	return MatchName(r.Name, filter)
}

// MatchName compara un nombre opcional contra un filtro no vacío:
// exacto sin distinguir mayúsculas, con Noname/Unknown para los sin nombre.
func MatchName(name *string, filter string) bool {
	filter = strings.TrimSpace(filter)
	if IsNonameFilter(filter) {
		return name == nil
	}
	return name != nil && strings.EqualFold(*name, filter)
}

func IsNonameFilter(filter string) bool {
	return strings.EqualFold(filter, Noname) || strings.EqualFold(filter, unknownAlias)
}

// CreatureName devuelve el nombre de una criatura viva como puntero opcional.
func CreatureName(c world.Creature) *string {
	name, ok := c.CustomName()
	if !ok {
		return nil
	}
	return &name
}
