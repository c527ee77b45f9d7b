package memory

import (
	"sync"

	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// Player es un jugador conectado al host en memoria.
// Send puede llamarse desde cualquier hilo; los mensajes quedan en un buzón.
type Player struct {
	id   uuid.UUID
	name string

	mu    sync.Mutex
	pos   world.Vec3
	inbox []string
}

func NewPlayer(id uuid.UUID, name string, pos world.Vec3) *Player {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Player{id: id, name: name, pos: pos}
}

func (p *Player) ID() uuid.UUID { return p.id }
func (p *Player) Name() string  { return p.name }

func (p *Player) Position() world.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *Player) MoveTo(pos world.Vec3) {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
}

func (p *Player) Send(msg string) {
	p.mu.Lock()
	p.inbox = append(p.inbox, msg)
	p.mu.Unlock()
}

// Messages devuelve una copia del buzón.
func (p *Player) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.inbox...)
}
