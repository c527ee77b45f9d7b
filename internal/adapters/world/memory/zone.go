package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"companion-recall/internal/platform/logger"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

var (
	ErrZoneStopped      = errors.New("zone stopped")
	ErrTaskPanicked     = errors.New("zone task panicked")
	ErrDuplicateID      = errors.New("creature already present in zone")
	ErrCreatureNotFound = errors.New("creature not found")
)

// DroppedItem es un ítem soltado en el suelo de una zona.
type DroppedItem struct {
	Position world.Vec3
	Item     world.Item
}

type task struct {
	fn   func(world.ZoneState)
	done chan error // nil en Submit
}

// Zone es un actor: todo el estado se toca desde la goroutine de Run.
type Zone struct {
	id  string
	log logger.Logger

	tasks   chan task
	stopped chan struct{}
	once    sync.Once

	// estado del hilo de la zona
	tick      uint64
	creatures map[uuid.UUID]*Creature
	players   map[uuid.UUID]*Player
	items     []DroppedItem

	hmu        sync.RWMutex
	onTick     []world.TickHandler
	onLoad     []world.LoadHandler
	onInteract []world.InteractHandler
	onDamage   []world.DamageHandler
}

func newZone(id string, log logger.Logger) *Zone {
	return &Zone{
		id:        id,
		log:       log.With(map[string]any{"zone": id}),
		tasks:     make(chan task, 64),
		stopped:   make(chan struct{}),
		creatures: map[uuid.UUID]*Creature{},
		players:   map[uuid.UUID]*Player{},
	}
}

func (z *Zone) ID() string { return z.id }

// Run procesa tareas y ticks hasta que ctx se cancela.
// Con tickEvery <= 0 no hay ticks automáticos (ver Advance).
func (z *Zone) Run(ctx context.Context, tickEvery time.Duration) error {
	defer z.once.Do(func() { close(z.stopped) })

	var tickC <-chan time.Time
	if tickEvery > 0 {
		t := time.NewTicker(tickEvery)
		defer t.Stop()
		tickC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-z.tasks:
			z.exec(t)
		case <-tickC:
			z.exec(task{fn: func(world.ZoneState) { z.step() }})
		}
	}
}

func (z *Zone) exec(t task) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				z.log.Error("zone task panicked", map[string]any{"panic": fmt.Sprint(r)})
				err = ErrTaskPanicked
			}
		}()
		t.fn(zoneState{z})
	}()
	if t.done != nil {
		t.done <- err
	}
}

func (z *Zone) step() {
	z.tick++
	z.hmu.RLock()
	handlers := append([]world.TickHandler(nil), z.onTick...)
	z.hmu.RUnlock()
	for _, h := range handlers {
		h(zoneState{z}, z.tick)
	}
}

func (z *Zone) Do(ctx context.Context, fn func(world.ZoneState)) error {
	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case z.tasks <- t:
	case <-z.stopped:
		return ErrZoneStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-z.stopped:
		return ErrZoneStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (z *Zone) Submit(fn func(world.ZoneState)) {
	t := task{fn: fn}
	select {
	case z.tasks <- t:
	case <-z.stopped:
	default:
		go func() {
			select {
			case z.tasks <- t:
			case <-z.stopped:
			}
		}()
	}
}

// Advance ejecuta n ticks en el hilo de la zona y espera.
func (z *Zone) Advance(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := z.Do(ctx, func(world.ZoneState) { z.step() }); err != nil {
			return err
		}
	}
	return nil
}

func (z *Zone) OnTick(h world.TickHandler) {
	z.hmu.Lock()
	z.onTick = append(z.onTick, h)
	z.hmu.Unlock()
}

func (z *Zone) OnCreatureLoad(h world.LoadHandler) {
	z.hmu.Lock()
	z.onLoad = append(z.onLoad, h)
	z.hmu.Unlock()
}

func (z *Zone) OnInteract(h world.InteractHandler) {
	z.hmu.Lock()
	z.onInteract = append(z.onInteract, h)
	z.hmu.Unlock()
}

func (z *Zone) OnDamage(h world.DamageHandler) {
	z.hmu.Lock()
	z.onDamage = append(z.onDamage, h)
	z.hmu.Unlock()
}

// place inserta la criatura y dispara los handlers de carga. Hilo de la zona.
func (z *Zone) place(c *Creature) error {
	if existing, ok := z.creatures[c.id]; ok && existing != c {
		return ErrDuplicateID
	}
	c.zone = z
	z.creatures[c.id] = c

	z.hmu.RLock()
	handlers := append([]world.LoadHandler(nil), z.onLoad...)
	z.hmu.RUnlock()
	for _, h := range handlers {
		h(zoneState{z}, c)
	}
	return nil
}

func (z *Zone) damage(id, attacker uuid.UUID, amount float64) (bool, error) {
	c, ok := z.creatures[id]
	if !ok {
		return false, ErrCreatureNotFound
	}

	z.hmu.RLock()
	handlers := append([]world.DamageHandler(nil), z.onDamage...)
	z.hmu.RUnlock()

	ev := world.DamageEvent{Target: c, AttackerID: attacker, Amount: amount}
	for _, h := range handlers {
		if h(zoneState{z}, ev).Cancel {
			return false, nil
		}
	}

	c.SetHealth(c.health - amount)
	if c.health <= 0 {
		c.Kill()
	}
	return true, nil
}

// zoneState es la vista world.ZoneState; solo válida dentro del hilo.
type zoneState struct {
	z *Zone
}

func (s zoneState) ZoneID() string { return s.z.id }

func (s zoneState) Creature(id uuid.UUID) (world.Creature, bool) {
	c, ok := s.z.creatures[id]
	if !ok {
		return nil, false
	}
	return c, true
}

func (s zoneState) Creatures() []world.Creature {
	return s.CreaturesWithin(world.Vec3{}, 0)
}

func (s zoneState) CreaturesWithin(center world.Vec3, radius float64) []world.Creature {
	out := make([]world.Creature, 0, len(s.z.creatures))
	for _, c := range s.z.sortedCreatures() {
		if radius > 0 && c.pos.Dist(center) > radius {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s zoneState) Players() []world.Player {
	ids := make([]uuid.UUID, 0, len(s.z.players))
	for id := range s.z.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	out := make([]world.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.z.players[id])
	}
	return out
}

func (s zoneState) Player(id uuid.UUID) (world.Player, bool) {
	p, ok := s.z.players[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (s zoneState) SpawnFromBlob(blob []byte, pos world.Vec3) (world.Creature, error) {
	c, err := fromBlob(blob, pos)
	if err != nil {
		return nil, err
	}
	if err := s.z.place(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s zoneState) DropItem(pos world.Vec3, item world.Item) {
	s.z.items = append(s.z.items, DroppedItem{Position: pos, Item: item})
}

func (z *Zone) sortedCreatures() []*Creature {
	out := make([]*Creature, 0, len(z.creatures))
	for _, c := range z.creatures {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id.String() < out[j].id.String() })
	return out
}
