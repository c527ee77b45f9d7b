package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"companion-recall/internal/platform/logger"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Server es un host de referencia en memoria: varias zonas, cada una con su goroutine.
// Sirve para modo dev y para tests de punta a punta.
type Server struct {
	log   logger.Logger
	order []string
	zones map[string]*Zone

	mu         sync.RWMutex
	playerZone map[uuid.UUID]string
}

func NewServer(log logger.Logger, zoneIDs ...string) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		log:        log,
		zones:      map[string]*Zone{},
		playerZone: map[uuid.UUID]string{},
	}
	for _, id := range zoneIDs {
		if _, ok := s.zones[id]; ok {
			continue
		}
		s.order = append(s.order, id)
		s.zones[id] = newZone(id, log)
	}
	return s
}

// Run corre todas las zonas hasta que ctx se cancela.
func (s *Server) Run(ctx context.Context, tickEvery time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range s.order {
		z := s.zones[id]
		g.Go(func() error { return z.Run(ctx, tickEvery) })
	}
	return g.Wait()
}

// Start corre Run en background; stop cancela y espera a que terminen las zonas.
func (s *Server) Start(ctx context.Context, tickEvery time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Run(ctx, tickEvery); err != nil {
			s.log.Error("world server stopped", map[string]any{"error": err.Error()})
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (s *Server) Zones() []world.Zone {
	out := make([]world.Zone, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.zones[id])
	}
	return out
}

func (s *Server) Zone(id string) (world.Zone, bool) {
	z, ok := s.zones[id]
	if !ok {
		return nil, false
	}
	return z, true
}

// MemZone devuelve la zona concreta (tests y herramientas).
func (s *Server) MemZone(id string) (*Zone, bool) {
	z, ok := s.zones[id]
	return z, ok
}

func (s *Server) PlayerZone(playerID uuid.UUID) (world.Zone, bool) {
	s.mu.RLock()
	id, ok := s.playerZone[playerID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.Zone(id)
}

func (s *Server) zone(id string) (*Zone, error) {
	z, ok := s.zones[id]
	if !ok {
		return nil, fmt.Errorf("unknown zone %q", id)
	}
	return z, nil
}

// Join conecta un jugador en una zona (lo saca de la anterior).
func (s *Server) Join(ctx context.Context, zoneID string, p *Player) error {
	z, err := s.zone(zoneID)
	if err != nil {
		return err
	}

	s.mu.RLock()
	prev, had := s.playerZone[p.id]
	s.mu.RUnlock()
	if had && prev != zoneID {
		if pz, err := s.zone(prev); err == nil {
			if err := pz.Do(ctx, func(world.ZoneState) { delete(pz.players, p.id) }); err != nil {
				return err
			}
		}
	}

	if err := z.Do(ctx, func(world.ZoneState) { z.players[p.id] = p }); err != nil {
		return err
	}

	s.mu.Lock()
	s.playerZone[p.id] = zoneID
	s.mu.Unlock()
	return nil
}

// Spawn agrega una criatura viva y dispara los handlers de carga.
func (s *Server) Spawn(ctx context.Context, zoneID string, c *Creature) error {
	z, err := s.zone(zoneID)
	if err != nil {
		return err
	}
	var placeErr error
	if err := z.Do(ctx, func(world.ZoneState) { placeErr = z.place(c) }); err != nil {
		return err
	}
	return placeErr
}

// Unload saca la criatura de memoria sin matarla (chunk descargado).
func (s *Server) Unload(ctx context.Context, zoneID string, id uuid.UUID) error {
	z, err := s.zone(zoneID)
	if err != nil {
		return err
	}
	return z.Do(ctx, func(world.ZoneState) {
		if c, ok := z.creatures[id]; ok {
			c.zone = nil
			delete(z.creatures, id)
		}
	})
}

// Damage aplica daño pasando por los handlers; devuelve false si se canceló.
func (s *Server) Damage(ctx context.Context, zoneID string, id, attacker uuid.UUID, amount float64) (bool, error) {
	z, err := s.zone(zoneID)
	if err != nil {
		return false, err
	}
	var (
		applied bool
		dmgErr  error
	)
	if err := z.Do(ctx, func(world.ZoneState) { applied, dmgErr = z.damage(id, attacker, amount) }); err != nil {
		return false, err
	}
	return applied, dmgErr
}

// Interact notifica una interacción jugador/criatura. Los handlers corren
// en la goroutine que llama, igual que un evento de red.
func (s *Server) Interact(zoneID string, playerID, creatureID uuid.UUID) error {
	z, err := s.zone(zoneID)
	if err != nil {
		return err
	}
	z.hmu.RLock()
	handlers := append([]world.InteractHandler(nil), z.onInteract...)
	z.hmu.RUnlock()
	for _, h := range handlers {
		h(playerID, creatureID)
	}
	return nil
}

// Items devuelve los ítems soltados en la zona.
func (s *Server) Items(ctx context.Context, zoneID string) ([]DroppedItem, error) {
	z, err := s.zone(zoneID)
	if err != nil {
		return nil, err
	}
	var out []DroppedItem
	err = z.Do(ctx, func(world.ZoneState) { out = append(out, z.items...) })
	return out, err
}

// Teleport mueve una criatura viva, cruzando zonas si hace falta.
// Se llama fuera de los hilos de zona.
func (s *Server) Teleport(ctx context.Context, creatureID uuid.UUID, from, to string, pos world.Vec3) error {
	src, err := s.zone(from)
	if err != nil {
		return err
	}
	dst, err := s.zone(to)
	if err != nil {
		return err
	}

	if src == dst {
		var found bool
		if err := src.Do(ctx, func(world.ZoneState) {
			c, ok := src.creatures[creatureID]
			if !ok || !c.alive {
				return
			}
			c.pos = pos
			found = true
		}); err != nil {
			return err
		}
		if !found {
			return ErrCreatureNotFound
		}
		return nil
	}

	var moving *Creature
	if err := src.Do(ctx, func(world.ZoneState) {
		c, ok := src.creatures[creatureID]
		if !ok || !c.alive {
			return
		}
		delete(src.creatures, creatureID)
		c.zone = nil
		c.riders = nil
		moving = c
	}); err != nil {
		return err
	}
	if moving == nil {
		return ErrCreatureNotFound
	}

	var placeErr error
	err = dst.Do(ctx, func(world.ZoneState) {
		moving.pos = pos
		if _, ok := dst.creatures[creatureID]; ok {
			placeErr = ErrDuplicateID
			return
		}
		moving.zone = dst
		dst.creatures[creatureID] = moving
	})
	if err == nil {
		err = placeErr
	}
	if err != nil {
		// vuelve a su zona original
		_ = src.Do(context.WithoutCancel(ctx), func(world.ZoneState) {
			moving.zone = src
			src.creatures[creatureID] = moving
		})
		return fmt.Errorf("teleport %s to %s: %w", creatureID, to, err)
	}
	return nil
}
