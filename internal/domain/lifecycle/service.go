package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/platform/logger"
	"companion-recall/internal/platform/metrics"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// ReleaseRadius es la distancia máxima para resolver release/dismiss por nombre.
const ReleaseRadius = 50.0

var ErrNameRequired = errors.New("name required")

// Result es la salida de un comando: cantidad afectada y mensajes para el jugador.
type Result struct {
	Count    int
	Messages []string
}

func (r *Result) say(format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

type Service struct {
	srv   world.Server
	regs  *companions.Registries
	rules *eligibility.Rules
	log   logger.Logger
	now   func() time.Time
}

func NewService(srv world.Server, regs *companions.Registries, rules *eligibility.Rules, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		srv:   srv,
		regs:  regs,
		rules: rules,
		log:   log.With(map[string]any{"component": "lifecycle"}),
		now:   time.Now,
	}
}

// Find registra todas las criaturas vivas del jugador en todas las zonas.
func (s *Service) Find(ctx context.Context, caller uuid.UUID, cat eligibility.Category) (Result, error) {
	var res Result
	if caller == uuid.Nil {
		return res, companions.ErrNoCaller
	}

	now := s.now()
	found := 0
	for _, z := range s.srv.Zones() {
		reg, ok := s.regs.For(z.ID())
		if !ok {
			continue
		}
		err := z.Do(ctx, func(st world.ZoneState) {
			for _, c := range st.Creatures() {
				if !c.Alive() || !s.rules.IsOwnedBy(c, caller) {
					continue
				}
				if got, ok := s.rules.CategoryOf(c); !ok || got != cat {
					continue
				}
				_, tracked, err := companions.TrackAs(reg, c, caller, cat, now)
				if err != nil {
					s.log.Warn("find: snapshot", map[string]any{"companion": c.ID().String(), "error": err.Error()})
				}
				if tracked {
					found++
					metrics.RecordSnapshot("find")
				}
			}
		})
		if err != nil {
			res.say("Server not available.")
			metrics.RecordCommand("find", false)
			return Result{Messages: res.Messages}, fmt.Errorf("%w: zone %s: %v", companions.ErrServerUnavailable, z.ID(), err)
		}
	}

	res.Count = found
	if found > 0 {
		res.say("Found and registered %d %s!", found, noun(cat, found))
	} else {
		res.say("No %s found to register. Make sure you have tamed %s nearby.", cat.Plural(), cat.Plural())
	}
	metrics.RecordCommand("find", true)
	return res, nil
}

// List devuelve los registros del jugador ordenados por nombre.
func (s *Service) List(ctx context.Context, caller uuid.UUID, cat eligibility.Category) (Result, error) {
	var res Result
	if caller == uuid.Nil {
		return res, companions.ErrNoCaller
	}

	recs, err := s.regs.CollectOwned(ctx, s.srv, caller, cat)
	if err != nil {
		res.say("An error occurred.")
		metrics.RecordCommand("list", false)
		return res, err
	}

	sortByDisplayName(recs)

	res.Count = len(recs)
	res.say("You have %d callable %s.", len(recs), cat.Plural())
	if len(recs) == 0 {
		res.say("- None")
	}
	for _, rec := range recs {
		res.say("- %s %s", rec.DisplayName(), location(rec))
	}
	res.say("Use '%s find' to make nearby %s callable, and '%s whistle <name>' to call them!", cat, cat.Plural(), cat)

	metrics.RecordCommand("list", true)
	return res, nil
}

// Debug compara criaturas cargadas contra registros, por zona.
func (s *Service) Debug(ctx context.Context, caller uuid.UUID, cat eligibility.Category) (Result, error) {
	var res Result
	if caller == uuid.Nil {
		return res, companions.ErrNoCaller
	}

	current := "unknown"
	if z, ok := s.srv.PlayerZone(caller); ok {
		current = z.ID()
	}

	title := strings.ToUpper(string(cat[:1])) + cat.Plural()[1:]
	res.say("=== %s Debug Info ===", title)
	res.say("Player UUID: %s", caller)
	res.say("Current Zone: %s", current)

	loaded := 0
	perZone := make([]string, 0)
	registered := 0
	for _, z := range s.srv.Zones() {
		reg, hasReg := s.regs.For(z.ID())
		n := 0
		err := z.Do(ctx, func(st world.ZoneState) {
			for _, c := range st.Creatures() {
				if !s.rules.IsOwnedBy(c, caller) {
					continue
				}
				if got, ok := s.rules.CategoryOf(c); ok && got == cat {
					loaded++
				}
			}
			if hasReg {
				n = len(reg.ByOwnerAndCategory(caller, cat))
			}
		})
		if err != nil {
			res.say("An error occurred.")
			metrics.RecordCommand("debug", false)
			return res, fmt.Errorf("%w: zone %s: %v", companions.ErrServerUnavailable, z.ID(), err)
		}
		registered += n
		perZone = append(perZone, fmt.Sprintf("- %s: %d %s", z.ID(), n, cat.Plural()))
	}

	res.say("Loaded %s: %d", cat.Plural(), loaded)
	res.say("Callable %s: %d", cat.Plural(), registered)
	res.Messages = append(res.Messages, perZone...)
	res.Count = registered

	metrics.RecordCommand("debug", true)
	return res, nil
}

// Release deja libre al compañero con ese nombre cerca del jugador.
func (s *Service) Release(ctx context.Context, caller uuid.UUID, cat eligibility.Category, name string) (Result, error) {
	return s.act(ctx, "release", caller, cat, name, s.release)
}

// Dismiss saca al compañero del mundo; las monturas sueltan su inventario antes.
func (s *Service) Dismiss(ctx context.Context, caller uuid.UUID, cat eligibility.Category, name string) (Result, error) {
	return s.act(ctx, "dismiss", caller, cat, name, s.dismiss)
}

type action func(st world.ZoneState, c world.Creature, cat eligibility.Category, res *Result) error

// act resuelve el objetivo y lo modifica en la zona del jugador, y después
// lo borra del registro de todas las zonas.
func (s *Service) act(ctx context.Context, cmd string, caller uuid.UUID, cat eligibility.Category, name string, fn action) (Result, error) {
	var res Result
	name = strings.TrimSpace(name)
	if caller == uuid.Nil {
		return res, companions.ErrNoCaller
	}
	if name == "" {
		return res, ErrNameRequired
	}
	zone, ok := s.srv.PlayerZone(caller)
	if !ok {
		return res, companions.ErrNoCaller
	}

	var (
		target  uuid.UUID
		online  bool
		actErr  error
		display string
	)
	err := zone.Do(ctx, func(st world.ZoneState) {
		p, ok := st.Player(caller)
		if !ok {
			return
		}
		online = true

		c := s.resolve(st, p.Position(), caller, cat, name)
		if c == nil {
			return
		}
		target = c.ID()
		display = displayName(c)
		actErr = fn(st, c, cat, &res)
	})
	if err != nil {
		res.say("An error occurred.")
		metrics.RecordCommand(cmd, false)
		return res, fmt.Errorf("%w: %v", companions.ErrServerUnavailable, err)
	}
	if !online {
		return res, companions.ErrNoCaller
	}
	if target == uuid.Nil {
		res.say("No owned %s found with name: %s", cat, name)
		res.say("Use '%s list' to see your callable %s", cat, cat.Plural())
		metrics.RecordCommand(cmd, false)
		return res, companions.ErrNotFound
	}
	if actErr != nil {
		s.log.Error(cmd+" failed", map[string]any{"companion": target.String(), "error": actErr.Error()})
		metrics.RecordCommand(cmd, false)
		return res, actErr
	}

	removed, err := s.regs.UntrackEverywhere(ctx, s.srv, target)
	if err != nil {
		s.log.Warn(cmd+": untrack incomplete", map[string]any{"companion": target.String(), "error": err.Error()})
	}

	s.log.Info(cmd, map[string]any{
		"caller":    caller.String(),
		"companion": target.String(),
		"name":      display,
		"untracked": removed,
	})
	metrics.RecordCommand(cmd, true)
	res.Count = 1
	return res, nil
}

// resolve busca la criatura viva más cercana del jugador que matchee el nombre.
func (s *Service) resolve(st world.ZoneState, pos world.Vec3, caller uuid.UUID, cat eligibility.Category, name string) world.Creature {
	var (
		best     world.Creature
		bestDist float64
	)
	for _, c := range st.CreaturesWithin(pos, ReleaseRadius) {
		if !c.Alive() || !s.rules.IsOwnedBy(c, caller) {
			continue
		}
		if got, ok := s.rules.CategoryOf(c); !ok || got != cat {
			continue
		}
		if !companions.MatchName(companions.CreatureName(c), name) {
			continue
		}
		d := c.Position().Dist(pos)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func (s *Service) release(_ world.ZoneState, c world.Creature, cat eligibility.Category, res *Result) error {
	name := displayName(c)

	if cat == eligibility.CategoryPet {
		c.ClearOwner()
		c.SetSitting(false)
		c.ClearAggression()
		c.ClearCustomName()
		res.say("%s has been set free and is now wild!", name)
		return nil
	}

	capb, ok := s.rules.Capability(c.TypeID())
	if ok && capb.Release == eligibility.ReleaseStripTags {
		if err := c.StripOwnership(); err != nil {
			res.say("Failed to set %s free.", name)
			return fmt.Errorf("strip ownership: %w", err)
		}
		c.ClearCustomName()
		res.say("%s has been set free and is now wild!", name)
		return nil
	}

	c.Discard()
	res.say("%s has been released from ownership.", name)
	return nil
}

func (s *Service) dismiss(st world.ZoneState, c world.Creature, cat eligibility.Category, res *Result) error {
	name := displayName(c)

	if cat == eligibility.CategoryMount {
		dropped, err := s.dropInventory(st, c)
		if err != nil {
			res.say("An error occurred while dismissing the entity.")
			return err
		}
		if dropped > 0 {
			s.log.Debug("dismiss: inventory dropped", map[string]any{"companion": c.ID().String(), "items": dropped})
		}
	}

	c.Discard()
	res.say("You dismissed %s from the world.", name)
	return nil
}

// dropInventory vacía los huecos declarados del tipo y los suelta en el suelo.
func (s *Service) dropInventory(st world.ZoneState, c world.Creature) (int, error) {
	capb, ok := s.rules.Capability(c.TypeID())
	if !ok {
		return 0, nil
	}

	dropped := 0
	pos := c.Position()
	for _, slot := range capb.Slots {
		items, err := c.ExtractSlot(slot)
		if err != nil {
			return dropped, fmt.Errorf("extract %s: %w", slot, err)
		}
		for _, it := range items {
			if it.Count <= 0 || it.Kind == "" {
				continue
			}
			st.DropItem(pos, it)
			dropped++
		}
	}
	return dropped, nil
}

func sortByDisplayName(recs []companions.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return strings.ToLower(recs[i].DisplayName()) < strings.ToLower(recs[j].DisplayName())
	})
}

func location(rec companions.Record) string {
	return fmt.Sprintf("(%s: %.0f, %.0f, %.0f)", rec.ZoneID, rec.Position.X, rec.Position.Y, rec.Position.Z)
}

func displayName(c world.Creature) string {
	if name, ok := c.CustomName(); ok {
		return name
	}
	return companions.Noname
}

func noun(cat eligibility.Category, n int) string {
	if n == 1 {
		return string(cat)
	}
	return cat.Plural()
}
