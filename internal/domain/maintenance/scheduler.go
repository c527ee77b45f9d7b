package maintenance

import (
	"context"
	"time"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/cooldowns"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/platform/logger"
	"companion-recall/internal/platform/metrics"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// Intervalos en ticks de zona (20 ticks = 1s).
const (
	proximityEvery = 100
	healthEvery    = 40
	flushEvery     = 20

	proximityRadius = 12.0
	pruneEvery      = 10 * time.Second
)

const injuredMountMsg = "Your mount is too injured to carry you!"

// Config son los toggles de salud y el cooldown del whistle.
type Config struct {
	PetRegen      bool
	MountRegen    bool
	PetImmortal   bool
	MountImmortal bool
	// FightThreshold y MoveThreshold son porcentajes de vida (0..100).
	FightThreshold      float64
	MoveThreshold       float64
	DisableFriendlyFire bool
	WhistleCooldown     time.Duration
}

type Scheduler struct {
	cfg   Config
	regs  *companions.Registries
	rules *eligibility.Rules
	cds   *cooldowns.Service
	log   logger.Logger
	now   func() time.Time
}

func New(cfg Config, regs *companions.Registries, rules *eligibility.Rules, cds *cooldowns.Service, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cfg:   cfg,
		regs:  regs,
		rules: rules,
		cds:   cds,
		log:   log.With(map[string]any{"component": "maintenance"}),
		now:   time.Now,
	}
}

// Attach engancha las tareas periódicas y los hooks a la zona. La zona tiene
// que tener su registro abierto antes.
func (s *Scheduler) Attach(z world.Zone) {
	reg, ok := s.regs.For(z.ID())
	if !ok {
		s.log.Warn("attach: zone without registry", map[string]any{"zone": z.ID()})
		return
	}

	z.OnTick(func(st world.ZoneState, tick uint64) {
		if tick%proximityEvery == 0 {
			s.refreshNearby(st, reg)
		}
		if tick%healthEvery == 0 {
			s.applyHealth(st)
		}
		if tick%flushEvery == 0 {
			reg.Flush()
		}
	})

	z.OnCreatureLoad(func(_ world.ZoneState, c world.Creature) {
		if reg.Contains(c.ID()) {
			return
		}
		_, tracked, err := companions.Track(reg, s.rules, c, s.now())
		if err != nil {
			s.log.Warn("load: snapshot", map[string]any{"zone": z.ID(), "companion": c.ID().String(), "error": err.Error()})
		}
		if tracked {
			metrics.RecordSnapshot("load")
		}
	})

	z.OnInteract(func(playerID, creatureID uuid.UUID) {
		z.Submit(func(st world.ZoneState) {
			c, ok := st.Creature(creatureID)
			if !ok || !c.Alive() || !s.rules.IsOwnedBy(c, playerID) {
				return
			}
			_, tracked, err := companions.Track(reg, s.rules, c, s.now())
			if err != nil {
				s.log.Warn("interact: snapshot", map[string]any{"zone": z.ID(), "companion": creatureID.String(), "error": err.Error()})
			}
			if tracked {
				metrics.RecordSnapshot("interact")
			}
		})
	})

	z.OnDamage(s.onDamage)
}

// Run poda los cooldowns cada 10s hasta que se cancele ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(pruneEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.cds.Prune(s.cfg.WhistleCooldown); n > 0 {
				s.log.Debug("cooldowns pruned", map[string]any{"removed": n})
			}
		}
	}
}

// refreshNearby actualiza el snapshot de las monturas cerca de cada jugador.
func (s *Scheduler) refreshNearby(st world.ZoneState, reg *companions.Registry) {
	now := s.now()
	for _, p := range st.Players() {
		for _, c := range st.CreaturesWithin(p.Position(), proximityRadius) {
			if !c.Alive() || !s.rules.IsMount(c) || !s.rules.IsOwnedBy(c, p.ID()) {
				continue
			}
			_, tracked, err := companions.TrackAs(reg, c, p.ID(), eligibility.CategoryMount, now)
			if err != nil {
				s.log.Warn("proximity: snapshot", map[string]any{"zone": st.ZoneID(), "companion": c.ID().String(), "error": err.Error()})
			}
			if tracked {
				metrics.RecordSnapshot("proximity")
			}
		}
	}
}

func (s *Scheduler) applyHealth(st world.ZoneState) {
	for _, c := range st.Creatures() {
		if !c.Alive() || !s.rules.IsOwned(c) {
			continue
		}
		isPet, isMount := s.rules.IsPet(c), s.rules.IsMount(c)
		if !isPet && !isMount {
			continue
		}

		if (isPet && s.cfg.PetRegen) || (isMount && s.cfg.MountRegen) {
			if c.Health() < c.MaxHealth() {
				c.Heal(1)
			}
		}

		pct := healthPercent(c)
		if isPet && s.cfg.PetImmortal && pct <= s.cfg.FightThreshold {
			c.ClearAggression()
		}
		if isMount && s.cfg.MountImmortal && pct <= s.cfg.MoveThreshold {
			s.buck(st, c)
		}
	}
}

// buck baja a los jugadores de una montura herida.
func (s *Scheduler) buck(st world.ZoneState, c world.Creature) {
	riders := c.Riders()
	if len(riders) == 0 {
		return
	}
	allowed, warn := s.cds.Buck(c.ID())
	if !allowed {
		return
	}
	for _, id := range riders {
		c.Dismount(id)
		if !warn {
			continue
		}
		if p, ok := st.Player(id); ok {
			p.Send(injuredMountMsg)
		}
	}
	s.log.Debug("bucked riders off injured mount", map[string]any{"zone": st.ZoneID(), "companion": c.ID().String(), "riders": len(riders)})
}

func (s *Scheduler) onDamage(_ world.ZoneState, ev world.DamageEvent) world.DamageVerdict {
	c := ev.Target
	if c == nil || !c.Alive() {
		return world.DamageVerdict{}
	}
	isPet, isMount := s.rules.IsPet(c), s.rules.IsMount(c)
	if !isPet && !isMount {
		return world.DamageVerdict{}
	}
	owner, ok := s.rules.OwnerOf(c)
	if !ok {
		return world.DamageVerdict{}
	}

	if s.cfg.DisableFriendlyFire && ev.AttackerID != uuid.Nil && ev.AttackerID == owner {
		return world.DamageVerdict{Cancel: true}
	}

	immortal := (isPet && s.cfg.PetImmortal) || (isMount && s.cfg.MountImmortal)
	if immortal && c.Health()-ev.Amount <= 0 {
		c.SetHealth(1)
		if isPet && healthPercent(c) <= s.cfg.FightThreshold {
			c.ClearAggression()
		}
		return world.DamageVerdict{Cancel: true}
	}

	if isPet && s.cfg.PetImmortal && c.MaxHealth() > 0 {
		after := (c.Health() - ev.Amount) / c.MaxHealth() * 100
		if healthPercent(c) > s.cfg.FightThreshold && after <= s.cfg.FightThreshold {
			c.ClearAggression()
		}
	}
	return world.DamageVerdict{}
}

func healthPercent(c world.Creature) float64 {
	if c.MaxHealth() <= 0 {
		return 0
	}
	return c.Health() / c.MaxHealth() * 100
}
