package recall

import (
	"context"
	"fmt"
	"strings"
	"time"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/cooldowns"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/platform/logger"
	"companion-recall/internal/platform/metrics"
	"companion-recall/internal/ports/feedback"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

// Result es la salida de un comando: cantidad afectada y mensajes para el jugador.
type Result struct {
	Count    int
	Messages []string
}

func (r *Result) say(format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

type Deps struct {
	Server     world.Server
	Registries *companions.Registries
	Rules      *eligibility.Rules
	Cooldowns  *cooldowns.Service
	Feedback   feedback.Sink // opcional
	Logger     logger.Logger
}

// Engine implementa el whistle: trae al jugador a sus compañeros registrados,
// estén cargados o no.
type Engine struct {
	srv   world.Server
	regs  *companions.Registries
	rules *eligibility.Rules
	cd    *cooldowns.Service
	sink  feedback.Sink
	log   logger.Logger

	cooldown time.Duration
	now      func() time.Time
}

func NewEngine(d Deps, cooldown time.Duration) *Engine {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		srv:      d.Server,
		regs:     d.Registries,
		rules:    d.Rules,
		cd:       d.Cooldowns,
		sink:     d.Feedback,
		log:      log.With(map[string]any{"component": "recall"}),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// live es un candidato listo para teletransportar.
type live struct {
	id            uuid.UUID
	zone          string
	name          string
	reconstructed bool
}

// Whistle llama a los compañeros de la categoría. name vacío = todos.
func (e *Engine) Whistle(ctx context.Context, caller uuid.UUID, cat eligibility.Category, name string) (Result, error) {
	var res Result
	name = strings.TrimSpace(name)
	plural := cat.Plural()

	if caller == uuid.Nil {
		return res, companions.ErrNoCaller
	}
	zone, ok := e.srv.PlayerZone(caller)
	if !ok {
		return res, companions.ErrNoCaller
	}

	if left, ok := e.cd.TryWhistle(caller, e.cooldown); !ok {
		err := &companions.CooldownError{Remaining: left}
		res.say("Whistle is on cooldown! %d seconds remaining.", err.Seconds())
		metrics.RecordWhistle(string(cat), "cooldown")
		return res, err
	}

	var (
		pos    world.Vec3
		online bool
	)
	if err := zone.Do(ctx, func(st world.ZoneState) {
		if p, ok := st.Player(caller); ok {
			pos, online = p.Position(), true
		}
	}); err != nil {
		res.say("Server not available.")
		metrics.RecordWhistle(string(cat), "error")
		return res, fmt.Errorf("%w: %v", companions.ErrServerUnavailable, err)
	}
	if !online {
		return res, companions.ErrNoCaller
	}

	all, err := e.regs.CollectOwned(ctx, e.srv, caller, cat)
	if err != nil {
		res.say("Server not available.")
		metrics.RecordWhistle(string(cat), "error")
		return res, err
	}
	all = dedupe(all)
	if len(all) == 0 {
		res.say("No callable %s found!", plural)
		metrics.RecordWhistle(string(cat), "empty")
		return res, companions.ErrNoCandidates
	}

	targets := all
	if name == "" {
		res.say("Attempting to call all %d %s...", len(all), plural)
	} else {
		targets = make([]companions.Record, 0, len(all))
		for _, rec := range all {
			if rec.MatchesName(name) {
				targets = append(targets, rec)
			}
		}
		if len(targets) == 0 {
			res.say("No %s found with name: %s", cat, name)
			res.say("Use the %s list command to see your callable %s", cat, plural)
			metrics.RecordWhistle(string(cat), "empty")
			return res, companions.ErrNoCandidates
		}
		res.say("You have %d callable %s named '%s', attempting to call...", len(targets), noun(cat, len(targets)), name)
	}

	ready, dead, failed, err := e.resolve(ctx, caller, cat, zone.ID(), pos, targets)
	if err != nil {
		res.say("Server not available.")
		metrics.RecordWhistle(string(cat), "error")
		return res, err
	}

	if len(dead) > 0 {
		if _, err := e.regs.UntrackEverywhere(ctx, e.srv, dead...); err != nil {
			e.log.Warn("dead purge incomplete", map[string]any{"error": err.Error()})
		}
		metrics.RecordDeadPurged(len(dead))
		entity := "entity"
		if len(dead) > 1 {
			entity = "entities"
		}
		res.say("Removed %d dead %s from callable list.", len(dead), entity)
	}

	teleported, teleportFailed := e.teleport(ctx, cat, zone, pos, ready)
	failed = append(failed, teleportFailed...)

	res.Count = teleported
	switch {
	case teleported > 0:
		msg := fmt.Sprintf("Called %d %s named '%s'!", teleported, noun(cat, teleported), name)
		if name == "" {
			msg = fmt.Sprintf("Called all %d %s!", teleported, noun(cat, teleported))
		}
		if len(failed) > 0 {
			msg += fmt.Sprintf("\n(%d failed to call)", len(failed))
		}
		res.Messages = append(res.Messages, msg)
		metrics.RecordWhistle(string(cat), "called")
		e.play(ctx, zone.ID(), pos, cat)
	case len(failed) > 0:
		res.say("Failed to call %d %s", len(failed), noun(cat, len(failed)))
		metrics.RecordWhistle(string(cat), "failed")
	default:
		metrics.RecordWhistle(string(cat), "empty")
	}

	e.log.Info("whistle", map[string]any{
		"caller":     caller.String(),
		"category":   string(cat),
		"filter":     name,
		"candidates": len(targets),
		"teleported": teleported,
		"failed":     len(failed),
		"dead":       len(dead),
	})
	return res, nil
}

// resolve clasifica cada candidato: vivo y cargado en alguna zona, muerto,
// o descargado (se reconstruye desde su blob en la zona del jugador).
func (e *Engine) resolve(
	ctx context.Context,
	caller uuid.UUID,
	cat eligibility.Category,
	callerZone string,
	pos world.Vec3,
	targets []companions.Record,
) (ready []live, dead []uuid.UUID, failed []string, err error) {
	pending := make(map[uuid.UUID]companions.Record, len(targets))
	for _, rec := range targets {
		pending[rec.ID] = rec
	}

	for _, z := range e.srv.Zones() {
		if len(pending) == 0 {
			break
		}
		zid := z.ID()
		doErr := z.Do(ctx, func(st world.ZoneState) {
			for _, rec := range targets {
				if _, open := pending[rec.ID]; !open {
					continue
				}
				c, ok := st.Creature(rec.ID)
				if !ok {
					continue
				}
				delete(pending, rec.ID)

				switch {
				case !c.Alive():
					dead = append(dead, rec.ID)
				case e.rules.IsRecallableBy(c, cat, caller):
					ready = append(ready, live{id: rec.ID, zone: zid, name: rec.DisplayName()})
				default:
					failed = append(failed, rec.DisplayName())
					metrics.RecordRecallFailure(string(cat), "ineligible")
				}
			}
		})
		if doErr != nil {
			return nil, nil, nil, fmt.Errorf("%w: zone %s: %v", companions.ErrServerUnavailable, zid, doErr)
		}
	}

	if len(pending) == 0 {
		return ready, dead, failed, nil
	}

	// Reconstrucción en la zona del jugador.
	zone, ok := e.srv.Zone(callerZone)
	if !ok {
		return nil, nil, nil, companions.ErrServerUnavailable
	}
	reg, ok := e.regs.For(callerZone)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: zone %s has no registry", companions.ErrServerUnavailable, callerZone)
	}

	now := e.now()
	doErr := zone.Do(ctx, func(st world.ZoneState) {
		for _, rec := range targets {
			if _, open := pending[rec.ID]; !open {
				continue
			}

			c, err := e.reconstruct(st, rec, pos)
			if err != nil {
				e.log.Warn("reconstruction failed", map[string]any{
					"companion": rec.ID.String(),
					"zone":      rec.ZoneID,
					"error":     err.Error(),
				})
				failed = append(failed, rec.DisplayName())
				continue
			}

			owner, ok := e.rules.OwnerOf(c)
			if !ok {
				owner = rec.OwnerID
			}
			if _, _, err := companions.TrackAs(reg, c, owner, rec.Category, now); err != nil {
				e.log.Warn("track reconstructed companion", map[string]any{"companion": rec.ID.String(), "error": err.Error()})
			}
			metrics.RecordSnapshot("recall")
			ready = append(ready, live{id: rec.ID, zone: callerZone, name: rec.DisplayName(), reconstructed: true})
		}
	})
	if doErr != nil {
		return nil, nil, nil, fmt.Errorf("%w: zone %s: %v", companions.ErrServerUnavailable, callerZone, doErr)
	}
	return ready, dead, failed, nil
}

func (e *Engine) reconstruct(st world.ZoneState, rec companions.Record, pos world.Vec3) (world.Creature, error) {
	if len(rec.State) == 0 {
		metrics.RecordRecallFailure(string(rec.Category), "no_state")
		return nil, fmt.Errorf("%w: no stored state", companions.ErrReconstructionFailed)
	}
	c, err := st.SpawnFromBlob(rec.State, pos)
	if err != nil {
		metrics.RecordRecallFailure(string(rec.Category), "spawn")
		return nil, fmt.Errorf("%w: %v", companions.ErrReconstructionFailed, err)
	}
	return c, nil
}

// teleport lleva a cada candidato a la posición exacta del jugador.
func (e *Engine) teleport(ctx context.Context, cat eligibility.Category, zone world.Zone, pos world.Vec3, ready []live) (int, []string) {
	var (
		moved  []uuid.UUID
		failed []string
	)
	for _, l := range ready {
		if err := e.srv.Teleport(ctx, l.id, l.zone, zone.ID(), pos); err != nil {
			e.log.Warn("teleport failed", map[string]any{
				"companion": l.id.String(),
				"from":      l.zone,
				"error":     fmt.Errorf("%w: %v", companions.ErrTeleportFailed, err).Error(),
			})
			metrics.RecordRecallFailure(string(cat), "teleport")
			failed = append(failed, l.name)
			continue
		}
		source := "live"
		if l.reconstructed {
			source = "reconstructed"
		}
		metrics.RecordTeleported(string(cat), source, 1)
		moved = append(moved, l.id)
	}

	if cat == eligibility.CategoryMount && len(moved) > 0 {
		err := zone.Do(ctx, func(st world.ZoneState) {
			for _, id := range moved {
				if c, ok := st.Creature(id); ok {
					c.StopNavigation()
				}
			}
		})
		if err != nil {
			e.log.Warn("stop navigation", map[string]any{"error": err.Error()})
		}
	}
	return len(moved), failed
}

func (e *Engine) play(ctx context.Context, zoneID string, pos world.Vec3, cat eligibility.Category) {
	if e.sink == nil {
		return
	}
	cue := feedback.CueWhistlePet
	if cat == eligibility.CategoryMount {
		cue = feedback.CueWhistleMount
	}
	e.sink.Play(ctx, zoneID, pos, cue)
}

// dedupe deja un registro por ID (el más reciente); conserva el orden de aparición.
func dedupe(recs []companions.Record) []companions.Record {
	idx := make(map[uuid.UUID]int, len(recs))
	out := make([]companions.Record, 0, len(recs))
	for _, rec := range recs {
		if i, ok := idx[rec.ID]; ok {
			if rec.UpdatedAt.After(out[i].UpdatedAt) {
				out[i] = rec
			}
			continue
		}
		idx[rec.ID] = len(out)
		out = append(out, rec)
	}
	return out
}

func noun(cat eligibility.Category, n int) string {
	if n == 1 {
		return string(cat)
	}
	return cat.Plural()
}
