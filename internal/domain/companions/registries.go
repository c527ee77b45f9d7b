package companions

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"companion-recall/internal/platform/logger"
)

// Registries agrupa un Registry por zona.
// El mapa se protege con lock; cada Registry sigue siendo de su zona.
type Registries struct {
	store Store
	flush FlushFunc
	log   logger.Logger

	mu     sync.RWMutex
	byZone map[string]*Registry
}

// NewRegistries: store puede ser nil (sin persistencia).
func NewRegistries(store Store, flush FlushFunc, log logger.Logger) *Registries {
	if log == nil {
		log = logger.Nop()
	}
	return &Registries{
		store:  store,
		flush:  flush,
		log:    log,
		byZone: map[string]*Registry{},
	}
}

// Open carga el registro de la zona desde el Store. Es idempotente.
// Se llama antes de que la zona empiece a recibir eventos.
func (rs *Registries) Open(ctx context.Context, zoneID string) (*Registry, error) {
	rs.mu.RLock()
	reg, ok := rs.byZone[zoneID]
	rs.mu.RUnlock()
	if ok {
		return reg, nil
	}

	var recs []Record
	if rs.store != nil {
		loaded, err := rs.store.LoadZone(ctx, zoneID)
		if err != nil {
			return nil, fmt.Errorf("load zone %s: %w", zoneID, err)
		}
		recs = loaded
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if reg, ok := rs.byZone[zoneID]; ok {
		return reg, nil
	}
	reg = NewRegistry(zoneID, recs, rs.flush)
	rs.byZone[zoneID] = reg

	rs.log.Info("zone registry opened", map[string]any{"zone": zoneID, "records": reg.Len()})
	return reg, nil
}

// For devuelve el registro ya abierto de una zona.
func (rs *Registries) For(zoneID string) (*Registry, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	reg, ok := rs.byZone[zoneID]
	return reg, ok
}

func (rs *Registries) Zones() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]string, 0, len(rs.byZone))
	for id := range rs.byZone {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
