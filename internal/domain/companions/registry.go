package companions

import (
	"sort"

	"companion-recall/internal/domain/eligibility"

	"github.com/google/uuid"
)

// FlushFunc recibe una copia de todos los registros de una zona.
type FlushFunc func(zoneID string, recs []Record)

// Registry es el mapa de compañeros de una zona.
// Solo se usa desde la goroutine de su zona, por eso no lleva lock.
type Registry struct {
	zoneID string
	byID   map[uuid.UUID]Record
	dirty  bool
	flush  FlushFunc
}

func NewRegistry(zoneID string, recs []Record, flush FlushFunc) *Registry {
	r := &Registry{
		zoneID: zoneID,
		byID:   make(map[uuid.UUID]Record, len(recs)),
		flush:  flush,
	}
	for _, rec := range recs {
		if rec.ID == uuid.Nil {
			continue
		}
		r.byID[rec.ID] = rec
	}
	return r
}

func (r *Registry) ZoneID() string { return r.zoneID }

// Upsert inserta o reemplaza por ID. La zona del registro pasa a ser esta.
func (r *Registry) Upsert(rec Record) error {
	if rec.ID == uuid.Nil || rec.OwnerID == uuid.Nil {
		return ErrInvalidRecord
	}
	rec.ZoneID = r.zoneID
	r.byID[rec.ID] = rec
	r.dirty = true
	return nil
}

// Remove devuelve false si no existía.
func (r *Registry) Remove(id uuid.UUID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	r.dirty = true
	return true
}

func (r *Registry) Get(id uuid.UUID) (Record, bool) {
	rec, ok := r.byID[id]
	return rec, ok
}

func (r *Registry) Contains(id uuid.UUID) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) ByOwner(owner uuid.UUID) []Record {
	return r.filter(func(rec Record) bool { return rec.OwnerID == owner })
}

func (r *Registry) ByOwnerAndCategory(owner uuid.UUID, cat eligibility.Category) []Record {
	return r.filter(func(rec Record) bool { return rec.OwnerID == owner && rec.Category == cat })
}

func (r *Registry) Len() int { return len(r.byID) }

func (r *Registry) All() []Record {
	return r.filter(func(Record) bool { return true })
}

// Clear borra todo (herramientas de administración).
func (r *Registry) Clear() {
	if len(r.byID) == 0 {
		return
	}
	r.byID = map[uuid.UUID]Record{}
	r.dirty = true
}

func (r *Registry) Dirty() bool { return r.dirty }

// Flush pasa una copia al hook solo si hubo cambios desde el último flush.
func (r *Registry) Flush() bool {
	if !r.dirty {
		return false
	}
	r.dirty = false
	if r.flush != nil {
		r.flush(r.zoneID, r.All())
	}
	return true
}

// filter devuelve los registros ordenados por ID para que la salida sea estable.
func (r *Registry) filter(keep func(Record) bool) []Record {
	out := make([]Record, 0)
	for _, rec := range r.byID {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}
