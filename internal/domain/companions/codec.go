package companions

import (
	"encoding/json"
	"fmt"
	"time"

	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

const codecVersion = 1

type wireZone struct {
	Version int               `json:"version"`
	Zone    string            `json:"zone"`
	Records []json.RawMessage `json:"records"`
}

type wireRecord struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	ZoneID    string    `json:"zone_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Category  string    `json:"category"`
	Name      *string   `json:"name,omitempty"`
	State     []byte    `json:"state,omitempty"` // base64
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalZone serializa los registros de una zona como JSON.
func MarshalZone(zoneID string, recs []Record) ([]byte, error) {
	out := wireZone{Version: codecVersion, Zone: zoneID, Records: make([]json.RawMessage, 0, len(recs))}
	for _, rec := range recs {
		b, err := json.Marshal(toWire(rec))
		if err != nil {
			return nil, fmt.Errorf("marshal record %s: %w", rec.ID, err)
		}
		out.Records = append(out.Records, b)
	}
	return json.Marshal(out)
}

// UnmarshalZone decodifica una zona. Las entradas mal formadas (IDs inválidos,
// categoría desconocida, JSON roto) se saltean; skipped cuenta cuántas.
func UnmarshalZone(data []byte) (recs []Record, skipped int, err error) {
	if len(data) == 0 {
		return nil, 0, nil
	}

	var in wireZone
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, 0, fmt.Errorf("unmarshal zone: %w", err)
	}

	recs = make([]Record, 0, len(in.Records))
	for _, raw := range in.Records {
		var w wireRecord
		if err := json.Unmarshal(raw, &w); err != nil {
			skipped++
			continue
		}
		rec, ok := fromWire(w)
		if !ok {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	return recs, skipped, nil
}

func toWire(rec Record) wireRecord {
	return wireRecord{
		ID:        rec.ID.String(),
		OwnerID:   rec.OwnerID.String(),
		ZoneID:    rec.ZoneID,
		X:         rec.Position.X,
		Y:         rec.Position.Y,
		Z:         rec.Position.Z,
		Category:  string(rec.Category),
		Name:      rec.Name,
		State:     rec.State,
		UpdatedAt: rec.UpdatedAt,
	}
}

func fromWire(w wireRecord) (Record, bool) {
	id, err := uuid.Parse(w.ID)
	if err != nil || id == uuid.Nil {
		return Record{}, false
	}
	owner, err := uuid.Parse(w.OwnerID)
	if err != nil || owner == uuid.Nil {
		return Record{}, false
	}
	cat, ok := eligibility.ParseCategory(w.Category)
	if !ok {
		return Record{}, false
	}

	return Record{
		ID:        id,
		OwnerID:   owner,
		ZoneID:    w.ZoneID,
		Position:  world.Vec3{X: w.X, Y: w.Y, Z: w.Z},
		Category:  cat,
		Name:      w.Name,
		State:     w.State,
		UpdatedAt: w.UpdatedAt,
	}, true
}
