package memory

import (
	"context"
	"testing"
	"time"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

func TestCompanionsStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewCompanionsStore()

	recs, err := s.LoadZone(ctx, "overworld")
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}

	name := "Rex"
	rec := companions.Record{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		ZoneID:    "overworld",
		Position:  world.Vec3{X: 1.5, Y: 64, Z: -3},
		Category:  eligibility.CategoryPet,
		Name:      &name,
		State:     []byte{1, 2, 3},
		UpdatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SaveZone(ctx, "overworld", []companions.Record{rec}); err != nil {
		t.Fatalf("save: %v", err)
	}

	recs, err = s.LoadZone(ctx, "overworld")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	got := recs[0]
	if got.ID != rec.ID || got.OwnerID != rec.OwnerID || got.Position != rec.Position {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.Name == nil || *got.Name != "Rex" || string(got.State) != string(rec.State) {
		t.Fatalf("name/state mismatch: %+v", got)
	}
	if !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Fatalf("expected updated_at %v, got %v", rec.UpdatedAt, got.UpdatedAt)
	}

	if err := s.SaveZone(ctx, " ", nil); err == nil {
		t.Fatalf("expected error for empty zone id")
	}
}

func TestCompanionsStore_SkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	s := NewCompanionsStore()

	owner := uuid.New()
	good := uuid.New()
	doc := `{"version":1,"zone":"nether","records":[
		{"id":"` + good.String() + `","owner_id":"` + owner.String() + `","zone_id":"nether","category":"mount","updated_at":"2026-10-01T12:00:00Z"},
		{"id":"not-a-uuid","owner_id":"` + owner.String() + `","category":"pet"},
		{"id":"` + uuid.NewString() + `","owner_id":"` + owner.String() + `","category":"dragon"},
		42
	]}`
	s.PutRaw("nether", []byte(doc))

	recs, err := s.LoadZone(ctx, "nether")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != good {
		t.Fatalf("expected only the valid record, got %+v", recs)
	}

	s.PutRaw("end", []byte("{broken"))
	if _, err := s.LoadZone(ctx, "end"); err == nil {
		t.Fatalf("expected error for unreadable document")
	}
}
