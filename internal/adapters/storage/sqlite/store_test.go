package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companions.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSaveAndLoadZone(t *testing.T) {
	store, _ := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	name := "Rex"
	pet := companions.Record{
		ID: uuid.New(), OwnerID: uuid.New(), ZoneID: "overworld",
		Position: world.Vec3{X: 10.5, Y: 64, Z: -2}, Category: eligibility.CategoryPet,
		Name: &name, State: []byte{0xbf, 0x01, 0xff}, UpdatedAt: now,
	}
	mount := companions.Record{
		ID: uuid.New(), OwnerID: pet.OwnerID, ZoneID: "overworld",
		Category: eligibility.CategoryMount, UpdatedAt: now,
	}

	if err := store.SaveZone(ctx, "overworld", []companions.Record{pet, mount}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.LoadZone(ctx, "overworld")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records len = %d, want 2", len(got))
	}
	byID := map[uuid.UUID]companions.Record{}
	for _, rec := range got {
		byID[rec.ID] = rec
	}

	p := byID[pet.ID]
	if p.Name == nil || *p.Name != "Rex" {
		t.Fatalf("pet name = %v, want Rex", p.Name)
	}
	if p.Position != pet.Position || string(p.State) != string(pet.State) {
		t.Fatalf("pet mismatch: %+v", p)
	}
	if !p.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at = %v, want %v", p.UpdatedAt, now)
	}
	if m := byID[mount.ID]; m.Name != nil || m.Category != eligibility.CategoryMount {
		t.Fatalf("mount mismatch: %+v", m)
	}

	other, err := store.LoadZone(ctx, "nether")
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected nether empty, got %d", len(other))
	}
}

func TestSaveZoneReplacesPreviousRows(t *testing.T) {
	store, _ := openTempStore(t)
	ctx := context.Background()

	rec := func() companions.Record {
		return companions.Record{ID: uuid.New(), OwnerID: uuid.New(), Category: eligibility.CategoryPet, UpdatedAt: time.Now()}
	}
	if err := store.SaveZone(ctx, "overworld", []companions.Record{rec(), rec(), rec()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	keep := rec()
	if err := store.SaveZone(ctx, "overworld", []companions.Record{keep}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := store.LoadZone(ctx, "overworld")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != keep.ID {
		t.Fatalf("expected only %s, got %+v", keep.ID, got)
	}
}

func TestReopenKeepsData(t *testing.T) {
	store, path := openTempStore(t)
	ctx := context.Background()

	r := companions.Record{ID: uuid.New(), OwnerID: uuid.New(), Category: eligibility.CategoryMount, UpdatedAt: time.Now()}
	if err := store.SaveZone(ctx, "end", []companions.Record{r}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()

	got, err := again.LoadZone(ctx, "end")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != r.ID {
		t.Fatalf("expected record to survive reopen, got %+v", got)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
