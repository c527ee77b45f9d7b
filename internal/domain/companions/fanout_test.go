package companions

import (
	"context"
	"errors"
	"testing"
	"time"

	"companion-recall/internal/adapters/world/memory"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/ports/world"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWorld(t *testing.T, zones ...string) (*memory.Server, *Registries) {
	t.Helper()
	srv := memory.NewServer(nil, zones...)
	t.Cleanup(srv.Start(context.Background(), 0))

	regs := NewRegistries(nil, nil, nil)
	for _, z := range zones {
		_, err := regs.Open(context.Background(), z)
		require.NoError(t, err)
	}
	return srv, regs
}

func seed(t *testing.T, srv *memory.Server, regs *Registries, zoneID string, recs ...Record) {
	t.Helper()
	z, _ := srv.Zone(zoneID)
	reg, _ := regs.For(zoneID)
	var upsertErr error
	require.NoError(t, z.Do(context.Background(), func(world.ZoneState) {
		for _, r := range recs {
			if err := reg.Upsert(r); err != nil {
				upsertErr = err
			}
		}
	}))
	require.NoError(t, upsertErr)
}

func TestCollectOwned_AcrossZones(t *testing.T) {
	srv, regs := startWorld(t, "overworld", "nether")
	alice, bob := uuid.New(), uuid.New()

	a1 := newRecord(alice, eligibility.CategoryPet, strPtr("Rex"))
	a2 := newRecord(alice, eligibility.CategoryPet, nil)
	a3 := newRecord(alice, eligibility.CategoryMount, nil)
	b1 := newRecord(bob, eligibility.CategoryPet, nil)
	seed(t, srv, regs, "overworld", a1, b1)
	seed(t, srv, regs, "nether", a2, a3)

	pets, err := regs.CollectOwned(context.Background(), srv, alice, eligibility.CategoryPet)
	require.NoError(t, err)
	require.Len(t, pets, 2)
	assert.Equal(t, "overworld", pets[0].ZoneID)
	assert.Equal(t, "nether", pets[1].ZoneID)

	all, err := regs.CollectOwned(context.Background(), srv, alice, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUntrackEverywhere_RemovesStaleCopies(t *testing.T) {
	srv, regs := startWorld(t, "overworld", "nether")
	owner := uuid.New()
	rec := newRecord(owner, eligibility.CategoryMount, nil)
	seed(t, srv, regs, "overworld", rec)
	seed(t, srv, regs, "nether", rec)

	n, err := regs.UntrackEverywhere(context.Background(), srv, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := regs.CollectOwned(context.Background(), srv, owner, "")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCollectOwned_StoppedZone(t *testing.T) {
	srv := memory.NewServer(nil, "overworld")
	stop := srv.Start(context.Background(), 0)
	regs := NewRegistries(nil, nil, nil)
	_, err := regs.Open(context.Background(), "overworld")
	require.NoError(t, err)
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = regs.CollectOwned(ctx, srv, uuid.New(), "")
	assert.True(t, errors.Is(err, ErrServerUnavailable))
}

func TestTrack_OnlyOwnedEligibleAlive(t *testing.T) {
	rules := eligibility.NewRules(nil, nil)
	reg := NewRegistry("overworld", nil, nil)
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	wolf := memory.NewCreature(memory.CreatureSpec{Type: eligibility.TypeWolf, Owner: owner, Name: strPtr("Rex")})
	rec, ok, err := Track(reg, rules, wolf, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, eligibility.CategoryPet, rec.Category)
	assert.Equal(t, "Rex", rec.DisplayName())
	assert.NotEmpty(t, rec.State)

	stray := memory.NewCreature(memory.CreatureSpec{Type: eligibility.TypeWolf})
	_, ok, _ = Track(reg, rules, stray, now)
	assert.False(t, ok)

	zombie := memory.NewCreature(memory.CreatureSpec{Type: "minecraft:zombie", Owner: owner})
	_, ok, _ = Track(reg, rules, zombie, now)
	assert.False(t, ok)

	assert.Equal(t, 1, reg.Len())
}

func TestTrack_SnapshotFailureKeepsPreviousState(t *testing.T) {
	rules := eligibility.NewRules(nil, nil)
	reg := NewRegistry("overworld", nil, nil)
	owner := uuid.New()
	now := time.Now()

	wolf := memory.NewCreature(memory.CreatureSpec{Type: eligibility.TypeWolf, Owner: owner})
	first, _, err := Track(reg, rules, wolf, now)
	require.NoError(t, err)

	wolf.SetFailSnapshot(true)
	_, ok, err := Track(reg, rules, wolf, now)
	assert.True(t, ok)
	assert.Error(t, err)

	got, _ := reg.Get(wolf.ID())
	assert.Equal(t, first.State, got.State)
}
