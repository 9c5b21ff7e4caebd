package services

import (
	"testing"
	"time"

	"pet-game-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFixedTime pins the clock seam.
func withFixedTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := TimeNow
	TimeNow = func() time.Time { return at }
	t.Cleanup(func() { TimeNow = prev })
}

// seedPetAt loads a pet and stamps its LastUpdate to the given instant.
func seedPetAt(t *testing.T, stats *StatService, at time.Time, updates map[string]any) {
	t.Helper()
	withFixedTime(t, at)
	if updates == nil {
		updates = map[string]any{"hunger": 80.0}
	}
	stats.SystemUpdate("0xabc", "pet-1", func(*models.PetStats) map[string]any {
		return updates
	})
}

func TestDecayProportionalToElapsedTime(t *testing.T) {
	stats, _, _ := newTestStatService()
	decay := NewDecayService(stats)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seedPetAt(t, stats, base, nil)

	withFixedTime(t, base.Add(10*time.Minute))
	snap := decay.DecayPet(PetKey{"0xabc", "pet-1"}, TimeNow())

	require.NotNil(t, snap)
	assert.Equal(t, 72.0, snap.Hunger)    // −0.8/min
	assert.Equal(t, 69.0, snap.Energy)    // −0.6/min
	assert.Equal(t, 66.0, snap.Happiness) // −0.4/min
	assert.Equal(t, 100.0, snap.Health)
	assert.True(t, snap.IsAlive)
}

func TestDecayCatchUpIsCapped(t *testing.T) {
	stats, _, _ := newTestStatService()
	decay := NewDecayService(stats)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seedPetAt(t, stats, base, nil)

	// Two hours offline still only charges 30 minutes of decay.
	withFixedTime(t, base.Add(2*time.Hour))
	snap := decay.DecayPet(PetKey{"0xabc", "pet-1"}, TimeNow())

	assert.Equal(t, 56.0, snap.Hunger)
	assert.Equal(t, 57.0, snap.Energy)
	assert.Equal(t, 58.0, snap.Happiness)
}

func TestDecayDoesNotCountAsInteraction(t *testing.T) {
	stats, _, _ := newTestStatService()
	decay := NewDecayService(stats)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seedPetAt(t, stats, base, nil)
	before := stats.Get("0xabc", "pet-1")

	withFixedTime(t, base.Add(5*time.Minute))
	snap := decay.DecayPet(PetKey{"0xabc", "pet-1"}, TimeNow())

	assert.Equal(t, before.TotalInteractions, snap.TotalInteractions)
	assert.Equal(t, before.LastInteraction, snap.LastInteraction)
}

func TestStarvationDrainsHealthToDeath(t *testing.T) {
	stats, _, projector := newTestStatService()
	decay := NewDecayService(stats)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seedPetAt(t, stats, base, map[string]any{"hunger": 0.0, "health": 8.0})

	withFixedTime(t, base.Add(time.Minute))
	snap := decay.DecayPet(PetKey{"0xabc", "pet-1"}, TimeNow())
	assert.Equal(t, 3.0, snap.Health)
	assert.True(t, snap.IsAlive)

	withFixedTime(t, base.Add(2*time.Minute))
	snap = decay.DecayPet(PetKey{"0xabc", "pet-1"}, TimeNow())
	assert.Equal(t, 0.0, snap.Health)
	assert.False(t, snap.IsAlive)
	assert.Equal(t, "neglect", snap.DeathCause)

	// Death is projected to the cosmetic record.
	require.Len(t, projector.calls, 1)
	assert.False(t, projector.calls[0])
}

func TestDeadPetsAreSkipped(t *testing.T) {
	stats, _, _ := newTestStatService()
	decay := NewDecayService(stats)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seedPetAt(t, stats, base, map[string]any{"health": 0.0})
	before := stats.Get("0xabc", "pet-1")
	require.False(t, before.IsAlive)

	withFixedTime(t, base.Add(time.Hour))
	snap := decay.DecayPet(PetKey{"0xabc", "pet-1"}, TimeNow())

	assert.Equal(t, before.Hunger, snap.Hunger)
	assert.Equal(t, before.LastUpdate, snap.LastUpdate)
}

func TestZeroElapsedIsNoop(t *testing.T) {
	stats, _, _ := newTestStatService()
	decay := NewDecayService(stats)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seedPetAt(t, stats, base, nil)
	snap := decay.DecayPet(PetKey{"0xabc", "pet-1"}, TimeNow())

	assert.Equal(t, 80.0, snap.Hunger)
	assert.Equal(t, 75.0, snap.Energy)
}

func TestTickWalksAllActivePets(t *testing.T) {
	stats, _, _ := newTestStatService()
	decay := NewDecayService(stats)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	withFixedTime(t, base)
	stats.SystemUpdate("0xabc", "pet-1", func(*models.PetStats) map[string]any {
		return map[string]any{"hunger": 80.0}
	})
	stats.SystemUpdate("0xdef", "pet-2", func(*models.PetStats) map[string]any {
		return map[string]any{"hunger": 60.0}
	})

	withFixedTime(t, base.Add(10*time.Minute))
	decay.Tick()

	assert.Equal(t, 72.0, stats.Get("0xabc", "pet-1").Hunger)
	assert.Equal(t, 52.0, stats.Get("0xdef", "pet-2").Hunger)
}
