package services

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"pet-game-system/models"
)

// Testable time and random seams
var (
	TimeNow     = func() time.Time { return time.Now() }
	RandFloat64 = rand.Float64
)

// AliveProjector receives the one-way alive-flag projection pushed to
// the cosmetic NFT record on every alive-state transition.
type AliveProjector interface {
	SetAliveFlag(petID string, alive bool) error
}

// PetKey identifies one pet instance.
type PetKey struct {
	WalletID string
	PetID    string
}

// StatService owns the canonical in-memory state of every loaded pet
// and is the single mutation path for it. All writes clamp gauges,
// recompute the level and evaluate the death transition; every
// mutation triggers a debounced snapshot write.
type StatService struct {
	store    SnapshotStore
	saver    *DebouncedSaver
	registry AliveProjector // optional

	mu   sync.Mutex
	pets map[PetKey]*models.PetStats
}

func NewStatService(store SnapshotStore, registry AliveProjector) *StatService {
	return &StatService{
		store:    store,
		saver:    NewDebouncedSaver(store, SaveDebounceWindow),
		registry: registry,
		pets:     make(map[PetKey]*models.PetStats),
	}
}

// Get returns a read-only snapshot of the pet, loading it from storage
// or initializing defaults the first time the key is observed.
func (s *StatService) Get(walletID, petID string) *models.PetStats {
	s.mu.Lock()
	p := s.loadLocked(walletID, petID)
	snap := p.Clone()
	s.mu.Unlock()
	return snap
}

// ApplyUpdate applies a partial field update: gauge fields are clamped
// to [0,100], non-gauge fields set directly, unknown field names are
// silently ignored. Touching any care gauge stamps lastInteraction and
// bumps totalInteractions. Returns the updated snapshot.
func (s *StatService) ApplyUpdate(walletID, petID string, updates map[string]any) *models.PetStats {
	return s.Update(walletID, petID, func(*models.PetStats) map[string]any {
		return updates
	})
}

// Update computes a partial update from the current state and applies
// it atomically — the read-modify-write used by the action resolver.
func (s *StatService) Update(walletID, petID string, fn func(*models.PetStats) map[string]any) *models.PetStats {
	return s.update(walletID, petID, fn, true)
}

// SystemUpdate is the decay path: same clamping, level and death rules,
// but elapsed-time decay does not count as a care interaction.
func (s *StatService) SystemUpdate(walletID, petID string, fn func(*models.PetStats) map[string]any) *models.PetStats {
	return s.update(walletID, petID, fn, false)
}

func (s *StatService) update(walletID, petID string, fn func(*models.PetStats) map[string]any, care bool) *models.PetStats {
	s.mu.Lock()
	p := s.loadLocked(walletID, petID)

	wasAlive := p.IsAlive
	updates := fn(p)
	if updates == nil {
		// Rejected action: zero state mutation, no save.
		snap := p.Clone()
		s.mu.Unlock()
		return snap
	}
	applyFields(p, updates, care)
	aliveChanged := p.IsAlive != wasAlive
	snap := p.Clone()
	s.mu.Unlock()

	s.saver.Schedule(walletID, petID, snap)

	if aliveChanged && s.registry != nil {
		if err := s.registry.SetAliveFlag(petID, snap.IsAlive); err != nil {
			log.Printf("⚠️ Failed to mirror alive flag for pet %s: %v", petID, err)
		}
	}
	return snap
}

// Reset discards all progress and history for the pet, keeping its
// identity, and persists the fresh defaults.
func (s *StatService) Reset(walletID, petID string) *models.PetStats {
	s.mu.Lock()
	old, existed := s.pets[PetKey{walletID, petID}]
	fresh := models.NewPetStats(walletID, petID)
	s.pets[PetKey{walletID, petID}] = fresh
	wasDead := existed && !old.IsAlive
	snap := fresh.Clone()
	s.mu.Unlock()

	s.saver.Schedule(walletID, petID, snap)
	if wasDead && s.registry != nil {
		if err := s.registry.SetAliveFlag(petID, true); err != nil {
			log.Printf("⚠️ Failed to mirror alive flag for pet %s: %v", petID, err)
		}
	}
	log.Printf("🔄 Stats reset for %s/%s", walletID, petID)
	return snap
}

// ActivePets lists every pet currently tracked in memory, for the
// decay scheduler to walk.
func (s *StatService) ActivePets() []PetKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]PetKey, 0, len(s.pets))
	for k := range s.pets {
		keys = append(keys, k)
	}
	return keys
}

// FlushSaves writes out any pending debounced snapshots. Called on shutdown.
func (s *StatService) FlushSaves() {
	s.saver.Flush()
}

// loadLocked resolves the canonical record for a key: memory, then
// storage, then defaults. Callers hold s.mu.
func (s *StatService) loadLocked(walletID, petID string) *models.PetStats {
	key := PetKey{walletID, petID}
	if p, ok := s.pets[key]; ok {
		return p
	}

	p, err := s.store.Load(walletID, petID)
	if err == nil {
		log.Printf("✅ Stats loaded for %s/%s (level %d)", walletID, petID, p.Level)
	} else {
		if err != ErrSnapshotNotFound {
			// Failed load degrades to defaults; state continues unpersisted.
			log.Printf("❌ Failed to load stats for %s/%s: %v", walletID, petID, err)
		} else {
			log.Printf("ℹ️ No saved stats for %s/%s, using defaults", walletID, petID)
		}
		p = models.NewPetStats(walletID, petID)
		s.saver.Schedule(walletID, petID, p)
	}
	s.pets[key] = p
	return p
}

func applyFields(p *models.PetStats, updates map[string]any, care bool) {
	careTouched := false
	deathCauseSet := false

	for field, value := range updates {
		switch field {
		case "hunger":
			p.Hunger = clampGauge(toFloat(value))
			careTouched = true
		case "happiness":
			p.Happiness = clampGauge(toFloat(value))
			careTouched = true
		case "energy":
			p.Energy = clampGauge(toFloat(value))
			careTouched = true
		case "health":
			p.Health = clampGauge(toFloat(value))
		case "experience":
			xp := int64(toFloat(value))
			if xp < 0 {
				xp = 0
			}
			p.Experience = xp
		case "is_alive":
			if alive, ok := value.(bool); ok {
				p.IsAlive = alive
				if alive {
					p.DeathCause = ""
				}
			}
		case "death_cause":
			if cause, ok := value.(string); ok {
				p.DeathCause = cause
				deathCauseSet = true
			}
		case "total_interactions":
			p.TotalInteractions = int64(toFloat(value))
		case "achievements":
			if list, ok := value.([]string); ok {
				p.Achievements = append([]string(nil), list...)
			}
		default:
			// Unknown field names are ignored rather than rejected.
		}
	}

	// Level is derived, never set directly.
	p.Level = models.LevelForExperience(p.Experience)

	// Death transition is one-directional except via revive.
	if p.Health <= models.GaugeMin && p.IsAlive {
		p.IsAlive = false
		if !deathCauseSet && p.DeathCause == "" {
			p.DeathCause = "neglect"
		}
	}

	now := TimeNow().UnixMilli()
	if care && careTouched {
		p.LastInteraction = now
		p.TotalInteractions++
	}
	p.LastUpdate = now
}

func clampGauge(v float64) float64 {
	if v < models.GaugeMin {
		return models.GaugeMin
	}
	if v > models.GaugeMax {
		return models.GaugeMax
	}
	return v
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
