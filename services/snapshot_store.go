package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"pet-game-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSnapshotNotFound signals that no saved snapshot exists for a key.
// Not a failure — callers initialize defaults.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// DefaultWalletNamespace is used when no wallet is connected.
const DefaultWalletNamespace = "default"

// SaveDebounceWindow bounds write amplification under rapid interaction:
// repeated mutations within the window coalesce into one write.
const SaveDebounceWindow = 1 * time.Second

// SnapshotStore is the durable key-value boundary for pet snapshots.
// Implementations must never panic past this boundary — storage errors
// come back as error values.
type SnapshotStore interface {
	Save(walletID, petID string, stats *models.PetStats) error
	Load(walletID, petID string) (*models.PetStats, error)
	Delete(walletID, petID string) error
	LoadWalletPets(walletID string) (map[string]*models.PetStats, error)
}

// StatsKey derives the primary storage key from the pet identity.
func StatsKey(walletID, petID string) string {
	if walletID == "" || petID == "" {
		return "pet_stats:" + DefaultWalletNamespace
	}
	return fmt.Sprintf("pet_stats:%s:%s", walletID, petID)
}

// GormSnapshotStore persists snapshots as JSON rows: a per-pet row on
// the primary key plus a per-wallet aggregate row used as the backup
// read path.
type GormSnapshotStore struct {
	DB *gorm.DB
}

func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{DB: db}
}

func (s *GormSnapshotStore) Save(walletID, petID string, stats *models.PetStats) error {
	snap := stats.Clone()
	snap.LastSaved = time.Now().UnixMilli()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	row := models.PetSnapshot{
		Key:       StatsKey(walletID, petID),
		WalletID:  walletID,
		PetID:     petID,
		Payload:   string(payload),
		Version:   models.SnapshotVersion,
		LastSaved: snap.LastSaved,
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}

		if walletID == "" {
			return nil
		}

		// Per-wallet aggregate backup: petId → snapshot
		var agg models.WalletSnapshot
		pets := map[string]json.RawMessage{}
		err := tx.First(&agg, "wallet_id = ?", walletID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && agg.Payload != "" {
			if err := json.Unmarshal([]byte(agg.Payload), &pets); err != nil {
				log.Printf("⚠️ Corrupt wallet aggregate for %s, rebuilding: %v", walletID, err)
				pets = map[string]json.RawMessage{}
			}
		}
		pets[petID] = payload

		aggPayload, err := json.Marshal(pets)
		if err != nil {
			return fmt.Errorf("failed to serialize wallet aggregate: %w", err)
		}
		agg = models.WalletSnapshot{
			WalletID:  walletID,
			Payload:   string(aggPayload),
			LastSaved: snap.LastSaved,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet_id"}},
			UpdateAll: true,
		}).Create(&agg).Error
	})
}

func (s *GormSnapshotStore) Load(walletID, petID string) (*models.PetStats, error) {
	var row models.PetSnapshot
	err := s.DB.First(&row, "key = ?", StatsKey(walletID, petID)).Error
	if err == nil {
		var stats models.PetStats
		if err := json.Unmarshal([]byte(row.Payload), &stats); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", row.Key, err)
		}
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Fallback: per-wallet aggregate record
	if walletID != "" && petID != "" {
		pets, err := s.LoadWalletPets(walletID)
		if err == nil {
			if stats, ok := pets[petID]; ok {
				log.Printf("📊 Snapshot for %s/%s recovered from wallet backup", walletID, petID)
				return stats, nil
			}
		} else if !errors.Is(err, ErrSnapshotNotFound) {
			return nil, err
		}
	}

	return nil, ErrSnapshotNotFound
}

func (s *GormSnapshotStore) Delete(walletID, petID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.PetSnapshot{}, "key = ?", StatsKey(walletID, petID)).Error; err != nil {
			return err
		}
		if walletID == "" {
			return nil
		}
		var agg models.WalletSnapshot
		err := tx.First(&agg, "wallet_id = ?", walletID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		pets := map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(agg.Payload), &pets); err != nil {
			return nil
		}
		delete(pets, petID)
		payload, _ := json.Marshal(pets)
		agg.Payload = string(payload)
		return tx.Save(&agg).Error
	})
}

func (s *GormSnapshotStore) LoadWalletPets(walletID string) (map[string]*models.PetStats, error) {
	var agg models.WalletSnapshot
	err := s.DB.First(&agg, "wallet_id = ?", walletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(agg.Payload), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode wallet aggregate %s: %w", walletID, err)
	}
	pets := make(map[string]*models.PetStats, len(raw))
	for petID, blob := range raw {
		var stats models.PetStats
		if err := json.Unmarshal(blob, &stats); err != nil {
			log.Printf("⚠️ Skipping corrupt snapshot %s/%s: %v", walletID, petID, err)
			continue
		}
		pets[petID] = &stats
	}
	return pets, nil
}

// DebouncedSaver coalesces rapid snapshot writes: each new mutation
// replaces the pending timer, so only the latest snapshot within the
// window is written. Writes are fire-and-forget; failures are logged
// and the in-memory state stays authoritative.
type DebouncedSaver struct {
	store  SnapshotStore
	window time.Duration

	mu      sync.Mutex
	pending map[string]*pendingSave
}

type pendingSave struct {
	timer    *time.Timer
	walletID string
	petID    string
	stats    *models.PetStats
}

func NewDebouncedSaver(store SnapshotStore, window time.Duration) *DebouncedSaver {
	if window <= 0 {
		window = SaveDebounceWindow
	}
	return &DebouncedSaver{
		store:   store,
		window:  window,
		pending: make(map[string]*pendingSave),
	}
}

// Schedule queues a snapshot write, replacing any pending write for the
// same key (cancel-and-reschedule, a leaky bucket of size one).
func (d *DebouncedSaver) Schedule(walletID, petID string, stats *models.PetStats) {
	key := StatsKey(walletID, petID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	p := &pendingSave{walletID: walletID, petID: petID, stats: stats.Clone()}
	p.timer = time.AfterFunc(d.window, func() { d.fire(key) })
	d.pending[key] = p
}

func (d *DebouncedSaver) fire(key string) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	if err := d.store.Save(p.walletID, p.petID, p.stats); err != nil {
		log.Printf("❌ Failed to save snapshot %s: %v", key, err)
	}
}

// Flush writes out all pending snapshots immediately. Called on shutdown.
func (d *DebouncedSaver) Flush() {
	d.mu.Lock()
	pending := make([]*pendingSave, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		pending = append(pending, p)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, p := range pending {
		if err := d.store.Save(p.walletID, p.petID, p.stats); err != nil {
			log.Printf("❌ Failed to flush snapshot %s/%s: %v", p.walletID, p.petID, err)
		}
	}
}
