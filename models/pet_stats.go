package models

import (
	"time"

	"gorm.io/gorm"
)

// Gauge bounds for hunger/happiness/energy/health.
const (
	GaugeMin = 0.0
	GaugeMax = 100.0
)

// XPPerLevel: level = floor(experience/XPPerLevel) + 1
const XPPerLevel = 100

// PetStats is the canonical dynamic state of a single pet, keyed by
// (wallet, pet). It is persisted as a JSON snapshot through the
// snapshot store, never as its own table — cosmetic NFT traits live in
// PetNFT and are a separate entity.
type PetStats struct {
	WalletID string `json:"wallet_id"`
	PetID    string `json:"pet_id"`

	// Gauges, clamped to [0,100] on every write
	Hunger    float64 `json:"hunger"`
	Happiness float64 `json:"happiness"`
	Energy    float64 `json:"energy"`
	Health    float64 `json:"health"`

	Experience int64 `json:"experience"`
	Level      int   `json:"level"` // derived: floor(experience/100)+1

	IsAlive    bool   `json:"is_alive"`
	DeathCause string `json:"death_cause,omitempty"`

	TotalInteractions int64    `json:"total_interactions"`
	Achievements      []string `json:"achievements,omitempty"`

	// Epoch milliseconds
	LastInteraction int64 `json:"last_interaction"`
	LastUpdate      int64 `json:"last_update"`
	CreatedAt       int64 `json:"created_at"`
	LastSaved       int64 `json:"last_saved"`
}

// NewPetStats returns a fresh record with the default starting values.
func NewPetStats(walletID, petID string) *PetStats {
	now := time.Now().UnixMilli()
	return &PetStats{
		WalletID:   walletID,
		PetID:      petID,
		Hunger:     80,
		Happiness:  70,
		Energy:     75,
		Health:     100,
		Experience: 0,
		Level:      1,
		IsAlive:    true,
		CreatedAt:  now,
		LastUpdate: now,
	}
}

// LevelForExperience derives the level for a given experience total.
func LevelForExperience(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// HasAchievement reports whether the pet already unlocked the given id.
func (p *PetStats) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out read-only snapshots.
func (p *PetStats) Clone() *PetStats {
	cp := *p
	cp.Achievements = append([]string(nil), p.Achievements...)
	return &cp
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
