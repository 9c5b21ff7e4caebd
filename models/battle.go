package models

import "encoding/json"

// Battle economics: every battle charges both sides the fixed stake,
// the winner takes the combined pot.
const (
	BattleStake  = 0.0002
	BattleReward = 0.0004
)

// MaxBattleHistory caps per-wallet history; oldest records are pruned first.
const MaxBattleHistory = 50

// BattleQueueEntry is an ephemeral row in the shared matchmaking queue,
// removed once matched or when the owner leaves.
type BattleQueueEntry struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	WalletID string `gorm:"uniqueIndex;not null" json:"wallet_id"`
	PetID    string `gorm:"not null" json:"pet_id"`
	PetName  string `json:"pet_name"`
	Level    int    `gorm:"default:1" json:"level"`
	Species  string `json:"species"`
	Rarity   string `json:"rarity"`
	JoinedAt int64  `gorm:"not null" json:"joined_at"` // epoch millis

	Timestamps
}

// BattlePlayer is one side of a resolved battle, embedded as JSON in
// the record: the queue entry plus the outcome for that side.
type BattlePlayer struct {
	WalletID       string  `json:"wallet_id"`
	PetID          string  `json:"pet_id"`
	PetName        string  `json:"pet_name"`
	Level          int     `json:"level"`
	Species        string  `json:"species"`
	Rarity         string  `json:"rarity"`
	IsWinner       bool    `json:"is_winner"`
	WinProbability float64 `json:"win_probability"`
}

// BattleRecord is one wallet's immutable view of a resolved battle.
// Each battle writes one row per participant (same BattleID), so
// per-wallet history queries and pruning stay trivial.
type BattleRecord struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	WalletID string `gorm:"index;not null" json:"wallet_id"` // history owner
	BattleID string `gorm:"index;not null" json:"battle_id"` // shared across both rows

	Timestamp int64 `gorm:"not null" json:"timestamp"` // epoch millis

	Player1JSON string `gorm:"type:text;not null" json:"-"`
	Player2JSON string `gorm:"type:text;not null" json:"-"`

	WinnerWalletID string  `gorm:"not null" json:"winner_wallet_id"`
	Stake          float64 `json:"stake"`
	Reward         float64 `json:"reward"`
	Roll           float64 `json:"roll"`

	Timestamps
}

func (r *BattleRecord) Player1() (BattlePlayer, error) {
	var p BattlePlayer
	err := json.Unmarshal([]byte(r.Player1JSON), &p)
	return p, err
}

func (r *BattleRecord) Player2() (BattlePlayer, error) {
	var p BattlePlayer
	err := json.Unmarshal([]byte(r.Player2JSON), &p)
	return p, err
}
