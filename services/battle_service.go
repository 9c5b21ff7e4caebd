package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"pet-game-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Win probability is clamped to bound extreme level mismatches.
const (
	WinProbabilityFloor = 0.10
	WinProbabilityCeil  = 0.90
)

// BattleJoinResult reports the outcome of a queue join: either an
// immediately resolved battle or a searching state.
type BattleJoinResult struct {
	Success       bool                 `json:"success"`
	Message       string               `json:"message"`
	Searching     bool                 `json:"searching"`
	QueuePosition int                  `json:"queue_position,omitempty"`
	Battle        *models.BattleRecord `json:"battle,omitempty"`
	IsWinner      bool                 `json:"is_winner,omitempty"`
}

// BattleStats aggregates a wallet's battle history.
type BattleStats struct {
	TotalBattles int     `json:"total_battles"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"` // percent, one decimal
	NetStake     float64 `json:"net_stake"`
}

// BattleService pairs waiting challengers, resolves battles with a
// level-weighted coin flip and keeps per-wallet history. It reads pet
// level and alive state but never mutates pet stats — battles are a
// purely economic side game.
type BattleService struct {
	DB       *gorm.DB
	stats    *StatService
	registry *NFTRegistry // optional, for queue entry cosmetics
}

func NewBattleService(db *gorm.DB, stats *StatService, registry *NFTRegistry) *BattleService {
	return &BattleService{DB: db, stats: stats, registry: registry}
}

// WinProbability computes the level-weighted win chance for side a,
// clamped to [0.10, 0.90].
func WinProbability(levelA, levelB int) float64 {
	if levelA < 1 {
		levelA = 1
	}
	if levelB < 1 {
		levelB = 1
	}
	p := float64(levelA) / float64(levelA+levelB)
	return math.Max(WinProbabilityFloor, math.Min(WinProbabilityCeil, p))
}

// ResolveOutcome decides a battle from a uniform roll in [0,1): side 1
// wins when the roll falls inside its probability interval.
func ResolveOutcome(e1, e2 models.BattleQueueEntry, roll float64) (p1, p2 models.BattlePlayer) {
	prob1 := WinProbability(e1.Level, e2.Level)
	p1 = models.BattlePlayer{
		WalletID: e1.WalletID, PetID: e1.PetID, PetName: e1.PetName,
		Level: e1.Level, Species: e1.Species, Rarity: e1.Rarity,
		IsWinner: roll < prob1, WinProbability: prob1,
	}
	p2 = models.BattlePlayer{
		WalletID: e2.WalletID, PetID: e2.PetID, PetName: e2.PetName,
		Level: e2.Level, Species: e2.Species, Rarity: e2.Rarity,
		IsWinner: !(roll < prob1), WinProbability: 1 - prob1,
	}
	return p1, p2
}

// JoinQueue enters the wallet's pet into matchmaking. If an opposing
// entry is already waiting the battle resolves immediately; otherwise
// the entry queues and the matchmaker re-checks periodically.
func (s *BattleService) JoinQueue(walletID, petID string) (*BattleJoinResult, error) {
	if walletID == "" {
		return &BattleJoinResult{Success: false, Message: "Need a connected wallet to battle"}, nil
	}

	pet := s.stats.Get(walletID, petID)
	if !pet.IsAlive {
		return &BattleJoinResult{Success: false, Message: "Your pet needs to be revived before battling!"}, nil
	}

	entry := models.BattleQueueEntry{
		ID:       uuid.NewString(),
		WalletID: walletID,
		PetID:    petID,
		PetName:  "Unknown Pet",
		Level:    pet.Level,
		Species:  "Digital Pet",
		Rarity:   "Common",
		JoinedAt: TimeNow().UnixMilli(),
	}
	if s.registry != nil {
		if nft, err := s.registry.Get(petID); err == nil {
			entry.PetName = nft.Name
			entry.Species = nft.Species
			entry.Rarity = nft.Rarity
		}
	}

	var existing models.BattleQueueEntry
	err := s.DB.First(&existing, "wallet_id = ?", walletID).Error
	if err == nil {
		return &BattleJoinResult{Success: false, Message: "Already in battle queue"}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Opposing entry already waiting: skip Searching, resolve now.
	var opponent models.BattleQueueEntry
	err = s.DB.Order("joined_at ASC").First(&opponent, "wallet_id <> ?", walletID).Error
	if err == nil {
		if err := s.DB.Delete(&models.BattleQueueEntry{}, "id = ?", opponent.ID).Error; err != nil {
			return nil, err
		}
		record, err := s.Resolve(entry, opponent)
		if err != nil {
			return nil, err
		}
		res := &BattleJoinResult{
			Success:  true,
			Battle:   record,
			IsWinner: record.WinnerWalletID == walletID,
		}
		if res.IsWinner {
			res.Message = fmt.Sprintf("🏆 Victory! You won %v ETH!", models.BattleReward)
		} else {
			res.Message = fmt.Sprintf("💀 Defeat! You lost %v ETH.", models.BattleStake)
		}
		return res, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	var position int64
	s.DB.Model(&models.BattleQueueEntry{}).Count(&position)
	log.Printf("⏳ %s joined battle queue (level %d)", walletID, entry.Level)
	return &BattleJoinResult{
		Success:       true,
		Searching:     true,
		Message:       "Joined battle queue! Searching for opponents...",
		QueuePosition: int(position),
	}, nil
}

// LeaveQueue removes the wallet's entry. Valid in any state.
func (s *BattleService) LeaveQueue(walletID string) error {
	if err := s.DB.Delete(&models.BattleQueueEntry{}, "wallet_id = ?", walletID).Error; err != nil {
		return err
	}
	log.Printf("❌ %s left battle queue", walletID)
	return nil
}

// MatchOnce pairs the two oldest entries from different wallets and
// resolves their battle. Returns false when no pair is waiting.
func (s *BattleService) MatchOnce() (bool, error) {
	var entries []models.BattleQueueEntry
	if err := s.DB.Order("joined_at ASC").Limit(64).Find(&entries).Error; err != nil {
		return false, err
	}
	if len(entries) < 2 {
		return false, nil
	}

	first := entries[0]
	for _, second := range entries[1:] {
		if second.WalletID == first.WalletID {
			continue
		}
		if err := s.DB.Delete(&models.BattleQueueEntry{}, "id IN ?", []string{first.ID, second.ID}).Error; err != nil {
			return false, err
		}
		if _, err := s.Resolve(first, second); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Resolve runs the weighted coin flip and records the battle in both
// wallets' histories, pruning each to the most recent entries.
func (s *BattleService) Resolve(e1, e2 models.BattleQueueEntry) (*models.BattleRecord, error) {
	roll := RandFloat64()
	p1, p2 := ResolveOutcome(e1, e2, roll)

	winner := p1
	if p2.IsWinner {
		winner = p2
	}

	p1JSON, _ := json.Marshal(p1)
	p2JSON, _ := json.Marshal(p2)

	battleID := uuid.NewString()
	now := TimeNow().UnixMilli()

	var ownRecord *models.BattleRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, walletID := range []string{p1.WalletID, p2.WalletID} {
			record := models.BattleRecord{
				ID:             uuid.NewString(),
				WalletID:       walletID,
				BattleID:       battleID,
				Timestamp:      now,
				Player1JSON:    string(p1JSON),
				Player2JSON:    string(p2JSON),
				WinnerWalletID: winner.WalletID,
				Stake:          models.BattleStake,
				Reward:         models.BattleReward,
				Roll:           roll,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			if err := pruneHistory(tx, walletID); err != nil {
				return err
			}
			if walletID == e1.WalletID {
				ownRecord = &record
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record battle: %w", err)
	}

	log.Printf("⚔️ Battle %s: %s (Lv.%d, %.1f%%) vs %s (Lv.%d, %.1f%%) → %s wins",
		battleID, p1.PetName, p1.Level, p1.WinProbability*100,
		p2.PetName, p2.Level, p2.WinProbability*100, winner.PetName)

	return ownRecord, nil
}

// pruneHistory keeps only the newest MaxBattleHistory records per wallet.
func pruneHistory(tx *gorm.DB, walletID string) error {
	var stale []string
	err := tx.Model(&models.BattleRecord{}).
		Where("wallet_id = ?", walletID).
		Order("timestamp DESC").
		Offset(models.MaxBattleHistory).
		Limit(1000).
		Pluck("id", &stale).Error
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	return tx.Unscoped().Delete(&models.BattleRecord{}, "id IN ?", stale).Error
}

// GetHistory returns the wallet's battle history, newest first.
func (s *BattleService) GetHistory(walletID string) ([]models.BattleRecord, error) {
	var records []models.BattleRecord
	err := s.DB.Where("wallet_id = ?", walletID).
		Order("timestamp DESC").
		Limit(models.MaxBattleHistory).
		Find(&records).Error
	return records, err
}

// GetBattleStats aggregates win/loss counts and net stake. Pure read.
func (s *BattleService) GetBattleStats(walletID string) (*BattleStats, error) {
	records, err := s.GetHistory(walletID)
	if err != nil {
		return nil, err
	}
	return AggregateBattleStats(records, walletID), nil
}

// AggregateBattleStats folds a history slice into summary stats.
func AggregateBattleStats(records []models.BattleRecord, walletID string) *BattleStats {
	stats := &BattleStats{TotalBattles: len(records)}
	for _, r := range records {
		if r.WinnerWalletID == walletID {
			stats.Wins++
		} else {
			stats.Losses++
		}
	}
	if stats.TotalBattles > 0 {
		stats.WinRate = math.Round(float64(stats.Wins)/float64(stats.TotalBattles)*1000) / 10
	}
	// Both sides pay the stake; the winner takes the pot.
	net := float64(stats.Wins)*models.BattleReward - float64(stats.TotalBattles)*models.BattleStake
	stats.NetStake = math.Round(net*10000) / 10000
	return stats
}
