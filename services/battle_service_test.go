package services

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"pet-game-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T, dst ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(dst...))
	return db
}

func newTestBattleService(t *testing.T) (*BattleService, *StatService) {
	db := newTestDB(t, &models.BattleQueueEntry{}, &models.BattleRecord{})
	stats, _, _ := newTestStatService()
	return NewBattleService(db, stats, nil), stats
}

func queueEntry(walletID string, level int, joinedAt int64) models.BattleQueueEntry {
	return models.BattleQueueEntry{
		ID:       fmt.Sprintf("entry-%s-%d", walletID, joinedAt),
		WalletID: walletID,
		PetID:    "pet-" + walletID,
		PetName:  "Pet " + walletID,
		Level:    level,
		Species:  "Digital Pet",
		Rarity:   "Common",
		JoinedAt: joinedAt,
	}
}

func TestWinProbabilityClamped(t *testing.T) {
	assert.Equal(t, 0.5, WinProbability(1, 1))
	assert.Equal(t, 0.5, WinProbability(7, 7))
	assert.InDelta(t, 0.6, WinProbability(3, 2), 1e-9)

	// Extreme mismatches hit the floor / ceiling.
	assert.Equal(t, WinProbabilityFloor, WinProbability(1, 20))
	assert.Equal(t, WinProbabilityCeil, WinProbability(20, 1))

	// Broken levels are coerced to 1 before weighting.
	assert.Equal(t, 0.5, WinProbability(0, 0))
	assert.Equal(t, 0.5, WinProbability(-3, 1))
}

func TestResolveOutcome(t *testing.T) {
	e1 := queueEntry("0xaaa", 3, 1)
	e2 := queueEntry("0xbbb", 2, 2)

	p1, p2 := ResolveOutcome(e1, e2, 0.59)
	assert.True(t, p1.IsWinner)
	assert.False(t, p2.IsWinner)
	assert.InDelta(t, 0.6, p1.WinProbability, 1e-9)
	assert.InDelta(t, 0.4, p2.WinProbability, 1e-9)

	p1, p2 = ResolveOutcome(e1, e2, 0.61)
	assert.False(t, p1.IsWinner)
	assert.True(t, p2.IsWinner)
}

func TestUnderdogWinRateConvergesToFloor(t *testing.T) {
	e1 := queueEntry("0xaaa", 1, 1)
	e2 := queueEntry("0xbbb", 20, 2)
	rng := rand.New(rand.NewSource(42))

	wins := 0
	for i := 0; i < 1000; i++ {
		p1, _ := ResolveOutcome(e1, e2, rng.Float64())
		if p1.IsWinner {
			wins++
		}
	}
	// Expected 100 of 1000 at the 10% floor.
	assert.Greater(t, wins, 60)
	assert.Less(t, wins, 140)
}

func TestJoinQueueQueuesFirstEntrant(t *testing.T) {
	battles, _ := newTestBattleService(t)

	res, err := battles.JoinQueue("0xaaa", "pet-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Searching)
	assert.Equal(t, 1, res.QueuePosition)
	assert.Nil(t, res.Battle)

	// Re-joining from the same wallet is rejected.
	res, err = battles.JoinQueue("0xaaa", "pet-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Already in battle queue")
}

func TestJoinQueueResolvesAgainstWaitingOpponent(t *testing.T) {
	withFixedRand(t, 0.2) // below 0.5: the joiner wins
	battles, _ := newTestBattleService(t)

	res, err := battles.JoinQueue("0xaaa", "pet-1")
	require.NoError(t, err)
	require.True(t, res.Searching)

	res, err = battles.JoinQueue("0xbbb", "pet-2")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Searching)
	require.NotNil(t, res.Battle)
	assert.True(t, res.IsWinner)
	assert.Equal(t, "0xbbb", res.Battle.WinnerWalletID)
	assert.Contains(t, res.Message, "Victory")

	// Queue drained, both wallets got a history record.
	var count int64
	battles.DB.Model(&models.BattleQueueEntry{}).Count(&count)
	assert.Zero(t, count)
	for _, wallet := range []string{"0xaaa", "0xbbb"} {
		history, err := battles.GetHistory(wallet)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "0xbbb", history[0].WinnerWalletID)
		assert.Equal(t, models.BattleStake, history[0].Stake)
		assert.Equal(t, models.BattleReward, history[0].Reward)
	}
}

func TestJoinQueueRejectsDeadPetAndMissingWallet(t *testing.T) {
	battles, stats := newTestBattleService(t)
	stats.ApplyUpdate("0xaaa", "pet-1", map[string]any{"health": 0.0})

	res, err := battles.JoinQueue("0xaaa", "pet-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "revived")

	res, err = battles.JoinQueue("", "pet-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "wallet")
}

func TestLeaveQueue(t *testing.T) {
	battles, _ := newTestBattleService(t)

	_, err := battles.JoinQueue("0xaaa", "pet-1")
	require.NoError(t, err)
	require.NoError(t, battles.LeaveQueue("0xaaa"))

	var count int64
	battles.DB.Model(&models.BattleQueueEntry{}).Count(&count)
	assert.Zero(t, count)

	// Leaving when not queued is a no-op.
	require.NoError(t, battles.LeaveQueue("0xaaa"))
}

func TestMatchOncePairsOldestEntries(t *testing.T) {
	battles, _ := newTestBattleService(t)

	matched, err := battles.MatchOnce()
	require.NoError(t, err)
	assert.False(t, matched)

	for _, e := range []models.BattleQueueEntry{
		queueEntry("0xaaa", 2, 100),
		queueEntry("0xbbb", 3, 200),
		queueEntry("0xccc", 1, 300),
	} {
		require.NoError(t, battles.DB.Create(&e).Error)
	}

	matched, err = battles.MatchOnce()
	require.NoError(t, err)
	assert.True(t, matched)

	// The two oldest were paired, the third still waits.
	var remaining []models.BattleQueueEntry
	require.NoError(t, battles.DB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "0xccc", remaining[0].WalletID)

	for _, wallet := range []string{"0xaaa", "0xbbb"} {
		history, err := battles.GetHistory(wallet)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	}
}

func TestHistoryPrunedToCap(t *testing.T) {
	battles, _ := newTestBattleService(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < models.MaxBattleHistory+5; i++ {
		withFixedTime(t, base.Add(time.Duration(i)*time.Minute))
		e1 := queueEntry("0xaaa", 2, int64(i))
		e2 := queueEntry("0xbbb", 2, int64(i))
		_, err := battles.Resolve(e1, e2)
		require.NoError(t, err)
	}

	history, err := battles.GetHistory("0xaaa")
	require.NoError(t, err)
	require.Len(t, history, models.MaxBattleHistory)

	// Newest first, and the five oldest battles were dropped.
	oldestKept := history[len(history)-1].Timestamp
	assert.Equal(t, base.Add(5*time.Minute).UnixMilli(), oldestKept)
	assert.Equal(t, base.Add(54*time.Minute).UnixMilli(), history[0].Timestamp)
}

func TestAggregateBattleStats(t *testing.T) {
	records := []models.BattleRecord{
		{WinnerWalletID: "0xaaa", Stake: models.BattleStake, Reward: models.BattleReward},
		{WinnerWalletID: "0xbbb", Stake: models.BattleStake, Reward: models.BattleReward},
		{WinnerWalletID: "0xaaa", Stake: models.BattleStake, Reward: models.BattleReward},
	}

	stats := AggregateBattleStats(records, "0xaaa")
	assert.Equal(t, 3, stats.TotalBattles)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 66.7, stats.WinRate)
	assert.Equal(t, 0.0002, stats.NetStake) // 2·reward − 3·stake

	empty := AggregateBattleStats(nil, "0xaaa")
	assert.Zero(t, empty.TotalBattles)
	assert.Zero(t, empty.WinRate)
}

func TestGetBattleStatsReadsHistory(t *testing.T) {
	withFixedRand(t, 0.2)
	battles, _ := newTestBattleService(t)

	_, err := battles.Resolve(queueEntry("0xaaa", 1, 1), queueEntry("0xbbb", 1, 2))
	require.NoError(t, err)

	stats, err := battles.GetBattleStats("0xaaa")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalBattles)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 100.0, stats.WinRate)
}
