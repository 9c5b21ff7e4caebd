package services

import (
	"fmt"
	"math"

	"pet-game-system/models"
)

// Experience awarded per action.
const (
	FeedXP  = 5
	PlayXP  = 8
	SleepXP = 3
	PetXP   = 4
)

// PlayEnergyFloor: playing needs at least this much energy.
const PlayEnergyFloor = 15

// ActionResult is returned to the presentation layer for every action.
// Rejections are results, never errors.
type ActionResult struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	LevelUp      int              `json:"level_up,omitempty"` // new level, 0 when none
	Achievements []Achievement    `json:"achievements,omitempty"`
	Stats        *models.PetStats `json:"stats,omitempty"`
}

// ActionService validates and applies discrete player actions against
// the stat store.
type ActionService struct {
	stats *StatService
}

func NewActionService(stats *StatService) *ActionService {
	return &ActionService{stats: stats}
}

// Feed restores hunger and a little happiness.
func (a *ActionService) Feed(walletID, petID string) ActionResult {
	var res ActionResult
	snap := a.stats.Update(walletID, petID, func(p *models.PetStats) map[string]any {
		if !p.IsAlive {
			res = rejected("Your pet needs to be revived first!")
			return nil
		}
		hungerGain := 25 + RandFloat64()*15
		happyGain := 10 + RandFloat64()*10
		updates := map[string]any{
			"hunger":     p.Hunger + hungerGain,
			"happiness":  p.Happiness + happyGain,
			"experience": p.Experience + FeedXP,
		}
		res = a.resolve(p, updates,
			fmt.Sprintf("Nom nom! Hunger +%d ✨", round(hungerGain)),
			"Yum! Level up to %d! 🌟")
		return updates
	})
	res.Stats = snap
	return res
}

// Play boosts happiness at the cost of energy.
func (a *ActionService) Play(walletID, petID string) ActionResult {
	var res ActionResult
	snap := a.stats.Update(walletID, petID, func(p *models.PetStats) map[string]any {
		if !p.IsAlive {
			res = rejected("Your pet needs to be revived first!")
			return nil
		}
		if p.Energy < PlayEnergyFloor {
			res = rejected("Your pet is too tired to play! 😴")
			return nil
		}
		happyGain := 20 + RandFloat64()*25
		energyCost := 10 + RandFloat64()*15
		updates := map[string]any{
			"happiness":  p.Happiness + happyGain,
			"energy":     p.Energy - energyCost,
			"experience": p.Experience + PlayXP,
		}
		res = a.resolve(p, updates,
			fmt.Sprintf("Wheee! Happiness +%d 🎾", round(happyGain)),
			"So much fun! Level up to %d! 🌟")
		return updates
	})
	res.Stats = snap
	return res
}

// Sleep restores energy and some health.
func (a *ActionService) Sleep(walletID, petID string) ActionResult {
	var res ActionResult
	snap := a.stats.Update(walletID, petID, func(p *models.PetStats) map[string]any {
		if !p.IsAlive {
			res = rejected("Your pet needs to be revived first!")
			return nil
		}
		energyGain := 30 + RandFloat64()*20
		healthGain := 5 + RandFloat64()*5
		updates := map[string]any{
			"energy":     p.Energy + energyGain,
			"health":     p.Health + healthGain,
			"experience": p.Experience + SleepXP,
		}
		res = a.resolve(p, updates,
			fmt.Sprintf("Zzz... Energy +%d 💤", round(energyGain)),
			"Sweet dreams! Level up to %d! 🌟")
		return updates
	})
	res.Stats = snap
	return res
}

// Pet gives affection: happiness and a small health bump.
func (a *ActionService) Pet(walletID, petID string) ActionResult {
	var res ActionResult
	snap := a.stats.Update(walletID, petID, func(p *models.PetStats) map[string]any {
		if !p.IsAlive {
			res = rejected("Your pet needs to be revived first!")
			return nil
		}
		happyGain := 15 + RandFloat64()*10
		healthGain := 3 + RandFloat64()*3
		updates := map[string]any{
			"happiness":  p.Happiness + happyGain,
			"health":     p.Health + healthGain,
			"experience": p.Experience + PetXP,
		}
		res = a.resolve(p, updates,
			fmt.Sprintf("*purrs* Happiness +%d ❤️", round(happyGain)),
			"Such love! Level up to %d! 🌟")
		return updates
	})
	res.Stats = snap
	return res
}

// Revive brings a dead pet back with fixed recovery values.
func (a *ActionService) Revive(walletID, petID string) ActionResult {
	var res ActionResult
	snap := a.stats.Update(walletID, petID, func(p *models.PetStats) map[string]any {
		if p.IsAlive {
			res = rejected("Your pet is alive and well!")
			return nil
		}
		res = ActionResult{Success: true, Message: "Your pet has been revived! 🌟"}
		return map[string]any{
			"is_alive":  true,
			"health":    50.0,
			"hunger":    30.0,
			"energy":    40.0,
			"happiness": 25.0,
		}
	})
	res.Stats = snap
	return res
}

// Kill puts the pet down immediately. Debug/testing surface kept from
// the original stats debugger.
func (a *ActionService) Kill(walletID, petID string) ActionResult {
	var res ActionResult
	snap := a.stats.Update(walletID, petID, func(p *models.PetStats) map[string]any {
		if !p.IsAlive {
			res = rejected("Your pet is already gone...")
			return nil
		}
		res = ActionResult{Success: true, Message: "Your pet has passed away. 💀"}
		return map[string]any{
			"health":             0.0,
			"is_alive":           false,
			"death_cause":        "killed",
			"total_interactions": p.TotalInteractions + 1,
		}
	})
	res.Stats = snap
	return res
}

// PlayMiniGame awards performance-scaled experience and happiness.
func (a *ActionService) PlayMiniGame(walletID, petID string) ActionResult {
	var res ActionResult
	snap := a.stats.Update(walletID, petID, func(p *models.PetStats) map[string]any {
		if !p.IsAlive {
			res = rejected("Your pet needs to be revived first!")
			return nil
		}
		performance := RandFloat64()
		xpGain := int64(math.Floor(15 + performance*15))
		happyGain := math.Floor(10 + performance*15)
		updates := map[string]any{
			"happiness":  p.Happiness + happyGain,
			"experience": p.Experience + xpGain,
		}
		res = a.resolve(p, updates,
			fmt.Sprintf("Mini-game complete! +%d XP! 🎮", xpGain),
			"Mini-game champion! Level up to %d! 🌟")
		return updates
	})
	res.Stats = snap
	return res
}

// Reset discards all progress and starts the pet over.
func (a *ActionService) Reset(walletID, petID string) ActionResult {
	snap := a.stats.Reset(walletID, petID)
	return ActionResult{Success: true, Message: "A fresh start! 🥚", Stats: snap}
}

// resolve builds the success result for a care action: level-up message
// supersedes the stat-delta message, and newly unlocked achievements
// are folded into the update.
func (a *ActionService) resolve(p *models.PetStats, updates map[string]any, message, levelUpFormat string) ActionResult {
	res := ActionResult{Success: true, Message: message}

	// Simulate the apply on a copy to detect level-ups and unlocks.
	post := p.Clone()
	applyFields(post, updates, true)
	if post.Level > p.Level {
		res.LevelUp = post.Level
		res.Message = fmt.Sprintf(levelUpFormat, post.Level)
	}
	if unlocked := CheckAchievements(post); len(unlocked) > 0 {
		res.Achievements = unlocked
		updates["achievements"] = post.Achievements
	}
	return res
}

func rejected(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}

func round(v float64) int {
	return int(math.Round(v))
}
