package services

import "pet-game-system/models"

// Pure derivations from current stats. Nothing here mutates state —
// presentation and appearance logic read these, nothing else.

// Mood buckets by happiness, with death overriding everything.
const (
	MoodDead      = "dead"
	MoodEcstatic  = "ecstatic"
	MoodHappy     = "happy"
	MoodContent   = "content"
	MoodSad       = "sad"
	MoodDepressed = "depressed"
)

// Care priorities, first matching wins.
const (
	CareRevive = "revive"
	CareHealth = "health"
	CareFood   = "food"
	CareSleep  = "sleep"
	CarePlay   = "play"
	CareNone   = "none"
)

// Mood classifies the pet's mood from happiness.
func Mood(p *models.PetStats) string {
	switch {
	case !p.IsAlive:
		return MoodDead
	case p.Happiness > 80:
		return MoodEcstatic
	case p.Happiness > 60:
		return MoodHappy
	case p.Happiness > 40:
		return MoodContent
	case p.Happiness > 20:
		return MoodSad
	default:
		return MoodDepressed
	}
}

// CarePriority returns the most urgent need.
func CarePriority(p *models.PetStats) string {
	switch {
	case !p.IsAlive:
		return CareRevive
	case p.Health < 20:
		return CareHealth
	case p.Hunger < 20:
		return CareFood
	case p.Energy < 20:
		return CareSleep
	case p.Happiness < 20:
		return CarePlay
	default:
		return CareNone
	}
}

// lifeStageThresholds: minimum level for each stage, walked from the
// top like rank determination. Monotone non-decreasing in level.
var lifeStageThresholds = []struct {
	MinLevel int
	Stage    string
}{
	{20, "elder"},
	{15, "adult"},
	{10, "teen"},
	{5, "child"},
	{1, "baby"},
}

// LifeStage derives the coarse progression tier from level.
func LifeStage(level int) string {
	for _, t := range lifeStageThresholds {
		if level >= t.MinLevel {
			return t.Stage
		}
	}
	return "baby"
}

// EvolutionStage maps level to evolution stage 1–5 on the same
// boundaries as life stages.
func EvolutionStage(level int) int {
	switch {
	case level >= 20:
		return 5
	case level >= 15:
		return 4
	case level >= 10:
		return 3
	case level >= 5:
		return 2
	default:
		return 1
	}
}

// Achievement is a one-time unlock reported alongside action results.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var achievementTable = []struct {
	ID    string
	Title string
	Desc  string
	Check func(*models.PetStats) bool
}{
	{"space_explorer", "🚀 Space Explorer", "Reached level 5!",
		func(p *models.PetStats) bool { return p.Level >= 5 }},
	{"cosmic_master", "🌟 Cosmic Master", "Reached level 10!",
		func(p *models.PetStats) bool { return p.Level >= 10 }},
	{"devoted_caretaker", "❤️ Devoted Caretaker", "100 interactions!",
		func(p *models.PetStats) bool { return p.TotalInteractions >= 100 }},
	{"pure_joy", "😄 Pure Joy", "Maximum happiness!",
		func(p *models.PetStats) bool { return p.Happiness >= 95 }},
}

// CheckAchievements returns newly unlocked achievements and appends
// their ids to the pet's unlocked list.
func CheckAchievements(p *models.PetStats) []Achievement {
	var unlocked []Achievement
	for _, a := range achievementTable {
		if p.HasAchievement(a.ID) || !a.Check(p) {
			continue
		}
		p.Achievements = append(p.Achievements, a.ID)
		unlocked = append(unlocked, Achievement{ID: a.ID, Title: a.Title, Description: a.Desc})
	}
	return unlocked
}
