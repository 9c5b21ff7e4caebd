package services

import (
	"log"
	"time"

	"pet-game-system/models"

	"github.com/go-co-op/gocron/v2"
)

// Canonical decay table: points per elapsed minute, applied on a fixed
// 30-second tick. A single catch-up jump is capped at 30 minutes.
const (
	DecayTickInterval = 30 * time.Second

	HungerDecayPerMinute    = 0.8
	EnergyDecayPerMinute    = 0.6
	HappinessDecayPerMinute = 0.4

	MaxCatchUpMinutes = 30.0

	// Flat health loss per tick while starving or exhausted.
	StarvationHealthPenalty = 5.0
)

// DecayService applies time-proportional decay to every tracked pet
// and evaluates death conditions. It performs no persistence calls of
// its own — everything routes through the stat store.
type DecayService struct {
	stats *StatService
	sched gocron.Scheduler
}

func NewDecayService(stats *StatService) *DecayService {
	return &DecayService{stats: stats}
}

// StartDecayScheduler runs the decay job at a fixed cadence until Stop.
func (d *DecayService) StartDecayScheduler() {
	sched, _ := gocron.NewScheduler()
	d.sched = sched
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(DecayTickInterval),
		gocron.NewTask(d.Tick),
	)
}

func (d *DecayService) Stop() {
	if d.sched != nil {
		_ = d.sched.Shutdown()
	}
}

// Tick decays every tracked pet once.
func (d *DecayService) Tick() {
	now := TimeNow()
	for _, key := range d.stats.ActivePets() {
		d.DecayPet(key, now)
	}
}

// DecayPet applies one decay step to a single pet. Dead pets are
// skipped entirely.
func (d *DecayService) DecayPet(key PetKey, now time.Time) *models.PetStats {
	var died bool
	snap := d.stats.SystemUpdate(key.WalletID, key.PetID, func(p *models.PetStats) map[string]any {
		if !p.IsAlive {
			return nil
		}

		minutes := DecayTickInterval.Minutes()
		if p.LastUpdate > 0 {
			minutes = now.Sub(time.UnixMilli(p.LastUpdate)).Minutes()
		}
		if minutes <= 0 {
			return nil
		}
		if minutes > MaxCatchUpMinutes {
			minutes = MaxCatchUpMinutes
		}

		hunger := p.Hunger - minutes*HungerDecayPerMinute
		energy := p.Energy - minutes*EnergyDecayPerMinute
		happiness := p.Happiness - minutes*HappinessDecayPerMinute

		updates := map[string]any{
			"hunger":    hunger,
			"energy":    energy,
			"happiness": happiness,
		}

		// Starving or exhausted pets lose health until they die.
		if hunger <= models.GaugeMin || energy <= models.GaugeMin {
			health := p.Health - StarvationHealthPenalty
			updates["health"] = health
			if health <= models.GaugeMin {
				died = true
			}
		}
		return updates
	})

	if died {
		log.Printf("💀 [Decay] Pet %s/%s died of neglect", key.WalletID, key.PetID)
	}
	return snap
}
