package workers

import (
	"context"
	"log"
	"time"

	"pet-game-system/services"
)

// PollBattleQueue re-checks the matchmaking queue at a fixed interval
// while entries are waiting, pairing any two challengers from
// different wallets. Stops when the context is cancelled.
func PollBattleQueue(ctx context.Context, battles *services.BattleService, pollInterval time.Duration) {
	log.Println("Starting battle queue polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Battle queue polling stopped.")
			return
		case <-ticker.C:
			// Drain every waiting pair this tick.
			for {
				matched, err := battles.MatchOnce()
				if err != nil {
					log.Printf("❌ Error matching battle queue: %v", err)
					break
				}
				if !matched {
					break
				}
				log.Println("⚔️ Auto-match found! Battle resolved.")
			}
		}
	}
}
