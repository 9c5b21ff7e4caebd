// handlers/battle_routes.go
package handlers

import (
	"log"

	"pet-game-system/middleware"
	"pet-game-system/models"
	"pet-game-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBattleRoutes(app *fiber.App, battles *services.BattleService) {
	battle := app.Group("/battle")

	battle.Post("/queue/join", func(c *fiber.Ctx) error {
		var req struct {
			PetID string `json:"pet_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.PetID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pet_id required"})
		}

		result, err := battles.JoinQueue(middleware.WalletID(c), req.PetID)
		if err != nil {
			log.Printf("DB Error joining battle queue: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join queue"})
		}
		return c.JSON(result)
	})

	battle.Post("/queue/leave", func(c *fiber.Ctx) error {
		if err := battles.LeaveQueue(middleware.WalletID(c)); err != nil {
			log.Printf("DB Error leaving battle queue: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to leave queue"})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	battle.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := battles.GetBattleStats(middleware.WalletID(c))
		if err != nil {
			log.Printf("DB Error fetching battle stats: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch battle stats"})
		}
		return c.JSON(stats)
	})

	battle.Get("/history", func(c *fiber.Ctx) error {
		records, err := battles.GetHistory(middleware.WalletID(c))
		if err != nil {
			log.Printf("DB Error fetching battle history: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch history"})
		}

		type historyEntry struct {
			models.BattleRecord
			Player1 models.BattlePlayer `json:"player1"`
			Player2 models.BattlePlayer `json:"player2"`
		}
		out := make([]historyEntry, 0, len(records))
		for _, r := range records {
			p1, _ := r.Player1()
			p2, _ := r.Player2()
			out = append(out, historyEntry{BattleRecord: r, Player1: p1, Player2: p2})
		}
		return c.JSON(fiber.Map{"history": out, "total": len(out)})
	})
}
