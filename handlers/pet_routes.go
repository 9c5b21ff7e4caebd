// handlers/pet_routes.go
package handlers

import (
	"pet-game-system/middleware"
	"pet-game-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPetRoutes(app *fiber.App, actions *services.ActionService, stats *services.StatService, exports *services.ExportService, ai *services.AIClient) {
	pet := app.Group("/pet/:petId")

	// Care actions. Every handler returns a structured result — a
	// rejected action is a 200 with success=false, not an error.
	actionTable := map[string]func(walletID, petID string) services.ActionResult{
		"feed":     actions.Feed,
		"play":     actions.Play,
		"sleep":    actions.Sleep,
		"pet":      actions.Pet,
		"revive":   actions.Revive,
		"kill":     actions.Kill,
		"minigame": actions.PlayMiniGame,
		"reset":    actions.Reset,
	}
	for name, fn := range actionTable {
		handler := fn
		pet.Post("/"+name, func(c *fiber.Ctx) error {
			result := handler(middleware.WalletID(c), c.Params("petId"))
			return c.Status(fiber.StatusOK).JSON(result)
		})
	}

	// Read-only snapshot plus all derived classifications.
	pet.Get("/stats", func(c *fiber.Ctx) error {
		p := stats.Get(middleware.WalletID(c), c.Params("petId"))
		return c.JSON(fiber.Map{
			"stats":           p,
			"mood":            services.Mood(p),
			"care_priority":   services.CarePriority(p),
			"life_stage":      services.LifeStage(p.Level),
			"evolution_stage": services.EvolutionStage(p.Level),
		})
	})

	pet.Get("/export", func(c *fiber.Ctx) error {
		walletID := middleware.WalletID(c)
		petID := c.Params("petId")
		export := exports.Export(walletID, petID)

		resp := fiber.Map{"export": export}
		if c.QueryBool("backup") {
			url, err := exports.ExportToR2(walletID, petID, export)
			if err != nil {
				// Backup is best-effort; the caller still gets the JSON.
				resp["backup_error"] = err.Error()
			} else {
				resp["backup_url"] = url
			}
		}
		return c.JSON(resp)
	})

	pet.Post("/import", func(c *fiber.Ctx) error {
		snap, err := exports.Import(middleware.WalletID(c), c.Params("petId"), c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "stats": snap})
	})

	// Flavor text from the AI collaborator. Purely cosmetic: the reply
	// reads stats but can never change them.
	pet.Post("/chat", func(c *fiber.Ctx) error {
		var req struct {
			Message string `json:"message"`
			Action  string `json:"action"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		p := stats.Get(middleware.WalletID(c), c.Params("petId"))
		return c.JSON(fiber.Map{
			"reply": ai.GenerateFlavorText(req.Message, req.Action, p),
			"mood":  services.Mood(p),
		})
	})
}
