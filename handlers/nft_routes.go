// handlers/nft_routes.go
package handlers

import (
	"errors"
	"log"

	"pet-game-system/middleware"
	"pet-game-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupNFTRoutes(app *fiber.App, registry *services.NFTRegistry, stats *services.StatService) {
	nft := app.Group("/nft")

	nft.Post("/mint", func(c *fiber.Ctx) error {
		var req services.MintRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		req.WalletID = middleware.WalletID(c)
		if req.WalletID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wallet required to mint"})
		}

		minted, err := registry.Mint(req)
		if err != nil {
			log.Printf("DB Error minting pet: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mint pet"})
		}
		return c.Status(fiber.StatusCreated).JSON(minted)
	})

	nft.Get("/:tokenId", func(c *fiber.Ctx) error {
		record, err := registry.Get(c.Params("tokenId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "pet not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		// Marketplace display rolls live stats into rarity and shine.
		p := stats.Get(record.WalletID, record.TokenID)
		return c.JSON(fiber.Map{
			"nft":    record,
			"rarity": services.ComputeRarity(record, p),
			"shine":  services.ComputeShine(record, p),
		})
	})

	nft.Get("/", func(c *fiber.Ctx) error {
		pets, err := registry.ForWallet(middleware.WalletID(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		return c.JSON(fiber.Map{"pets": pets, "total": len(pets)})
	})
}
