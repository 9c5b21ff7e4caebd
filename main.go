package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pet-game-system/handlers"
	"pet-game-system/middleware"
	"pet-game-system/models"
	"pet-game-system/services"
	"pet-game-system/utils"
	"pet-game-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MatchmakingInterval: queue re-check cadence while players are searching.
const MatchmakingInterval = 5 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// Wallet context on every route — the address is optional.
	app.Use(middleware.WalletContextMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Wallet-Address",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.PetSnapshot{},
		&models.WalletSnapshot{},
		&models.PetNFT{},
		&models.BattleQueueEntry{},
		&models.BattleRecord{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Object storage for snapshot backups is optional.
	r2Enabled := true
	if err := utils.InitR2(); err != nil {
		r2Enabled = false
		log.Printf("⚠️  Snapshot backups disabled: %v", err)
	}

	registry := services.NewNFTRegistry(db)
	snapshotStore := services.NewGormSnapshotStore(db)
	statService := services.NewStatService(snapshotStore, registry)
	actionService := services.NewActionService(statService)
	exportService := services.NewExportService(statService)
	battleService := services.NewBattleService(db, statService, registry)

	aiClient := services.NewAIClient(os.Getenv("AI_SERVICE_URL"), os.Getenv("AI_SERVICE_TOKEN"))
	if aiClient.BaseURL == "" {
		log.Println("⚠️  AI_SERVICE_URL not set, chat runs on canned responses")
	}

	decayService := services.NewDecayService(statService)
	decayService.StartDecayScheduler()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollBattleQueue(ctx, battleService, MatchmakingInterval)

	handlers.SetupPetRoutes(app, actionService, statService, exportService, aiClient)
	handlers.SetupBattleRoutes(app, battleService)
	handlers.SetupNFTRoutes(app, registry, statService)

	go func() {
		if err := app.Listen(":5200"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5200")
	log.Println("✅ Decay scheduler running (every 30s)")
	log.Printf("✅ Battle matchmaking polling running (every %s)", MatchmakingInterval)
	log.Printf("✅ Snapshot backups enabled: %t", r2Enabled)

	<-ctx.Done()
	log.Println("Shutting down server...")
	decayService.Stop()
	statService.FlushSaves()
}
