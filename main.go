package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tournament-registration-system/config"
	"tournament-registration-system/handlers"
	"tournament-registration-system/models"
	"tournament-registration-system/services"
	"tournament-registration-system/utils"
	"tournament-registration-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Configuration error: ", err)
	}

	stripe.Key = cfg.StripeSecretKey

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // 64MB, enough for gallery uploads
	})

	// The site is served from a separate static host, so the API answers
	// cross-origin requests (including Stripe-Signature preflight for tooling).
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Client-Info, Apikey, Stripe-Signature",
		MaxAge:       86400, // 24 hours
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Tournament{},
		&models.TournamentPhoto{},
		&models.Registration{},
		&models.Game{},
		&models.MediaItem{},
		&models.Sponsor{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitStorage(cfg); err != nil {
		log.Fatal("failed to initialize media storage:", err)
	}

	mailer, err := utils.NewSESMailer(cfg)
	if err != nil {
		log.Fatal("failed to initialize mailer:", err)
	}

	tournamentService := services.NewTournamentService(db)
	gameService := services.NewGameService(db)
	mediaService := services.NewMediaService(db)
	sponsorService := services.NewSponsorService(db)
	registrationService := services.NewRegistrationService(db)
	notificationService := services.NewNotificationService(mailer, cfg)
	checkoutService := services.NewCheckoutService(db, cfg)
	webhookService := services.NewWebhookService(db, notificationService, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tournamentService.StartStatusScheduler()

	reconcileClient := workers.NewReconcileClient(db)
	go workers.PollMissedRegistrations(ctx, reconcileClient, 15*time.Minute)

	handlers.SetupTournamentRoutes(app, tournamentService, gameService, cfg.AdminToken)
	handlers.SetupRegistrationRoutes(app, checkoutService, webhookService, notificationService, registrationService, cfg.AdminToken)
	handlers.SetupMediaRoutes(app, mediaService, sponsorService, cfg.AdminToken)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Println("✅ Tournament status scheduler running (every 1m)")
	log.Println("✅ Registration reconcile worker running (every 15m)")
	log.Printf("✅ CORS configured for origins: %s", cfg.AllowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
