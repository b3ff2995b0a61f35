package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/filmdb/contribution-service/internal/config"
	"github.com/filmdb/contribution-service/internal/database"
	"github.com/filmdb/contribution-service/internal/handler"
	"github.com/filmdb/contribution-service/internal/middleware"
	"github.com/filmdb/contribution-service/internal/queue"
	"github.com/filmdb/contribution-service/internal/repository"
	"github.com/filmdb/contribution-service/internal/router"
	"github.com/filmdb/contribution-service/internal/service"
	"github.com/filmdb/contribution-service/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	cancel()

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limit disabled")
	}

	store := repository.NewMySQLStore(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	publisher := queue.NewPublisher(cfg.AMQPURL)
	contributions := service.NewContributionService(store, publisher)
	verifications := service.NewVerificationService(store, publisher)
	queries := service.NewQueryService(store)

	files, err := storage.NewLocalProvider(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Background consumer mirrors resolution events into logs/contributions.log.
	go func() {
		if err := queue.StartResolutionConsumer(cfg.AMQPURL); err != nil {
			log.Printf("resolution consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterContributions(e,
		handler.NewContributionHandler(contributions),
		handler.NewVerifyHandler(verifications),
		cfg.JWTSecret)
	router.RegisterQueries(e, handler.NewQueryHandler(queries), cfg.JWTSecret, rdb)
	router.RegisterUploads(e, handler.NewUploadHandler(files), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
