package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/gigflow/internal/config"
	"github.com/Windi-Fikriyansyah/gigflow/internal/db"
	"github.com/Windi-Fikriyansyah/gigflow/internal/handlers"
	"github.com/Windi-Fikriyansyah/gigflow/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigflow/internal/notify"
	"github.com/Windi-Fikriyansyah/gigflow/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository/memory"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository/postgres"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/hiring"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/marketplace"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repository.Store
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("[main] using in-memory store, data is lost on restart")
		store = memory.New()
	default:
		gdb, err := db.Connect(cfg.DBDSN, db.DefaultOptions())
		if err != nil {
			log.Fatal(err)
		}
		if err := db.Migrate(gdb); err != nil {
			log.Fatal(err)
		}
		store = postgres.New(gdb)
	}

	hub := realtime.NewHub()
	var (
		publisher notify.Publisher = realtime.HubPublisher{Hub: hub}
		limiter   middleware.Limiter = middleware.NewMemoryLimiter()
	)

	if cfg.RedisEnabled {
		rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("[main] redis not reachable: ", err)
		}

		relay := realtime.NewRelay(rdb, hub)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Printf("[realtime] relay stopped: %v", err)
			}
		}()
		publisher = realtime.RedisPublisher{RDB: rdb}
		limiter = middleware.NewRedisLimiter(rdb)
		log.Println("[main] redis enabled for notifications and rate limiting")
	}

	coord := hiring.NewCoordinator(store, publisher,
		hiring.WithTimeout(cfg.HiringTimeout),
		hiring.WithNotifyTimeout(cfg.NotifyTimeout),
	)

	app := fiber.New(fiber.Config{
		AppName:      "GigFlow API",
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	handlers.Register(app, handlers.Deps{
		Store:           store,
		Market:          marketplace.NewService(store),
		Hiring:          coord,
		Hub:             hub,
		JWTSecret:       cfg.JWTSecret,
		Limiter:         limiter,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	go func() {
		<-ctx.Done()
		log.Println("[main] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("[main] shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}
	// let notifications from the last hires go out before the relay closes
	coord.Wait()
}
