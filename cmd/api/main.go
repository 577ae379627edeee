package main

import (
	"ai-concierge/config"
	"ai-concierge/internal/api/chat"
	"ai-concierge/internal/api/healthcheck"
	"ai-concierge/internal/api/hotel"
	"ai-concierge/internal/api/ingest"
	"ai-concierge/internal/api/retriever"
	"ai-concierge/internal/app"
	"ai-concierge/internal/database"
	"ai-concierge/internal/middleware"
	"ai-concierge/pkg/logger"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/joho/godotenv"
)

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func main() {
	_ = godotenv.Load()
	if err := config.Init(configPath()); err != nil {
		logger.Fatal(err, "failed to load config")
	}
	if err := logger.Configure(string(config.Cfg.LogLevel), config.Cfg.LogJSON); err != nil {
		logger.Warn("%v: %v", config.ModuleSetting, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		logger.Fatal(err, "failed to initialise services")
	}
	defer deps.Close()

	// the corpus must be loaded before serving
	if config.Cfg.Ingest.Enabled {
		if _, err := deps.Ingest.Bootstrap(ctx); err != nil {
			logger.Fatal(err, "ingest bootstrap failed")
		}
	}

	server := fiber.New(fiber.Config{
		AppName:     config.Cfg.Server.AppName,
		BodyLimit:   config.Cfg.Server.BodyLimit,
		Concurrency: config.Cfg.Server.Concurrency,
	})
	server.Use(cors.New(cors.Config{
		AllowOrigins: config.Cfg.Cors.AllowOrigins,
		AllowMethods: config.Cfg.Cors.AllowMethods,
		AllowHeaders: config.Cfg.Cors.AllowHeaders,
	}))
	middleware.Register(server, config.Cfg.Server.MaxConnections)

	// routes
	healthcheck.RegisterRoutes(server, healthcheck.NewHandler(database.Ping, deps.Store.Ping))
	chat.RegisterRoutes(server, chat.NewHandler(deps.Roster, deps.Timeout))
	hotel.RegisterRoutes(server, hotel.NewHandler(deps.Hotel, deps.Timeout))
	retriever.RegisterRoutes(server, retriever.NewHandler(deps.Retriever, deps.Timeout))
	ingest.RegisterRoutes(server, ingest.NewHandler(deps.Ingest))

	go func() {
		<-ctx.Done()
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error(err, "%v: shutdown", config.ModuleServer)
		}
	}()

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	if err := server.Listen(addr); err != nil {
		logger.Error(err, "server error")
	}
}
