package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Heng-789/GAMEPARTY-sub002/backend/handlers"
	"github.com/Heng-789/GAMEPARTY-sub002/backend/middleware"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/logger"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/migration"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting GAMEPARTY reward service",
		slog.String("version", version),
		slog.String("commit", commit))

	importLegacy := flag.Bool("import-legacy", false, "Import reward pools from the legacy Mongo deployment and exit")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := gameparty.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	app := gameparty.New(*cfg, version, commit)
	if err := app.Setup(ctx); err != nil {
		slog.Error("Failed to set up application", slog.Any("error", err))
		os.Exit(-1)
	}
	defer app.Close()

	if *importLegacy {
		if err := runLegacyImport(ctx, app); err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	server := fiber.New(fiber.Config{
		AppName:      "GAMEPARTY Reward API",
		ServerHeader: "GAMEPARTY",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	server.Use(recover.New())
	server.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins(cfg),
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	server.Use(middleware.LoggingMiddleware())

	webApp := handlers.FromApp(app)
	webApp.SetupRoutes(server)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		slog.Info("Starting API server", slog.String("addr", addr))
		if err := server.Listen(addr); err != nil {
			slog.Error("Server stopped", slog.Any("error", err))
		}
	}()

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	slog.Info("Shutting down...")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("Forced shutdown", slog.Any("error", err))
	}
}

func allowedOrigins(cfg *gameparty.Config) string {
	if len(cfg.Server.AllowedOrigins) == 0 {
		return "*"
	}
	origins := ""
	for i, o := range cfg.Server.AllowedOrigins {
		if i > 0 {
			origins += ","
		}
		origins += o
	}
	return origins
}

func runLegacyImport(ctx context.Context, app *gameparty.App) error {
	slog.Info("Connecting to legacy Mongo...",
		slog.String("database", app.Cfg.Legacy.Database))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(app.Cfg.Legacy.URI))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	importer := migration.NewImporter(client.Database(app.Cfg.Legacy.Database), app.PoolRepository)
	importer.SetCollection(app.Cfg.Legacy.Collection)

	stats, err := importer.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("Legacy import completed",
		slog.Int("imported", stats.Imported),
		slog.Int("skipped", stats.Skipped))
	return nil
}
