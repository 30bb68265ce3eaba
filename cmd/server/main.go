package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/core"
	"github.com/agenthands/simcomp/internal/core/text"
	"github.com/agenthands/simcomp/internal/logger"
	"github.com/agenthands/simcomp/internal/observability"
	"github.com/agenthands/simcomp/internal/server"
	"github.com/agenthands/simcomp/internal/thing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnv()

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, cfg.Tracing, cfg.Env, lg)
	defer shutdownTracing(ctx)

	b, err := backend.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("Failed to initialize graph backend", "provider", cfg.Backend.Provider, "error", err)
	}
	defer b.Close(ctx)

	pre, err := text.Load(cfg.Text.StopwordsFile)
	if err != nil {
		lg.Fatal("Failed to load stop-words", "error", err)
	}

	db, err := thing.Open(cfg.Database, lg)
	if err != nil {
		lg.Fatal("Failed to open thing store", "error", err)
	}

	simComp := core.NewSimComp(b, cfg.Comparison, pre, lg)
	things := thing.NewService(thing.NewStore(db, lg), cfg.IsTest(), lg)
	srv := server.NewServer(simComp, things, cfg.Server.APIPrefix, lg)
	r := srv.SetupRouter()

	lg.Info("Starting server", "port", cfg.Server.Port, "env", cfg.Env, "backend", cfg.Backend.Provider)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		lg.Fatal("Server stopped", "error", err)
	}
}
