package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratum-quant/stratum/internal/api"
	"github.com/stratum-quant/stratum/internal/api/handlers"
	"github.com/stratum-quant/stratum/internal/audit"
	"github.com/stratum-quant/stratum/internal/override"
	"github.com/stratum-quant/stratum/internal/scoring"
	"github.com/stratum-quant/stratum/internal/stream"
	"github.com/stratum-quant/stratum/pkg/database"
	"github.com/stratum-quant/stratum/pkg/redis"
)

// apiCmd starts the HTTP API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server with live websocket updates.

Endpoints:
  GET  /health                 - Health check
  GET  /api/rankings           - Latest scored universe
  GET  /api/rankings/{ticker}  - One entity's result
  POST /api/overrides          - Apply an analyst override
  GET  /api/audit              - Override records
  GET  /api/audit/stats        - Override statistics
  GET  /ws                     - Live update stream

Example:
  go run ./cmd/stratum api --input scores.json
  go run ./cmd/stratum api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort  string
	apiInput string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
	apiCmd.Flags().StringVar(&apiInput, "input", "", "pillar scores JSON file for an initial scoring run")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := bootstrap()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// Audit store: PostgreSQL when reachable, in-memory otherwise.
	var store handlers.AuditReader
	var appendStore override.AuditStore
	if db, err := database.New(cfg); err == nil {
		defer db.Close()
		repo := audit.NewRepository(db.Pool)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			return err
		}
		store, appendStore = repo, repo
		log.Info("Connected to database")
	} else {
		log.WithError(err).Warn("Database unavailable, using in-memory audit log")
		mem := audit.NewMemoryStore()
		store, appendStore = mem, mem
	}

	// Optional Redis snapshot cache.
	var cache *redis.Cache
	if rc, err := redis.New(cfg); err != nil {
		log.WithError(err).Warn("Redis unavailable, snapshot cache disabled")
	} else if rc.Enabled() {
		defer rc.Close()
		cache = redis.NewCache(rc, "stratum")
		log.Info("Connected to Redis")
	}

	snapshots := scoring.NewSnapshotStore(cache, log)
	engine := scoring.NewEngine(*p, log)

	// Optional initial scoring run.
	if apiInput != "" {
		input, err := scoring.NewFileProvider(apiInput).PillarScores(context.Background())
		if err != nil {
			return err
		}
		snapshots.Put(context.Background(), engine.CalculateForUniverse(input))
	}

	// Live update hub.
	hub := stream.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	// Override pipeline.
	svc := override.NewService(*p, appendStore, log)
	svc.SetBroadcaster(hub)

	router := api.NewRouter(
		handlers.NewRankingsHandler(snapshots, log),
		handlers.NewOverrideHandler(svc, snapshots, log),
		handlers.NewAuditHandler(store, log),
		hub,
		log,
	)

	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
