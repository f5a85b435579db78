package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"veritas/adapters/llm"
	"veritas/adapters/postgres"
	"veritas/adapters/rng"
	"veritas/app"
	"veritas/domain/core"
	"veritas/internal/config"
	"veritas/internal/errors"
	"veritas/internal/testkit"
	"veritas/ports"
	"veritas/ui"
)

// initDatabase connects the optional verdict ledger
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "failed to ensure ledger schema")
	}
	return db, nil
}

// modelRoster reads the backing-model list, defaulting to the configured model
func modelRoster(cfg *config.Config) []core.ModelID {
	raw := os.Getenv("LLM_MODELS")
	if raw == "" {
		return []core.ModelID{core.ModelID(cfg.AI.Model)}
	}
	parts := strings.Split(raw, ",")
	models := make([]core.ModelID, 0, len(parts))
	for _, p := range parts {
		if m := strings.TrimSpace(p); m != "" {
			models = append(models, core.ModelID(m))
		}
	}
	if len(models) == 0 {
		return []core.ModelID{core.ModelID(cfg.AI.Model)}
	}
	return models
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	var ledger ports.VerdictLedgerPort
	if db != nil {
		defer db.Close()
		ledger = postgres.NewVerdictRepository(db)
		log.Println("Verdict ledger enabled")
	} else {
		log.Println("DATABASE_URL not set; runs will not be persisted")
	}

	chatClient, err := llm.NewChatClient(llm.Config{
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		Timeout:   cfg.Swarm.Run.PerMemberTimeout,
		MaxTokens: cfg.AI.MaxTokens,
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	evaluator := llm.NewEvaluatorAdapter(chatClient, llm.DefaultPrompts())

	var writer ports.VerdictWriterPort
	if ledger != nil {
		writer = ledger
	}
	service := app.NewSwarmService(
		evaluator,
		rng.NewAdapter(),
		writer,
		testkit.DefaultArchetypes(),
		modelRoster(cfg),
	)

	runCfg := cfg.Swarm.Run
	runCfg.Seed = cfg.Swarm.Seed
	runCfg.Temperature = cfg.AI.Temperature

	// Ops app serves health plus ledger browsing on its own port
	var reader ports.VerdictReaderPort
	if ledger != nil {
		reader = ledger
	}
	ops := ui.NewOpsApp(reader, os.TempDir())
	go func() {
		if err := ops.Run(cfg.Server.OpsPort); err != nil {
			log.Fatalf("Ops server failed: %v", err)
		}
	}()

	server := ui.NewServer(service, runCfg, cfg.Server.GinMode)
	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Evaluation server failed: %v", err)
	}
}
