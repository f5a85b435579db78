package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"veritas/adapters/postgres"
	"veritas/domain/core"
	"veritas/ui"
)

// Exports a stored run's audit workbook from the verdict ledger.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		runID = flag.String("run", "", "run id to export (required)")
		out   = flag.String("out", ".", "output directory for the workbook")
	)
	flag.Parse()

	if *runID == "" {
		flag.Usage()
		os.Exit(2)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	id, err := core.ParseRunID(*runID)
	if err != nil {
		log.Fatalf("Invalid run id %q: %v", *runID, err)
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	verdict, err := postgres.NewVerdictRepository(db).GetVerdict(ctx, id)
	if err != nil {
		log.Fatalf("Failed to load run %s: %v", id, err)
	}

	path, err := ui.ExportWorkbook(verdict, *out)
	if err != nil {
		log.Fatalf("Failed to write workbook: %v", err)
	}
	log.Printf("Wrote %s", path)
}
