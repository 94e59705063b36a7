package main

import (
	"context"
	"flag"
	"os"
	"time"

	"fleet-breakeven-service/internal/adapters/manifest"
	"fleet-breakeven-service/internal/adapters/repositories"
	"fleet-breakeven-service/internal/platform/db"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool initialises the Postgres schema and optionally imports a
// delivery manifest so the HTTP service has records to analyse.
func main() {
	manifestPath := flag.String("manifest", "", "CSV or XLSX manifest to import after initialising the schema")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	if err := godotenv.Load(); err != nil {
		log.Debugw("no .env file found, using environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatalw("DATABASE_URL is required")
	}

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatalw("open database failed", "err", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := repositories.InitSchema(ctx, database); err != nil {
		log.Fatalw("init schema failed", "err", err)
	}
	log.Infow("schema ready")

	if *manifestPath == "" {
		return
	}

	loaded, err := manifest.ReadFile(*manifestPath)
	if err != nil {
		log.Fatalw("load manifest failed", "path", *manifestPath, "err", err)
	}
	if err := repositories.ImportRecords(ctx, database, loaded.Records); err != nil {
		log.Fatalw("import records failed", "err", err)
	}
	log.Infow("manifest imported",
		"path", *manifestPath,
		"records", len(loaded.Records),
		"skipped", loaded.Skipped,
	)
}
