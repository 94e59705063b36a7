package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"fleet-breakeven-service/internal/adapters/cache"
	"fleet-breakeven-service/internal/adapters/distance"
	"fleet-breakeven-service/internal/adapters/repositories"
	"fleet-breakeven-service/internal/api"
	"fleet-breakeven-service/internal/api/handlers"
	"fleet-breakeven-service/internal/config"
	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/platform/db"
	"fleet-breakeven-service/internal/ports"
	"fleet-breakeven-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, Google) behind ports and
// starts the HTTP server.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	if err := godotenv.Load(); err != nil {
		log.Infow("no .env file found, using environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatalw("DATABASE_URL is required")
	}

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		log.Fatalw("GOOGLE_MAPS_API_KEY is required")
	}

	depot := config.Get("DEPOT_POSTCODE", "NN15 6NL")
	port := config.Get("PORT", "8080")

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatalw("open database failed", "err", err)
	}
	defer pg.Close()

	// Schema creation is idempotent; running it on startup keeps local
	// environments in sync without a separate migration step.
	if err := repositories.InitSchema(context.Background(), pg); err != nil {
		log.Fatalw("init schema failed", "err", err)
	}

	// Estimates are cached persistently so repeat analyses of the same
	// districts stay within the daily API budget. Redis when configured,
	// Postgres otherwise.
	var estimateCache ports.EstimateCache = cache.NewSQLEstimateCache(pg, log)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		defer client.Close()
		estimateCache = cache.NewRedisEstimateCache(client, log)
		log.Infow("using redis estimate cache", "addr", addr)
	}

	estimator, err := distance.NewGoogleEstimator(apiKey, depot, log)
	if err != nil {
		log.Fatalw("create estimator failed", "err", err)
	}
	estimator.SetRequestLimit(config.GetInt("DAILY_REQUEST_LIMIT", distance.DefaultDailyRequestLimit))

	engine := services.NewEngine(estimator, estimateCache, log)
	engine.LookupConcurrency = config.GetInt("LOOKUP_CONCURRENCY", services.DefaultLookupConcurrency)

	van := domain.DefaultVanCostParameters()
	van.DieselPerLitre = config.GetFloat("DIESEL_PER_LITRE", van.DieselPerLitre)

	defaults := handlers.AnalysisDefaults{
		Params: domain.CostModelParameters{
			FuelPerKm:         van.FuelPerKm(),
			WagePerMinute:     config.GetFloat("WAGE_PER_MINUTE", 0.29),
			DepreciationPerKm: config.GetFloat("DEPRECIATION_PER_KM", 0.05),
		},
		Van:        van,
		RunTimeout: time.Duration(config.GetInt("RUN_TIMEOUT_SECONDS", 90)) * time.Second,
	}

	repo := repositories.NewSQLRecordRepository(pg)
	history := repositories.NewSQLRunHistory(pg)
	router := api.NewRouter(repo, engine, history, defaults, log)

	// Timeouts are tuned for cold-cache analysis runs (external API latency).
	log.Infow("server listening", "addr", ":"+port, "depot", depot)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatalw("server stopped", "err", srv.ListenAndServe())
}
