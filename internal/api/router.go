package api

import (
	"net/http"

	"fleet-breakeven-service/internal/api/handlers"
	"fleet-breakeven-service/internal/ports"
	"fleet-breakeven-service/internal/services"

	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	repo ports.DeliveryRecordRepository,
	engine *services.Engine,
	history ports.RunHistory,
	defaults handlers.AnalysisDefaults,
	log *zap.SugaredLogger,
) http.Handler {
	mux := http.NewServeMux()

	recordHandler := &handlers.RecordHandler{Repo: repo, Log: log}
	analysisHandler := &handlers.AnalysisHandler{
		Repo:     repo,
		Engine:   engine,
		History:  history,
		Defaults: defaults,
		Log:      log,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/records", recordHandler.List)
	mux.HandleFunc("/analyses", analysisHandler.Analyze)

	return loggingMiddleware(mux, log)
}
