package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/database"
	pawprintHttp "github.com/pawprint-labs/pawprint/internal/http"
	ingestHandler "github.com/pawprint-labs/pawprint/internal/http/ingestcsv"
	reportHandler "github.com/pawprint-labs/pawprint/internal/http/report"
	"github.com/pawprint-labs/pawprint/internal/ingest"
	rawStore "github.com/pawprint-labs/pawprint/internal/raw/store"
	"github.com/pawprint-labs/pawprint/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		store         = rawStore.New(db)
		reportService = report.NewService(store, cfg.Policy)
		ingestService = ingest.NewService()
	)

	var (
		reportH = reportHandler.NewHandler(reportService)
		ingestH = ingestHandler.NewHandler(ingestService, store)
	)

	router := pawprintHttp.New(reportH, ingestH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
