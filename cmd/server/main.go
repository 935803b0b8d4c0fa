package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/medtriage/internal/config"
	"github.com/Skufu/medtriage/internal/history"
	"github.com/Skufu/medtriage/internal/model"
	"github.com/Skufu/medtriage/internal/server"
	"github.com/Skufu/medtriage/internal/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)
	logger := config.NewLogger(cfg, os.Stdout)

	models := model.LoadDir(cfg.ModelDir, triage.ModelSchemas(), logger)
	engine, err := buildEngine(cfg, models)
	if err != nil {
		logger.Error("engine setup failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openHistory(ctx, cfg)
	if err != nil {
		logger.Error("history store setup failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	var recorder *history.Recorder
	if store != nil {
		defer store.Close()
		recorder = history.NewRecorder(store, logger)
		defer recorder.Close()
	}

	router := server.NewRouter(server.Deps{
		Engine:   engine,
		Models:   models,
		History:  store,
		Recorder: recorder,
		Logger:   logger,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("server listening", "port", cfg.Port, "routes", engine.Routes())
	waitForShutdown(srv, logger)
}

// buildEngine resolves the suggestion catalog and the model-routed diseases.
func buildEngine(cfg *config.Config, models *model.Registry) (*triage.Engine, error) {
	catalog := triage.DefaultCatalog()
	if cfg.SuggestionsFile != "" {
		c, err := triage.LoadCatalogFile(cfg.SuggestionsFile)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	routed := make([]triage.Disease, 0, len(cfg.ModelRoutedDiseases))
	for _, name := range cfg.ModelRoutedDiseases {
		d, err := triage.ParseDisease(name)
		if err != nil {
			return nil, fmt.Errorf("MODEL_ROUTED_DISEASES: %w", err)
		}
		routed = append(routed, d)
	}

	return triage.NewEngine(models, catalog, routed...)
}

// openHistory returns a nil store when persistence is disabled.
func openHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	if !cfg.EnableDB {
		return nil, nil
	}
	if cfg.DBDriver == config.DriverSQLite {
		s, err := history.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := history.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func waitForShutdown(srv *http.Server, logger *slog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
