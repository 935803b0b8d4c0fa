// Package server exposes the triage engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Skufu/medtriage/internal/history"
	"github.com/Skufu/medtriage/internal/model"
	"github.com/Skufu/medtriage/internal/triage"
)

const (
	maxBodyBytes        = 1 << 20 // 1MB max body
	defaultHistoryLimit = 50
	userHeader          = "X-User-ID"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers need. History and Recorder may be
// nil when persistence is disabled.
type Deps struct {
	Engine   *triage.Engine
	Models   *model.Registry
	History  history.Store
	Recorder *history.Recorder
	Logger   *slog.Logger
}

type handler struct {
	Deps
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handler{Deps: deps}

	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", userHeader},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	var db HealthChecker
	if deps.History != nil {
		db = deps.History
	}
	router.GET("/readyz", readyz(db))

	api := router.Group("/api")
	api.GET("/diseases", h.listDiseases)
	api.GET("/models", h.listModels)
	api.GET("/models/:disease", h.getModel)
	api.POST("/predict/:disease", h.predict)
	api.GET("/history", h.listHistory)

	return router
}

func readyz(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
