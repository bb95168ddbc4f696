package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	redisclient "github.com/ayurmap/termbridge-backend/internal/clients/redis"
	"github.com/ayurmap/termbridge-backend/internal/http/response"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type HealthHandler struct {
	db          *gorm.DB
	cache       redisclient.Cache
	environment string
	log         *logger.Logger
}

func NewHealthHandler(db *gorm.DB, cache redisclient.Cache, environment string, baseLog *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		cache:       cache,
		environment: environment,
		log:         baseLog.With("handler", "HealthHandler"),
	}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	if err := h.pingDB(ctx); err != nil {
		h.log.Warn("postgres ping failed", "error", err)
		dbStatus = "disconnected"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			h.log.Warn("redis ping failed", "error", err)
			cacheStatus = "disconnected"
		}
	}

	status := "healthy"
	if dbStatus != "connected" {
		status = "unhealthy"
	}
	response.RespondOK(c, gin.H{
		"status":      status,
		"environment": h.environment,
		"timestamp":   time.Now().UTC(),
		"database":    gin.H{"postgres": dbStatus},
		"cache":       gin.H{"redis": cacheStatus},
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
