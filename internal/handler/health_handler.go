package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/kiranahq/catalog-api/internal/cache"
)

var startTime = time.Now()

// HealthHandler reports service, database, and cache status.
type HealthHandler struct {
	db    *sqlx.DB
	cache *cache.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, cacheStore *cache.Store) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheStore}
}

// GetHealth responds with component status. A down cache keeps the service
// healthy; a down database does not.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	status := 200
	overall := "healthy"
	dbStatus := "up"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
		overall = "degraded"
		status = 503
	}

	cacheStatus := "up"
	if err := h.cache.Ping(ctx); err != nil {
		cacheStatus = "down"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
