package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/cache"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewHealthHandler(db *gorm.DB, redisCache *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, cache: redisCache}
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports degraded when redis is down and unavailable when the
// database is unreachable. The API can serve without redis, not without
// postgres.
func (h *HealthHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "ok"}

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.cache == nil {
		checks["redis"] = "disabled"
	} else if err := h.cache.HealthCheck(c.Request.Context()); err != nil {
		checks["redis"] = "unavailable"
		if status == http.StatusOK {
			checks["status"] = "degraded"
		}
	}

	c.JSON(status, checks)
}

func (h *HealthHandler) Cache(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"redis": "disabled"})
		return
	}
	if err := h.cache.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"redis": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redis": "ok"})
}
