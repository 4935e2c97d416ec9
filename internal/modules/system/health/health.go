package health

import (
	"context"
	"net/http"
	"time"

	"github.com/albedo-support/api/internal/database"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *redis.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db     *gorm.DB
	cache  Pinger
	logger *zap.Logger
}

// NewHandler builds the health check. cache may be nil when redis is not
// configured.
func NewHandler(db *gorm.DB, cache Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{db: db, cache: cache, logger: logger.Named("Health")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.check)
}

func (h *Handler) check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	dbOK := database.Ping(ctx, h.db) == nil
	body := gin.H{"status": "ok", "database": dbOK}
	healthy := dbOK

	if h.cache != nil {
		redisOK := true
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("redis ping failed", zap.Error(err))
			redisOK = false
		}
		body["redis"] = redisOK
		healthy = healthy && redisOK
	}
	if !dbOK {
		h.logger.Warn("database ping failed")
	}

	if !healthy {
		body["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
