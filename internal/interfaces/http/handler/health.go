package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hawaiibiz/intel/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping() error
}

// RunStatus reports whether a collection run is executing
type RunStatus interface {
	InProgress() bool
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db         Pinger
	collection RunStatus
	now        func() time.Time
}

// NewHealthHandler creates a new HealthHandler. collection may be nil.
func NewHealthHandler(db Pinger, collection RunStatus) *HealthHandler {
	return &HealthHandler{db: db, collection: collection, now: time.Now}
}

// HealthData is the health check body
// @Description Service health
type HealthData struct {
	Status            string `json:"status" example:"healthy"`
	Time              string `json:"time" example:"2026-03-01T09:00:00Z"`
	Database          string `json:"database" example:"ok"`
	CollectionRunning bool   `json:"collection_running" example:"false"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthData
// @Failure      503  {object}  HealthData
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	data := HealthData{
		Status:   "healthy",
		Time:     h.now().UTC().Format(time.RFC3339),
		Database: "ok",
	}
	if h.collection != nil {
		data.CollectionRunning = h.collection.InProgress()
	}
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		data.Status = "unhealthy"
		data.Database = "error"
		c.JSON(http.StatusServiceUnavailable, data)
		return
	}
	c.JSON(http.StatusOK, data)
}
