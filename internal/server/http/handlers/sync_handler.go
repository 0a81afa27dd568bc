package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/codguard/internal/server/http/dto"
)

// SyncHandler exposes the bundled order queue and block statistics.
type SyncHandler struct {
	facade SyncFacade
	logger *slog.Logger
}

// NewSyncHandler constructs SyncHandler.
func NewSyncHandler(facade SyncFacade, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{facade: facade, logger: logger}
}

// Blocks handles GET /api/blocks.
func (h *SyncHandler) Blocks(c *gin.Context) {
	stats, err := h.facade.BlockStats(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.NewBlockStatsResponse(*stats))
}

// Queue handles GET /api/sync/queue.
func (h *SyncHandler) Queue(c *gin.Context) {
	status, err := h.facade.QueueStatus(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.QueueStatusResponse{Pending: status.Pending, NextFlushAt: status.NextFlushAt})
}

// Flush handles POST /api/sync/flush.
func (h *SyncHandler) Flush(c *gin.Context) {
	if err := h.facade.FlushQueue(c.Request.Context()); err != nil {
		h.logger.Warn("manual flush failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}
	h.Queue(c)
}

// Deactivate handles DELETE /api/sync/queue.
func (h *SyncHandler) Deactivate(c *gin.Context) {
	if err := h.facade.DeactivateSync(c.Request.Context()); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
