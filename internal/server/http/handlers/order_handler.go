package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/server/http/dto"
)

// OrderHandler receives order status transitions from the commerce system.
type OrderHandler struct {
	facade OrderFacade
	logger *slog.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, logger: logger}
}

// StatusChanged handles POST /api/orders/status.
func (h *OrderHandler) StatusChanged(c *gin.Context) {
	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "order.id and new_status are required"})
		return
	}

	err := h.facade.OrderStatusChanged(c.Request.Context(), req.Order.ToModel(), req.OldStatus, req.NewStatus)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidOrder):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		default:
			h.logger.Error("order status change not queued",
				slog.Int64("order_id", req.Order.ID),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "order could not be queued"})
		}
		return
	}

	c.Status(http.StatusAccepted)
}
