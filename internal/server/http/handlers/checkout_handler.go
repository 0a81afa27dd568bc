package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/server/http/dto"
	"github.com/polkiloo/codguard/internal/usecase"
)

// checkoutHooks are the validation points a checkout submission passes through.
var checkoutHooks = []string{"after-validation", "process"}

// CheckoutHandler validates checkout submissions against the rating gate.
type CheckoutHandler struct {
	facade CheckoutFacade
	logger *slog.Logger
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{facade: facade, logger: logger}
}

// Validate handles POST /api/checkout/validate.
func (h *CheckoutHandler) Validate(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "payment_method is required"})
		return
	}

	ctx := c.Request.Context()
	scope := usecase.NewCheckoutScope()
	var decision model.Decision
	for _, hook := range checkoutHooks {
		decision = h.facade.EvaluateCheckout(ctx, scope, req.PaymentMethod, req.BillingEmail)
		h.logger.Debug("checkout hook evaluated",
			slog.String("hook", hook),
			slog.String("checkout_id", scope.ID()),
			slog.String("decision", string(decision)),
		)
	}

	if !decision.Permits() {
		notices := scope.Notices()
		if notices == nil {
			notices = []string{}
		}
		c.JSON(http.StatusUnprocessableEntity, dto.CheckoutRejection{Decision: string(decision), Errors: notices})
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{Decision: string(decision), RequestID: scope.ID()})
}
