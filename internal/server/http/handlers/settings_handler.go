package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/server/http/dto"
	"github.com/polkiloo/codguard/internal/usecase"
)

// SettingsHandler manages shop settings endpoints.
type SettingsHandler struct {
	facade SettingsFacade
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(facade SettingsFacade) *SettingsHandler {
	return &SettingsHandler{facade: facade}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.facade.Settings(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req model.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid settings payload"})
		return
	}

	settings, err := h.facade.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		var verr *usecase.ValidationError
		switch {
		case errors.As(err, &verr):
			fields := make(map[string]string, len(verr.Fields))
			for _, f := range verr.Fields {
				fields[f.Field] = f.Message
			}
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Error: domainErrors.ErrInvalidSettings.Error(), Fields: fields})
		case errors.Is(err, domainErrors.ErrInvalidSettings):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}
