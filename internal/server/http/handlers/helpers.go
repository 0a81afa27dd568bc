package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/codguard/internal/server/http/middleware"
)

// RequestID extracts request identifier assigned by middleware.
func RequestID(c *gin.Context) string {
	val, ok := c.Get(middleware.RequestIDContextKey)
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}
