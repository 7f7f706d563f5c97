package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"message-service/internal/middleware"
	"message-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRoutes, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		var userID *string
		if id := c.GetString(middleware.UserIDKey); id != "" {
			userID = &id
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", userID)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
