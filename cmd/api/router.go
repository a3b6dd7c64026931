package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	eventDelivery "friendlychat-backend/internal/events/delivery"
	"friendlychat-backend/internal/metrics"
	notificationDelivery "friendlychat-backend/internal/notification/delivery"
)

func SetupRoutes(r *gin.Engine, eventHandler *eventDelivery.EventHandler, tokenHandler *notificationDelivery.TokenHandler, eventsSecret string) {
	// Health check (no auth required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Get())
	})

	// Trigger events delivered by the platform
	events := r.Group("/events")
	events.Use(eventDelivery.EventAuthMiddleware(eventsSecret))
	{
		events.POST("/auth/user-created", eventHandler.UserCreated)
		events.POST("/messages/created", eventHandler.MessageCreated)
		events.POST("/storage/object-finalized", eventHandler.ObjectFinalized)
	}

	// Device registration
	fcm := r.Group("/api/fcm")
	{
		fcm.POST("/register", tokenHandler.RegisterToken)
		fcm.DELETE("/:token", tokenHandler.UnregisterToken)
	}
}
