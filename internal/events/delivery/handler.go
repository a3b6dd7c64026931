package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"friendlychat-backend/internal/events/dto"
	"friendlychat-backend/internal/metrics"
	moderationUsecase "friendlychat-backend/internal/moderation/usecase"
	notificationUsecase "friendlychat-backend/internal/notification/usecase"
	welcomeUsecase "friendlychat-backend/internal/welcome/usecase"
	"friendlychat-backend/pkg/logging"
)

// EventHandler turns platform trigger events into usecase calls. A handler
// error answers 500 so the platform redelivers the event.
type EventHandler struct {
	welcome      welcomeUsecase.WelcomeUsecase
	notification notificationUsecase.NotificationUsecase
	moderation   moderationUsecase.ModerationUsecase
}

func NewEventHandler(welcome welcomeUsecase.WelcomeUsecase, notification notificationUsecase.NotificationUsecase, moderation moderationUsecase.ModerationUsecase) *EventHandler {
	return &EventHandler{
		welcome:      welcome,
		notification: notification,
		moderation:   moderation,
	}
}

// UserCreated posts the welcome message
// POST /events/auth/user-created
func (h *EventHandler) UserCreated(c *gin.Context) {
	var req dto.UserCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.welcome.OnUserCreated(c.Request.Context(), req.ToUser())
	metrics.ObserveEvent("user_created", err)
	if err != nil {
		logging.Log.Error().Err(err).Str("uid", req.UID).Msg("welcome message failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message_id": id})
}

// MessageCreated fans the message out to every device
// POST /events/messages/created
func (h *EventHandler) MessageCreated(c *gin.Context) {
	var req dto.MessageCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.notification.OnMessageCreated(c.Request.Context(), req.ToMessage())
	metrics.ObserveEvent("message_created", err)
	if err != nil {
		logging.Log.Error().Err(err).Str("message_id", req.ID).Msg("notification fan-out failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ObjectFinalized moderates an uploaded image
// POST /events/storage/object-finalized
func (h *EventHandler) ObjectFinalized(c *gin.Context) {
	var req dto.StorageObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.moderation.OnImageUploaded(c.Request.Context(), req.ToObject())
	metrics.ObserveEvent("object_finalized", err)
	if err != nil {
		logging.Log.Error().Err(err).Str("object", req.Name).Msg("image moderation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "outcome": outcome})
}
