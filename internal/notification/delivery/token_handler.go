package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"friendlychat-backend/internal/chat/repository"
	"friendlychat-backend/internal/events/dto"
)

// TokenHandler lets clients register and unregister device tokens when the
// registry is not written by the clients directly.
type TokenHandler struct {
	tokens repository.TokenRepository
}

func NewTokenHandler(tokens repository.TokenRepository) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// RegisterToken stores a device token
// POST /api/fcm/register
func (h *TokenHandler) RegisterToken(c *gin.Context) {
	var req dto.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tokens.SaveToken(c.Request.Context(), req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

// UnregisterToken removes a device token
// DELETE /api/fcm/:token
func (h *TokenHandler) UnregisterToken(c *gin.Context) {
	token := c.Param("token")
	if err := h.tokens.DeleteToken(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unregistered"})
}
