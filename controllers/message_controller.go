package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage handles POST /api/v1/messaging/conversations/:id/messages -
// appends a message to a conversation the caller participates in
func SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conv, kind, participantID, ok := loadConversationForCaller(c, user)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	message, err := models.NewTextMessage(conv.ID, kind, participantID, req.Text)
	if err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	if err := services.AppendMessage(conv, message); err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/messaging/conversations/:id/messages -
// lists a conversation's messages in chronological order
func ListMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conv, _, _, ok := loadConversationForCaller(c, user)
	if !ok {
		return
	}

	db := config.GetDB()
	var messages []models.Message
	if err := db.Where("conversation_id = ?", conv.ID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}
