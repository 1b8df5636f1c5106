package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
)

// StartConversationRequest represents the request body for opening a
// conversation with a business tenant
type StartConversationRequest struct {
	TenantType string `json:"tenant_type" binding:"required"`
	TenantID   uint   `json:"tenant_id" binding:"required"`
}

// callerParticipant resolves the messaging identity of the caller: buyers
// participate as themselves, business owners as their tenant. On failure it
// writes the error response and returns false.
func callerParticipant(c *gin.Context, user *models.User) (string, uint, bool) {
	if user.Role == models.RoleUser {
		return models.ParticipantUser, user.ID, true
	}

	company, ok := currentTenant(c, user)
	if !ok {
		return "", 0, false
	}
	return company.TenantType, company.ID, true
}

// loadConversationForCaller fetches a conversation by path param and verifies
// the caller is one of its two participants. On failure it writes the error
// response and returns false.
func loadConversationForCaller(c *gin.Context, user *models.User) (*models.Conversation, string, uint, bool) {
	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Conversation ID must be numeric")
		return nil, "", 0, false
	}

	db := config.GetDB()
	var conv models.Conversation
	if err := db.First(&conv, conversationID).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
		return nil, "", 0, false
	}

	kind, participantID, ok := callerParticipant(c, user)
	if !ok {
		return nil, "", 0, false
	}

	if !conv.HasParticipant(kind, participantID) {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this conversation")
		return nil, "", 0, false
	}

	return &conv, kind, participantID, true
}

// StartConversation handles POST /api/v1/messaging/conversations - opens (or
// returns) the conversation between the caller and a business tenant
func StartConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RoleUser {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Only customers can start conversations with businesses")
		return
	}

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	if req.TenantType != models.TenantCompany && req.TenantType != models.TenantSupplier {
		validationErrorResponse(c, "tenant_type must be company or supplier")
		return
	}

	db := config.GetDB()
	var company models.Company
	if err := db.Where("id = ? AND tenant_type = ? AND status = ?", req.TenantID, req.TenantType, models.CompanyApproved).
		First(&company).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "Business not found")
		return
	}

	conv, err := services.GetOrCreateConversation(user.ID, company.TenantType, company.ID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to open conversation")
		return
	}

	unread, err := services.UnreadCount(conv.ID, models.ParticipantUser, user.ID)
	if err == nil {
		conv.UnreadCount = unread
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conv,
	})
}

// ListConversations handles GET /api/v1/messaging/conversations - lists the
// caller's conversations, most recently active first, annotated with the
// caller's own unread counts
func ListConversations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	kind, participantID, ok := callerParticipant(c, user)
	if !ok {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			validationErrorResponse(c, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	db := config.GetDB()
	query := db.Preload("User").Order("last_message_at DESC").Limit(limit)
	if kind == models.ParticipantUser {
		query = query.Where("user_id = ?", participantID)
	} else {
		query = query.Where("tenant_type = ? AND tenant_id = ?", kind, participantID)
	}

	var conversations []models.Conversation
	if err := query.Find(&conversations).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch conversations")
		return
	}

	for i := range conversations {
		unread, err := services.UnreadCount(conversations[i].ID, kind, participantID)
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch unread counts")
			return
		}
		conversations[i].UnreadCount = unread
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conversations,
	})
}

// MarkConversationRead handles POST /api/v1/messaging/conversations/:id/read -
// resets the caller's unread counter for the conversation. Idempotent.
func MarkConversationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conv, kind, participantID, ok := loadConversationForCaller(c, user)
	if !ok {
		return
	}

	if err := services.MarkConversationRead(conv.ID, kind, participantID); err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to mark conversation as read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// GetUnreadCount handles GET /api/v1/messaging/unread - returns the caller's
// total unread count across conversations. Clients poll this after any
// unread-affecting action.
func GetUnreadCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	kind, participantID, ok := callerParticipant(c, user)
	if !ok {
		return
	}

	total, err := services.TotalUnread(kind, participantID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch unread count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"unread_count": total,
		},
	})
}
