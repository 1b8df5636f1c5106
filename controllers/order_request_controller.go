package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
	"github.com/dateshub/dateshub-api/utils"
)

// SubmitOrderRequestBody represents the request body for submitting an order request
type SubmitOrderRequestBody struct {
	utils.OrderRequestInput
	CompanyID uint `json:"company_id" binding:"required"`
}

// RespondOrderRequestBody represents the accept/decline request body
type RespondOrderRequestBody struct {
	Action  string `json:"action" binding:"required"`
	Message string `json:"message"`
}

// SubmitOrderRequest handles POST /api/v1/order-requests - submits an order
// request to a business tenant (buyers only)
func SubmitOrderRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RoleUser {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Only customers can submit order requests")
		return
	}

	var body SubmitOrderRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	validated, fieldErrs := utils.ValidateOrderRequest(&body.OrderRequestInput, time.Now())
	if fieldErrs != nil {
		validationErrorResponse(c, fieldErrs)
		return
	}

	// Resolve the target tenant; only approved listings accept requests
	db := config.GetDB()
	var company models.Company
	if err := db.Preload("Owner").
		Where("id = ? AND status = ?", body.CompanyID, models.CompanyApproved).
		First(&company).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "Business not found")
		return
	}

	order := models.OrderRequest{
		Title:           validated.Title,
		FullName:        validated.FullName,
		DeliveryDate:    validated.DeliveryDate,
		Quantity:        validated.Quantity,
		Category:        validated.Category,
		DeliveryAddress: validated.DeliveryAddress,
		AdditionalNotes: validated.AdditionalNotes,
		Status:          models.OrderRequestPending,
		CompanyID:       company.ID,
		RequestedByID:   user.ID,
	}

	if err := db.Create(&order).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create order request")
		return
	}

	// If the pair already has a conversation, drop the structured request
	// into it. Submitting never starts a new conversation.
	var conv models.Conversation
	err := db.Where("user_id = ? AND tenant_type = ? AND tenant_id = ?", user.ID, company.TenantType, company.ID).
		First(&conv).Error
	if err == nil {
		if err := services.AttachOrderRequestMessage(&conv, &order); err != nil {
			log.Warnf("failed to attach order request %d to conversation %d: %v", order.ID, conv.ID, err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("conversation lookup failed for order request %d: %v", order.ID, err)
	}

	// Best-effort notifications; the created request stands either way
	notifications := gin.H{
		"customer": services.ConfirmToCustomer(&order, user, &company),
		"business": services.NotifyBusiness(&order, &company.Owner, &company),
	}

	if err := db.Preload("Company").Preload("RequestedBy").First(&order, order.ID).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order request details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"data":          order,
		"notifications": notifications,
	})
}

// RespondToOrderRequest handles POST /api/v1/order-requests/:id/respond -
// accepts or declines a pending order request (business owners only)
func RespondToOrderRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	company, ok := currentTenant(c, user)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Order request ID must be numeric")
		return
	}

	var body RespondOrderRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	if body.Action != models.OrderActionAccept && body.Action != models.OrderActionDecline {
		validationErrorResponse(c, "action must be accept or decline")
		return
	}

	responseMessage := strings.TrimSpace(body.Message)
	if body.Action == models.OrderActionDecline && responseMessage == "" {
		validationErrorResponse(c, "a message is required when declining")
		return
	}

	db := config.GetDB()
	var order models.OrderRequest
	if err := db.First(&order, orderID).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "ORDER_REQUEST_NOT_FOUND", "Order request not found")
		return
	}

	// Authorization: the request must target the caller's own tenant
	if order.CompanyID != company.ID {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "You can only respond to requests sent to your own business")
		return
	}

	// Plan gate: free-tier tenants cannot respond
	allowed, err := services.CanRespondToOrderRequests(company.TenantType, company.ID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check subscription")
		return
	}
	if !allowed {
		errorResponse(c, http.StatusForbidden, "PLAN_RESTRICTED", "Responding to order requests requires a paid plan")
		return
	}

	updated, err := services.TransitionOrderRequest(uint(orderID), body.Action, responseMessage)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyResolved) {
			errorResponse(c, http.StatusConflict, "ALREADY_RESOLVED", "This order request has already been responded to")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order request")
		return
	}

	// Accepting opens (or reuses) the conversation between the two parties
	// and carries the decision into it
	if updated.Status == models.OrderRequestAccepted {
		conv, err := services.GetOrCreateConversation(updated.RequestedByID, company.TenantType, company.ID)
		if err != nil {
			log.Warnf("failed to open conversation for order request %d: %v", updated.ID, err)
		} else {
			if err := services.AttachOrderRequestMessage(conv, updated); err != nil {
				log.Warnf("failed to attach order request %d to conversation %d: %v", updated.ID, conv.ID, err)
			}
			if responseMessage != "" {
				if reply, err := models.NewTextMessage(conv.ID, company.TenantType, company.ID, responseMessage); err == nil {
					if err := services.AppendMessage(conv, reply); err != nil {
						log.Warnf("failed to append response message to conversation %d: %v", conv.ID, err)
					}
				}
			}
		}
	}

	notification := services.ResponseToCustomer(updated, &updated.RequestedBy, company)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         updated,
		"notification": notification,
	})
}

// ListMyOrderRequests handles GET /api/v1/order-requests - lists the caller's
// own submitted order requests, newest first
func ListMyOrderRequests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var orders []models.OrderRequest
	if err := db.Where("requested_by_id = ?", user.ID).
		Preload("Company").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch order requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ListReceivedOrderRequests handles GET /api/v1/order-requests/received -
// lists order requests targeting the caller's business, newest first
func ListReceivedOrderRequests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	company, ok := currentTenant(c, user)
	if !ok {
		return
	}

	db := config.GetDB()
	var orders []models.OrderRequest
	if err := db.Where("company_id = ?", company.ID).
		Preload("RequestedBy").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch order requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}
