package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/middleware"
	"github.com/dateshub/dateshub-api/models"
)

// errorResponse writes the standard error envelope
func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// validationErrorResponse writes a 400 with field-level error details
func validationErrorResponse(c *gin.Context, details interface{}) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": details,
		},
	})
}

// currentUser resolves the authenticated user's profile. On failure it writes
// the error response and returns false.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		return nil, false
	}

	return &user, true
}

// currentTenant resolves the business tenant owned by the authenticated user.
// On failure it writes the error response and returns false.
func currentTenant(c *gin.Context, user *models.User) (*models.Company, bool) {
	if !user.IsBusiness() {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Only business accounts can perform this action")
		return nil, false
	}

	db := config.GetDB()
	var company models.Company
	if err := db.Where("owner_id = ?", user.ID).First(&company).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "No business listing found for this account")
		return nil, false
	}

	return &company, true
}
