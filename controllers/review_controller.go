package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/utils"
)

// CreateReviewRequest represents the request body for reviewing a business
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

// CreateReview handles POST /api/v1/companies/:id/reviews - leaves a rating
// for an approved business (customers only, one review per business)
func CreateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RoleUser {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Only customers can review businesses")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	// Review comments go through the same contact-info scrub as order notes
	comment := strings.TrimSpace(req.Comment)
	if comment != "" {
		if msg := utils.ValidateFreeText(comment); msg != "" {
			validationErrorResponse(c, gin.H{"comment": msg})
			return
		}
	}

	db := config.GetDB()
	var company models.Company
	if err := db.Where("id = ? AND status = ?", c.Param("id"), models.CompanyApproved).
		First(&company).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "Business not found")
		return
	}

	review := models.Review{
		CompanyID: company.ID,
		UserID:    user.ID,
		Rating:    req.Rating,
		Comment:   comment,
	}

	if err := db.Create(&review).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			errorResponse(c, http.StatusConflict, "REVIEW_EXISTS", "You have already reviewed this business")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create review")
		return
	}

	if err := db.Preload("User").First(&review, review.ID).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load review details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    review,
	})
}

// ListCompanyReviews handles GET /api/v1/companies/:id/reviews - lists a
// business's reviews, newest first
func ListCompanyReviews(c *gin.Context) {
	db := config.GetDB()

	var company models.Company
	if err := db.Where("id = ? AND status = ?", c.Param("id"), models.CompanyApproved).
		First(&company).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "Business not found")
		return
	}

	var reviews []models.Review
	if err := db.Where("company_id = ?", company.ID).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reviews,
	})
}
