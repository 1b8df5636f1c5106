package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
)

// CreateCompanyRequest represents the request body for listing a business
type CreateCompanyRequest struct {
	TenantType  string `json:"tenant_type" binding:"required"`
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Slug        string `json:"slug" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Category    string `json:"category" binding:"required"`
	City        string `json:"city" binding:"omitempty,max=100"`
}

// ReviewCompanyRequest represents the admin approve/reject request body
type ReviewCompanyRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// attachLogoURL fills the computed LogoURL field from the logo service
func attachLogoURL(company *models.Company) {
	if company.LogoS3Key == nil || *company.LogoS3Key == "" {
		return
	}
	logoService := services.GetLogoService()
	if logoService == nil {
		return
	}
	url, err := logoService.GetLogoURL(*company.LogoS3Key)
	if err != nil {
		log.Warnf("failed to build logo URL for company %d: %v", company.ID, err)
		return
	}
	company.LogoURL = &url
}

// ListCompanies handles GET /api/v1/companies - browses the public directory
// of approved businesses with search, category filter and pagination
func ListCompanies(c *gin.Context) {
	db := config.GetDB()

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			validationErrorResponse(c, "page must be a positive integer")
			return
		}
		page = parsed
	}

	limit := 12
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			validationErrorResponse(c, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	query := db.Model(&models.Company{}).Where("status = ?", models.CompanyApproved)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		// LIKE over lower() works on both PostgreSQL and SQLite
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if tenantType := c.Query("tenant_type"); tenantType != "" {
		query = query.Where("tenant_type = ?", tenantType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count companies")
		return
	}

	var companies []models.Company
	if err := query.Order("name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&companies).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch companies")
		return
	}

	for i := range companies {
		attachLogoURL(&companies[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    companies,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetCompany handles GET /api/v1/companies/:id - returns one approved listing
// with its average rating
func GetCompany(c *gin.Context) {
	db := config.GetDB()

	var company models.Company
	if err := db.Where("id = ? AND status = ?", c.Param("id"), models.CompanyApproved).
		First(&company).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "Business not found")
		return
	}

	var avg float64
	if err := db.Model(&models.Review{}).
		Where("company_id = ?", company.ID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error; err == nil {
		company.AverageRating = avg
	}

	attachLogoURL(&company)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    company,
	})
}

// CreateCompany handles POST /api/v1/companies - submits a business listing
// for admin review (company/supplier accounts, one listing per owner)
func CreateCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsBusiness() {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Only business accounts can create listings")
		return
	}

	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	if req.TenantType != models.TenantCompany && req.TenantType != models.TenantSupplier {
		validationErrorResponse(c, "tenant_type must be company or supplier")
		return
	}

	db := config.GetDB()
	var existing int64
	if err := db.Model(&models.Company{}).Where("owner_id = ?", user.ID).Count(&existing).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check existing listings")
		return
	}
	if existing > 0 {
		errorResponse(c, http.StatusConflict, "COMPANY_EXISTS", "This account already has a business listing")
		return
	}

	company := models.Company{
		TenantType:  req.TenantType,
		Name:        req.Name,
		Slug:        strings.ToLower(strings.TrimSpace(req.Slug)),
		Description: req.Description,
		Category:    req.Category,
		City:        req.City,
		Status:      models.CompanyPending,
		OwnerID:     user.ID,
	}

	if err := db.Create(&company).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			errorResponse(c, http.StatusConflict, "SLUG_EXISTS", "A business with this slug already exists")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create listing")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    company,
	})
}

// ReviewCompany handles POST /api/v1/companies/:id/review - admin approves or
// rejects a pending listing, notifying the applicant either way
func ReviewCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Only admins can review listings")
		return
	}

	var req ReviewCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	var newStatus string
	switch req.Action {
	case "approve":
		newStatus = models.CompanyApproved
	case "reject":
		newStatus = models.CompanyRejected
	default:
		validationErrorResponse(c, "action must be approve or reject")
		return
	}

	db := config.GetDB()
	var company models.Company
	if err := db.Preload("Owner").First(&company, c.Param("id")).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "Business not found")
		return
	}

	// A listing is reviewed once; re-reviews must go through support
	result := db.Model(&models.Company{}).
		Where("id = ? AND status = ?", company.ID, models.CompanyPending).
		Update("status", newStatus)
	if result.Error != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update listing")
		return
	}
	if result.RowsAffected == 0 {
		errorResponse(c, http.StatusConflict, "ALREADY_REVIEWED", "This listing has already been reviewed")
		return
	}
	company.Status = newStatus

	var notification services.EmailResult
	if newStatus == models.CompanyApproved {
		notification = services.ApprovalToApplicant(&company.Owner, &company)
	} else {
		notification = services.RejectionToApplicant(&company.Owner, &company, req.Reason)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         company,
		"notification": notification,
	})
}

// UploadCompanyLogo handles POST /api/v1/companies/:id/logo - uploads the
// listing's logo to object storage (owner only)
func UploadCompanyLogo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var company models.Company
	if err := db.First(&company, c.Param("id")).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "COMPANY_NOT_FOUND", "Business not found")
		return
	}

	if company.OwnerID != user.ID {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Only the listing owner can upload a logo")
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		validationErrorResponse(c, "logo file is required")
		return
	}

	logoService := services.GetLogoService()
	if logoService == nil {
		errorResponse(c, http.StatusInternalServerError, "STORAGE_ERROR", "Logo storage is not configured")
		return
	}

	s3Key, err := logoService.UploadLogo(fileHeader)
	if err != nil {
		validationErrorResponse(c, err.Error())
		return
	}

	// Replace the previous logo, best-effort
	if company.LogoS3Key != nil && *company.LogoS3Key != "" {
		if err := logoService.DeleteLogo(*company.LogoS3Key); err != nil {
			log.Warnf("failed to delete previous logo %s: %v", *company.LogoS3Key, err)
		}
	}

	if err := db.Model(&company).Update("logo_s3_key", s3Key).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save logo")
		return
	}
	company.LogoS3Key = &s3Key
	attachLogoURL(&company)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    company,
	})
}
