package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
)

func TestListCompanies(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	services.SetLogoService(nil)

	for i := 1; i <= 3; i++ {
		owner := createTestUser(t, db, fmt.Sprintf("auth0|owner%d", i), fmt.Sprintf("Owner %d", i), fmt.Sprintf("owner%d@example.com", i), models.RoleCompany)
		createTestCompany(t, db, owner, models.TenantCompany, fmt.Sprintf("Golden Dates %d", i), fmt.Sprintf("golden-dates-%d", i), models.CompanyApproved)
	}
	supplierOwner := createTestUser(t, db, "auth0|supplier", "Supplier Owner", "supplier@example.com", models.RoleSupplier)
	createTestCompany(t, db, supplierOwner, models.TenantSupplier, "Date Farm", "date-farm", models.CompanyApproved)

	pendingOwner := createTestUser(t, db, "auth0|pending", "Pending Owner", "pendingowner@example.com", models.RoleCompany)
	createTestCompany(t, db, pendingOwner, models.TenantCompany, "Invisible Dates", "invisible-dates", models.CompanyPending)

	list := func(query string) (*httptest.ResponseRecorder, map[string]interface{}) {
		router := setupTestRouter()
		router.GET("/companies", ListCompanies)

		req, _ := http.NewRequest(http.MethodGet, "/companies"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		_ = json.Unmarshal(w.Body.Bytes(), &response)
		return w, response
	}

	t.Run("Lists only approved listings", func(t *testing.T) {
		w, response := list("")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, response["data"].([]interface{}), 4)

		pagination := response["pagination"].(map[string]interface{})
		assert.Equal(t, float64(1), pagination["page"])
		assert.Equal(t, float64(4), pagination["total"])
	})

	t.Run("Search is case-insensitive", func(t *testing.T) {
		w, response := list("?search=GOLDEN")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, response["data"].([]interface{}), 3)
	})

	t.Run("Filters by tenant type", func(t *testing.T) {
		w, response := list("?tenant_type=supplier")
		assert.Equal(t, http.StatusOK, w.Code)
		data := response["data"].([]interface{})
		assert.Len(t, data, 1)
		assert.Equal(t, "Date Farm", data[0].(map[string]interface{})["name"])
	})

	t.Run("Paginates", func(t *testing.T) {
		w, response := list("?page=2&limit=3")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, response["data"].([]interface{}), 1)
		assert.Equal(t, float64(4), response["pagination"].(map[string]interface{})["total"])
	})

	t.Run("Fail with invalid page", func(t *testing.T) {
		w, _ := list("?page=0")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetCompany(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	services.SetLogoService(nil)

	owner := createTestUser(t, db, "auth0|owner", "Owner User", "owner@example.com", models.RoleCompany)
	company := createTestCompany(t, db, owner, models.TenantCompany, "Golden Dates", "golden-dates", models.CompanyApproved)

	reviewer1 := createTestUser(t, db, "auth0|rev1", "Reviewer One", "rev1@example.com", models.RoleUser)
	reviewer2 := createTestUser(t, db, "auth0|rev2", "Reviewer Two", "rev2@example.com", models.RoleUser)
	db.Create(&models.Review{CompanyID: company.ID, UserID: reviewer1.ID, Rating: 5, Comment: "Excellent quality"})
	db.Create(&models.Review{CompanyID: company.ID, UserID: reviewer2.ID, Rating: 4, Comment: "Very good"})

	pendingOwner := createTestUser(t, db, "auth0|pending", "Pending Owner", "pendingowner@example.com", models.RoleCompany)
	pending := createTestCompany(t, db, pendingOwner, models.TenantCompany, "Invisible Dates", "invisible-dates", models.CompanyPending)

	t.Run("Returns listing with average rating", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/companies/:id", GetCompany)

		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/companies/%d", company.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "Golden Dates", data["name"])
		assert.Equal(t, 4.5, data["average_rating"])
	})

	t.Run("Pending listing is not visible", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/companies/:id", GetCompany)

		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/companies/%d", pending.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateCompany(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	owner := createTestUser(t, db, "auth0|owner", "Owner User", "owner@example.com", models.RoleCompany)
	customer := createTestUser(t, db, "auth0|customer", "Customer User", "customer@example.com", models.RoleUser)
	secondOwner := createTestUser(t, db, "auth0|second", "Second Owner", "second@example.com", models.RoleSupplier)

	create := func(auth0ID, role string, body map[string]interface{}) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/companies",
			mockAuthMiddleware(auth0ID, role, "mock-token"),
			CreateCompany,
		)

		payload, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "/companies", bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	validBody := func() map[string]interface{} {
		return map[string]interface{}{
			"tenant_type": models.TenantCompany,
			"name":        "Golden Dates",
			"slug":        "Golden-Dates",
			"description": "Premium dates from Al-Qassim",
			"category":    "dates",
			"city":        "Riyadh",
		}
	}

	t.Run("Business account creates a pending listing", func(t *testing.T) {
		w := create(owner.Auth0ID, models.RoleCompany, validBody())
		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, models.CompanyPending, data["status"])
		assert.Equal(t, "golden-dates", data["slug"])
	})

	t.Run("One listing per account", func(t *testing.T) {
		body := validBody()
		body["slug"] = "another-slug"
		w := create(owner.Auth0ID, models.RoleCompany, body)
		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "COMPANY_EXISTS", response["error"].(map[string]interface{})["code"])
	})

	t.Run("Slug collision conflicts", func(t *testing.T) {
		body := validBody()
		body["tenant_type"] = models.TenantSupplier
		w := create(secondOwner.Auth0ID, models.RoleSupplier, body)
		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "SLUG_EXISTS", response["error"].(map[string]interface{})["code"])
	})

	t.Run("Customer cannot create listings", func(t *testing.T) {
		w := create(customer.Auth0ID, models.RoleUser, validBody())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Fail with invalid tenant type", func(t *testing.T) {
		body := validBody()
		body["slug"] = "warehouse-slug"
		body["tenant_type"] = "warehouse"
		w := create(secondOwner.Auth0ID, models.RoleSupplier, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReviewCompany(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	newTestConfig()

	mockEmail := services.NewMockEmailService()
	mockEmail.SetAsMockForTesting()

	admin := createTestUser(t, db, "auth0|admin", "Admin User", "admin@example.com", models.RoleAdmin)
	customer := createTestUser(t, db, "auth0|customer", "Customer User", "customer@example.com", models.RoleUser)

	owner := createTestUser(t, db, "auth0|owner", "Owner User", "owner@example.com", models.RoleCompany)
	approvable := createTestCompany(t, db, owner, models.TenantCompany, "Golden Dates", "golden-dates", models.CompanyPending)

	rejectableOwner := createTestUser(t, db, "auth0|rejectable", "Rejectable Owner", "rejectable@example.com", models.RoleCompany)
	rejectable := createTestCompany(t, db, rejectableOwner, models.TenantCompany, "Bad Dates", "bad-dates", models.CompanyPending)

	review := func(auth0ID, role string, companyID uint, body map[string]interface{}) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/companies/:id/review",
			mockAuthMiddleware(auth0ID, role, "mock-token"),
			ReviewCompany,
		)

		payload, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/companies/%d/review", companyID), bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Admin approves a pending listing", func(t *testing.T) {
		mockEmail.Clear()
		w := review(admin.Auth0ID, models.RoleAdmin, approvable.ID, map[string]interface{}{"action": "approve"})
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, models.CompanyApproved, data["status"])
		assert.True(t, response["notification"].(map[string]interface{})["ok"].(bool))

		sent := mockEmail.Sent()
		assert.Len(t, sent, 1)
		assert.Equal(t, owner.Email, sent[0].To)
	})

	t.Run("Re-review conflicts", func(t *testing.T) {
		w := review(admin.Auth0ID, models.RoleAdmin, approvable.ID, map[string]interface{}{"action": "reject"})
		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ALREADY_REVIEWED", response["error"].(map[string]interface{})["code"])
	})

	t.Run("Admin rejects with a reason", func(t *testing.T) {
		mockEmail.Clear()
		w := review(admin.Auth0ID, models.RoleAdmin, rejectable.ID, map[string]interface{}{
			"action": "reject",
			"reason": "Incomplete business information",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, models.CompanyRejected, response["data"].(map[string]interface{})["status"])

		sent := mockEmail.Sent()
		assert.Len(t, sent, 1)
		assert.Equal(t, rejectableOwner.Email, sent[0].To)
		assert.Contains(t, sent[0].HTML, "Incomplete business information")
	})

	t.Run("Non-admin cannot review", func(t *testing.T) {
		w := review(customer.Auth0ID, models.RoleUser, rejectable.ID, map[string]interface{}{"action": "approve"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUploadCompanyLogo(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	services.InitLogoService(mockS3)

	owner := createTestUser(t, db, "auth0|owner", "Owner User", "owner@example.com", models.RoleCompany)
	company := createTestCompany(t, db, owner, models.TenantCompany, "Golden Dates", "golden-dates", models.CompanyApproved)
	stranger := createTestUser(t, db, "auth0|stranger", "Stranger User", "stranger@example.com", models.RoleCompany)
	createTestCompany(t, db, stranger, models.TenantCompany, "Other Dates", "other-dates", models.CompanyApproved)

	upload := func(auth0ID string, companyID uint, filename string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, _ := writer.CreateFormFile("logo", filename)
		_, _ = part.Write(content)
		writer.Close()

		router := setupTestRouter()
		router.POST("/companies/:id/logo",
			mockAuthMiddleware(auth0ID, models.RoleCompany, "mock-token"),
			UploadCompanyLogo,
		)

		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/companies/%d/logo", companyID), &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Owner uploads a logo", func(t *testing.T) {
		w := upload(owner.Auth0ID, company.ID, "logo.png", []byte("fake png content"))
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "logos/mock_logo.png", data["logo_s3_key"])
		assert.Contains(t, data["logo_url"], "logos/mock_logo.png")
		assert.True(t, mockS3.FileExists("logos/mock_logo.png"))
	})

	t.Run("Replacing deletes the previous logo", func(t *testing.T) {
		w := upload(owner.Auth0ID, company.ID, "updated.png", []byte("new content"))
		assert.Equal(t, http.StatusOK, w.Code)

		assert.True(t, mockS3.FileExists("logos/mock_updated.png"))
		assert.False(t, mockS3.FileExists("logos/mock_logo.png"))
	})

	t.Run("Only the owner can upload", func(t *testing.T) {
		w := upload(stranger.Auth0ID, company.ID, "logo.png", []byte("fake png content"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Fail with unsupported format", func(t *testing.T) {
		w := upload(owner.Auth0ID, company.ID, "logo.gif", []byte("gif content"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
