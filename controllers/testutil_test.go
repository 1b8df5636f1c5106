package controllers

import (
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/middleware"
	"github.com/dateshub/dateshub-api/models"
)

// setupTestDB creates an in-memory SQLite database with all models migrated
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.OrderRequest{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Plan{},
		&models.Subscription{},
		&models.Review{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware simulates the JWT middleware by setting the same context
// keys the real one does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		customClaims := &middleware.CustomClaims{
			Role: role,
		}
		mockClaims := &validator.ValidatedClaims{
			CustomClaims: customClaims,
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// createTestUser inserts a user with the given role
func createTestUser(t *testing.T, db *gorm.DB, auth0ID, name, email, role string) *models.User {
	user := models.User{
		Auth0ID: auth0ID,
		Name:    name,
		Email:   email,
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

// createTestCompany inserts a company listing owned by the given user
func createTestCompany(t *testing.T, db *gorm.DB, owner *models.User, tenantType, name, slug, status string) *models.Company {
	company := models.Company{
		TenantType: tenantType,
		Name:       name,
		Slug:       slug,
		Category:   "dates",
		City:       "Riyadh",
		Status:     status,
		OwnerID:    owner.ID,
	}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("Failed to create test company: %v", err)
	}
	return &company
}

// createPaidSubscription puts the tenant on an active paid plan
func createPaidSubscription(t *testing.T, db *gorm.DB, company *models.Company) *models.Subscription {
	plan := models.Plan{
		Name:          "Pro",
		Slug:          "pro-" + company.Slug,
		PriceAmount:   4900,
		Currency:      "usd",
		Interval:      "month",
		StripePriceID: "price_test",
		IsActive:      true,
	}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	sub := models.Subscription{
		TenantType: company.TenantType,
		TenantID:   company.ID,
		PlanID:     plan.ID,
		Status:     models.SubscriptionActive,
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}
	return &sub
}

// newTestConfig installs a minimal config for handlers that read it
func newTestConfig() *config.Config {
	cfg := &config.Config{
		GoEnv:       "test",
		FrontendURL: "http://localhost:3000",
	}
	config.SetConfig(cfg)
	return cfg
}
