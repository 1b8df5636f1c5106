package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dateshub/dateshub-api/config"
	"github.com/dateshub/dateshub-api/controllers"
	"github.com/dateshub/dateshub-api/middleware"
	"github.com/dateshub/dateshub-api/models"
	"github.com/dateshub/dateshub-api/services"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.Info("Starting DatesHub API server...")

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
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
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database migration completed successfully")

	// Optional integrations: the API runs without them, the dependent
	// features degrade (emails become skipped results, logo uploads fail)
	services.InitEmailService(cfg)

	if s3Service, err := services.InitS3Service(); err != nil {
		log.Warnf("S3 service unavailable, logo uploads disabled: %v", err)
	} else {
		services.InitLogoService(s3Service)
	}

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Infof("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware and the API v1 route table
func setupRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	authRequired := middleware.EnsureValidToken(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// Public directory
		v1.GET("/companies", controllers.ListCompanies)
		v1.GET("/companies/:id", controllers.GetCompany)
		v1.GET("/companies/:id/reviews", controllers.ListCompanyReviews)

		// Stripe calls this, authenticated by signature instead of JWT
		v1.POST("/billing/webhook", controllers.StripeWebhook)

		authed := v1.Group("")
		authed.Use(authRequired)
		{
			// Users
			authed.POST("/users", controllers.CreateUser)
			authed.GET("/users/me", controllers.GetMyProfile)
			authed.PUT("/users/me", controllers.UpdateMyProfile)

			// Business listings
			authed.POST("/companies", controllers.CreateCompany)
			authed.POST("/companies/:id/review", controllers.ReviewCompany)
			authed.POST("/companies/:id/logo", controllers.UploadCompanyLogo)
			authed.POST("/companies/:id/reviews", controllers.CreateReview)

			// Order requests
			authed.POST("/order-requests", controllers.SubmitOrderRequest)
			authed.POST("/order-requests/:id/respond", controllers.RespondToOrderRequest)
			authed.GET("/order-requests", controllers.ListMyOrderRequests)
			authed.GET("/order-requests/received", controllers.ListReceivedOrderRequests)

			// Messaging
			authed.POST("/messaging/conversations", controllers.StartConversation)
			authed.GET("/messaging/conversations", controllers.ListConversations)
			authed.POST("/messaging/conversations/:id/messages", controllers.SendMessage)
			authed.GET("/messaging/conversations/:id/messages", controllers.ListMessages)
			authed.POST("/messaging/conversations/:id/read", controllers.MarkConversationRead)
			authed.GET("/messaging/unread", controllers.GetUnreadCount)

			// Billing
			authed.POST("/billing/checkout", controllers.CreateCheckoutSession)
			authed.POST("/billing/portal", controllers.CreateBillingPortalSession)
			authed.GET("/billing/subscription", controllers.GetMySubscription)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "DatesHub API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
