// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bluedwarf/platform/internal/config"
	"github.com/bluedwarf/platform/internal/handlers"
	"github.com/bluedwarf/platform/internal/middleware"
	"github.com/bluedwarf/platform/internal/providers"
	"github.com/bluedwarf/platform/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Data providers
	seed := time.Now().UnixNano()
	geocoder := providers.NewMockGeocoder(seed)
	listingFeed := providers.NewMockListingFeed(seed)
	recordsFeed := providers.NewMockRecordsFeed(seed)
	licenseBoard := providers.NewMockLicenseBoard()
	identityVerifier := providers.NewMockIdentityVerifier()

	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Storage service degraded, document uploads unavailable")
	}

	valuationService := services.NewValuationService(db, cfg, geocoder, listingFeed, recordsFeed)
	agentService := services.NewAgentService(db, cfg)
	verificationService := services.NewVerificationService(db, cfg, storageService, licenseBoard, identityVerifier)
	subscriptionService := services.NewSubscriptionService(db, cfg)
	leadService := services.NewLeadService(db, cfg)

	// Initialize handlers
	valuationHandler := handlers.NewValuationHandler(valuationService, agentService, leadService)
	agentHandler := handlers.NewAgentHandler(agentService, verificationService, subscriptionService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	leadHandler := handlers.NewLeadHandler(leadService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Valuation and property routes
	api := r.Group("/api")
	{
		api.POST("/valuation", middleware.ValuationRateLimit(), valuationHandler.GetValuation)
		api.GET("/properties/:id", valuationHandler.GetProperty)
		api.GET("/market-trends/:id", valuationHandler.GetMarketTrends)
		api.POST("/leads", valuationHandler.CreateLead)
		api.POST("/agents/search", valuationHandler.SearchNearbyAgents)
	}

	// Agent routes
	agents := r.Group("/agents")
	{
		agents.POST("/register", agentHandler.Register)
		agents.GET("/search", agentHandler.Search)

		uploads := agents.Group("/:id")
		uploads.Use(middleware.UploadRateLimit())
		{
			uploads.POST("/upload-license", agentHandler.UploadLicense)
			uploads.POST("/upload-id", agentHandler.UploadIDDocument)
			uploads.POST("/upload-live-photo", agentHandler.UploadLivePhoto)
		}

		agents.POST("/:id/activate-subscription", agentHandler.ActivateSubscription)
		agents.GET("/:id/leads", agentHandler.GetLeads)
		agents.POST("/:id/update-lead-status", agentHandler.UpdateLeadStatus)
		agents.GET("/:id/profile", agentHandler.GetProfile)
	}

	// Subscription routes
	subscription := r.Group("/subscription")
	{
		subscription.GET("/tiers", subscriptionHandler.GetTiers)
		subscription.POST("/create-payment-intent", subscriptionHandler.CreatePaymentIntent)
		subscription.POST("/confirm-payment", subscriptionHandler.ConfirmPayment)
		subscription.POST("/upgrade", subscriptionHandler.Upgrade)
		subscription.POST("/cancel", subscriptionHandler.Cancel)
		subscription.GET("/billing-history", subscriptionHandler.GetBillingHistory)
		subscription.POST("/webhook", subscriptionHandler.Webhook)
	}

	// Lead distribution routes
	leads := r.Group("/leads")
	{
		leads.POST("/distribute", leadHandler.Distribute)
		leads.GET("/performance", leadHandler.GetPerformance)
	}

	return r
}
