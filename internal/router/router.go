// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/config"
	"github.com/culturelense/culturelense-backend/internal/handlers"
	"github.com/culturelense/culturelense-backend/internal/middleware"
	"github.com/culturelense/culturelense-backend/internal/services"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	authService := services.NewAuthService(db, cfg, logger)
	vendorService := services.NewVendorService(db, logger)
	listingService := services.NewListingService(db, logger)
	purchaseService := services.NewPurchaseService(db, listingService, logger)
	accessService := services.NewAccessService(db, logger)
	entityService := services.NewEntityService(db, logger)
	paymentService := services.NewPaymentService(db, cfg, purchaseService, logger)
	adminService := services.NewAdminService(db, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	vendorHandler := handlers.NewVendorHandler(vendorService, listingService)
	listingHandler := handlers.NewListingHandler(listingService, vendorService, storageService)
	entityHandler := handlers.NewEntityHandler(entityService, accessService, storageService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, purchaseService)
	adminHandler := handlers.NewAdminHandler(adminService, vendorService, paymentService, entityService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Cultural entity catalog
		entities := v1.Group("/entities")
		{
			entities.GET("", entityHandler.Browse)
			entities.GET("/:slug", middleware.OptionalAuth(), entityHandler.GetBySlug)
			entities.GET("/:slug/related", entityHandler.Related)
		}

		// Paid content access
		content := v1.Group("/content")
		content.Use(middleware.AuthRequired())
		{
			content.GET("/:id/access", entityHandler.CheckAccess)
			content.GET("/:id/open", entityHandler.OpenContent)
		}

		// Marketplace listings
		listings := v1.Group("/listings")
		{
			listings.GET("", listingHandler.Browse)
			listings.GET("/:id", listingHandler.GetListing)

			// Draft creation is open to any user with a vendor record;
			// the approval gate sits on activation.
			protected := listings.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", listingHandler.Create)
				protected.PUT("/:id", listingHandler.Update)
				protected.POST("/:id/activate", listingHandler.Activate)
				protected.POST("/:id/archive", listingHandler.Archive)
				protected.POST("/:id/restock", listingHandler.Restock)
				protected.POST("/images", middleware.VendorRequired(), middleware.UploadRateLimit(), listingHandler.UploadImage)
			}
		}

		// Vendor routes
		vendors := v1.Group("/vendors")
		{
			vendors.GET("/:id", vendorHandler.GetVendor)

			protected := vendors.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/apply", vendorHandler.Apply)
				protected.GET("/me", vendorHandler.GetMyProfile)
				protected.GET("/me/listings", vendorHandler.GetMyListings)
			}
		}

		// Checkout and purchase history
		checkout := v1.Group("/checkout")
		checkout.Use(middleware.AuthRequired(), middleware.CheckoutRateLimit())
		{
			checkout.POST("", paymentHandler.Checkout)
			checkout.POST("/confirm", paymentHandler.Confirm)
		}

		purchases := v1.Group("/purchases")
		purchases.Use(middleware.AuthRequired())
		{
			purchases.GET("", paymentHandler.GetMyPurchases)
			purchases.GET("/:transaction_id", paymentHandler.GetPurchase)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/vendors", adminHandler.GetVendors)
			admin.GET("/vendors/pending", adminHandler.GetPendingVendors)
			admin.POST("/vendors/:id/approve", adminHandler.ApproveVendor)
			admin.POST("/vendors/:id/reject", adminHandler.RejectVendor)
			admin.POST("/vendors/:id/suspend", adminHandler.SuspendVendor)
			admin.POST("/vendors/:id/reinstate", adminHandler.ReinstateVendor)
			admin.GET("/transactions", adminHandler.GetTransactions)
			admin.POST("/refunds", adminHandler.ProcessRefund)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
			admin.POST("/entities", adminHandler.CreateEntity)
			admin.POST("/entities/:id/content", adminHandler.AddContentItem)
			admin.POST("/entities/:id/relationships", adminHandler.RelateEntities)
		}
	}

	return r
}
