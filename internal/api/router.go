package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/storage"
)

// RemoteStore is the remote product, review and order API
type RemoteStore interface {
	service.ProductSource
	service.ReviewSource
	checkout.OrderCreator
}

// Dependencies are the long-lived collaborators shared by all requests
type Dependencies struct {
	Store      storage.Store
	Remote     RemoteStore
	Calculator *pricing.Calculator
	Publisher  events.Publisher
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	products := service.NewProductService(deps.Remote, logger)
	checkoutDeps := handlers.CheckoutDeps{
		Orders:     deps.Remote,
		Calculator: deps.Calculator,
		Publisher:  deps.Publisher,
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/products", handlers.HandleListProducts(products, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(products, logger))

		// Session routes
		session := v1.Group("")
		session.Use(middleware.SessionMiddleware(deps.Store, logger))
		{
			session.GET("/products/:id/reviews", handlers.HandleListReviews(deps.Remote, logger))
			session.POST("/products/:id/reviews", handlers.HandleSubmitReview(deps.Remote, logger))

			session.GET("/cart", handlers.HandleGetCart(products, logger))
			session.DELETE("/cart", handlers.HandleClearCart(products, logger))
			session.POST("/cart/items", handlers.HandleAddCartItem(products, logger))
			session.PATCH("/cart/items/:id", handlers.HandleUpdateCartItem(products, logger))
			session.DELETE("/cart/items/:id", handlers.HandleRemoveCartItem(products, logger))

			session.GET("/checkout", handlers.HandleGetCheckout(checkoutDeps, logger))
			session.GET("/checkout/shipping-options", handlers.HandleShippingOptions())
			session.PUT("/checkout/customer", handlers.HandlePutCustomer(checkoutDeps, logger))
			session.PUT("/checkout/shipping", handlers.HandlePutShipping(checkoutDeps, logger))
			session.PUT("/checkout/payment", handlers.HandlePutPayment(checkoutDeps, logger))
			session.GET("/checkout/review", handlers.HandleGetReview(checkoutDeps, logger))
			session.POST("/checkout/submit", handlers.HandleSubmitCheckout(checkoutDeps, logger))

			session.GET("/orders", handlers.HandleListOrders(logger))
			session.GET("/orders/:id", handlers.HandleGetOrder(logger))
		}

		// Admin routes
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuth(cfg.Admin.APIKeyHash, logger))
		{
			adminRoutes.POST("/sessions/:sid/orders/merge", handlers.HandleAdminMergeOrders(deps.Store, logger))
			adminRoutes.GET("/sessions/:sid/orders", handlers.HandleAdminListOrders(deps.Store, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("session_id", c.Writer.Header().Get(middleware.SessionHeader)),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
