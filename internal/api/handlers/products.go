package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
)

// ProductCatalog lists and resolves products
type ProductCatalog interface {
	List(ctx context.Context) (*service.ProductList, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type SubmitReviewRequest struct {
	Rating   int    `json:"rating" binding:"required"`
	Text     string `json:"text"`
	UserName string `json:"user_name"`
}

// HandleListProducts handles GET /v1/products
func HandleListProducts(products ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(products ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// HandleListReviews handles GET /v1/products/:id/reviews
func HandleListReviews(source service.ReviewSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		reviews, err := service.NewReviewService(source, repos, logger).List(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}

// HandleSubmitReview handles POST /v1/products/:id/reviews
func HandleSubmitReview(source service.ReviewSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		var req SubmitReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		res, err := service.NewReviewService(source, repos, logger).
			Submit(c.Request.Context(), c.Param("id"), req.Rating, req.Text, req.UserName)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		status := http.StatusCreated
		if res.Stored == service.StoredLocal {
			status = http.StatusAccepted
		}
		c.JSON(status, res)
	}
}
