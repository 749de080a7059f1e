package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/service"
)

// AddCartItemRequest adds either a catalog product (product_id) or a fully described item
type AddCartItemRequest struct {
	ProductID string  `json:"product_id"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	Price     float64 `json:"price" binding:"min=0"`
	Qty       int     `json:"qty"`
}

type UpdateCartItemRequest struct {
	Qty *int `json:"qty" binding:"required"`
}

// CartResponse represents the cart response
type CartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal float64           `json:"subtotal"`
}

func cartResponse(items []domain.CartItem) CartResponse {
	count := 0
	for _, item := range items {
		count += item.Qty
	}
	return CartResponse{Items: items, Count: count, Subtotal: pricing.Subtotal(items)}
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(products service.ProductLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		items, err := service.NewCartService(repos, products, logger).Items(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
	}
}

// HandleAddCartItem handles POST /v1/cart/items
func HandleAddCartItem(products service.ProductLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		cart := service.NewCartService(repos, products, logger)
		var (
			items []domain.CartItem
			err   error
		)
		if req.ProductID != "" {
			items, err = cart.AddProduct(c.Request.Context(), req.ProductID, req.Qty)
		} else {
			items, err = cart.Add(c.Request.Context(), domain.CartItem{
				ID:    req.ID,
				Title: req.Title,
				Image: req.Image,
				Price: req.Price,
				Qty:   req.Qty,
			})
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
	}
}

// HandleUpdateCartItem handles PATCH /v1/cart/items/:id
func HandleUpdateCartItem(products service.ProductLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		items, err := service.NewCartService(repos, products, logger).UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Qty)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
	}
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/:id
func HandleRemoveCartItem(products service.ProductLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		items, err := service.NewCartService(repos, products, logger).Remove(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(items))
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(products service.ProductLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		if err := service.NewCartService(repos, products, logger).Clear(c.Request.Context()); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
