package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/history"
)

// HandleListOrders handles GET /v1/orders. Reading the history also folds
// any legacy single-order keys into it.
func HandleListOrders(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		orders, err := history.NewMerger(repos.Store, logger).Merge(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		repos, ok := sessionRepos(c)
		if !ok {
			return
		}

		order, err := history.NewMerger(repos.Store, logger).Find(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
