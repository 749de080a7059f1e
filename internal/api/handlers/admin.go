package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/history"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storage"
)

func adminMerger(c *gin.Context, store storage.Store, logger *zap.Logger) (*history.Merger, string, bool) {
	sessionID := c.Param("sid")
	if _, err := uuid.Parse(sessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return nil, "", false
	}
	repos := repository.ForSession(store, sessionID, logger)
	return history.NewMerger(repos.Store, logger), sessionID, true
}

// HandleAdminMergeOrders handles POST /v1/admin/sessions/:sid/orders/merge
func HandleAdminMergeOrders(store storage.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		merger, sessionID, ok := adminMerger(c, store, logger)
		if !ok {
			return
		}

		orders, err := merger.Merge(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("Order history merged",
			zap.String("session_id", sessionID),
			zap.Int("orders", len(orders)),
		)
		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"count":      len(orders),
			"orders":     orders,
		})
	}
}

// HandleAdminListOrders handles GET /v1/admin/sessions/:sid/orders. It shows
// the canonical history as stored, without merging.
func HandleAdminListOrders(store storage.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		merger, sessionID, ok := adminMerger(c, store, logger)
		if !ok {
			return
		}

		orders, err := merger.Stored(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"count":      len(orders),
			"orders":     orders,
		})
	}
}
