package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/storefront/pkg/errors"
)

// AdminAuth checks "Authorization: Bearer <key>" against a bcrypt hash.
// With no hash configured every admin request is refused.
func AdminAuth(keyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := verifyAdminKey(keyHash, c.GetHeader("Authorization")); err != nil {
			logger.Warn("Admin authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("reason", err.Message),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func verifyAdminKey(keyHash, header string) *errors.ErrUnauthorized {
	if keyHash == "" {
		return &errors.ErrUnauthorized{Message: "admin access is not configured"}
	}

	key, ok := strings.CutPrefix(header, "Bearer ")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return &errors.ErrUnauthorized{Message: "missing bearer token"}
	}

	// bcrypt hashes are salted, so the key is verified rather than looked up
	if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
		return &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	return nil
}
