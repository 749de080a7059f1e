package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storage"
)

// SessionHeader carries the browsing session id in both directions
const SessionHeader = "X-Session-ID"

const (
	sessionIDKey    = "session_id"
	sessionReposKey = "session_repos"
)

// SessionMiddleware resolves the browsing session and scopes the store to it.
// A missing or malformed id is replaced by a fresh one, echoed in the response.
func SessionMiddleware(store storage.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()
		}

		c.Header(SessionHeader, sessionID)
		c.Set(sessionIDKey, sessionID)
		c.Set(sessionReposKey, repository.ForSession(store, sessionID, logger))
		c.Request = c.Request.WithContext(events.WithSession(c.Request.Context(), sessionID))

		c.Next()
	}
}

// GetSessionFromContext returns the session id and its repositories
func GetSessionFromContext(c *gin.Context) (string, *repository.Repositories, bool) {
	id, ok := c.Get(sessionIDKey)
	if !ok {
		return "", nil, false
	}
	repos, ok := c.Get(sessionReposKey)
	if !ok {
		return "", nil, false
	}
	return id.(string), repos.(*repository.Repositories), true
}
