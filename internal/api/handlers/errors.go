package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

// respondError maps the error taxonomy onto HTTP statuses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation *errors.ErrValidation
		notFound   *errors.ErrNotFound
		transition *errors.ErrInvalidStateTransition
		remote     *errors.ErrRemote
		unauth     *errors.ErrUnauthorized
	)

	switch {
	case stderrors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"step":   validation.Step,
			"fields": validation.Fields,
		})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case stderrors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{
			"error": transition.Error(),
			"from":  transition.From,
			"to":    transition.To,
		})
	case stderrors.Is(err, errors.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case stderrors.As(err, &remote):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "remote store API failed",
			"retryable": remote.Retryable(),
		})
	case stderrors.As(err, &unauth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation failed",
		"details": err.Error(),
	})
}

// sessionRepos fetches the session scoped repositories set by the session middleware
func sessionRepos(c *gin.Context) (*repository.Repositories, bool) {
	_, repos, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return nil, false
	}
	return repos, true
}
