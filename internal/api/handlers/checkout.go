package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/pkg/errors"
)

// CheckoutDeps are the collaborators shared by every session's checkout flow
type CheckoutDeps struct {
	Orders     checkout.OrderCreator
	Calculator *pricing.Calculator
	Publisher  events.Publisher
}

func newFlow(c *gin.Context, deps CheckoutDeps, logger *zap.Logger) (*checkout.Flow, bool) {
	repos, ok := sessionRepos(c)
	if !ok {
		return nil, false
	}
	return checkout.NewFlow(repos, deps.Orders, deps.Calculator, deps.Publisher, logger), true
}

// HandleGetCheckout handles GET /v1/checkout
func HandleGetCheckout(deps CheckoutDeps, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := newFlow(c, deps, logger)
		if !ok {
			return
		}

		snapshot, err := flow.Snapshot(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

// HandleShippingOptions handles GET /v1/checkout/shipping-options
func HandleShippingOptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"options": checkout.ShippingOptions()})
	}
}

// HandlePutCustomer handles PUT /v1/checkout/customer
func HandlePutCustomer(deps CheckoutDeps, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := newFlow(c, deps, logger)
		if !ok {
			return
		}

		var req domain.CustomerInfo
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		customer, err := flow.SubmitCustomer(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondStep(c, flow, logger, gin.H{"customer": customer})
	}
}

// HandlePutShipping handles PUT /v1/checkout/shipping
func HandlePutShipping(deps CheckoutDeps, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := newFlow(c, deps, logger)
		if !ok {
			return
		}

		var req checkout.ShippingInput
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		shipping, err := flow.SelectShipping(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondStep(c, flow, logger, gin.H{"shipping": shipping})
	}
}

// HandlePutPayment handles PUT /v1/checkout/payment
func HandlePutPayment(deps CheckoutDeps, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := newFlow(c, deps, logger)
		if !ok {
			return
		}

		var req checkout.PaymentInput
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		payment, err := flow.SubmitPayment(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondStep(c, flow, logger, gin.H{"payment": payment})
	}
}

// HandleGetReview handles GET /v1/checkout/review
func HandleGetReview(deps CheckoutDeps, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := newFlow(c, deps, logger)
		if !ok {
			return
		}

		order, err := flow.Review(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// HandleSubmitCheckout handles POST /v1/checkout/submit
func HandleSubmitCheckout(deps CheckoutDeps, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := newFlow(c, deps, logger)
		if !ok {
			return
		}

		order, err := flow.Submit(c.Request.Context())
		if err != nil {
			var remote *errors.ErrRemote
			if stderrors.As(err, &remote) {
				c.JSON(http.StatusBadGateway, gin.H{
					"error":     "order submission failed",
					"state":     domain.CheckoutStateFailed,
					"retryable": remote.Retryable(),
				})
				return
			}
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"state": domain.CheckoutStateConfirmed,
			"order": order,
		})
	}
}

// respondStep writes the saved draft together with the new flow position
func respondStep(c *gin.Context, flow *checkout.Flow, logger *zap.Logger, body gin.H) {
	state, err := flow.State(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	body["state"] = state
	c.JSON(http.StatusOK, body)
}
