// Package checkout drives one session through the checkout steps and submits
// the assembled order to the remote order API.
package checkout

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/history"
	"github.com/jafarshop/storefront/internal/normalize"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

// OrderCreator is the remote order-creation collaborator
type OrderCreator interface {
	CreateOrder(ctx context.Context, payload map[string]any) (map[string]any, error)
}

// Snapshot is the current position and drafts of one checkout
type Snapshot struct {
	State         domain.CheckoutState      `json:"state"`
	Cart          []domain.CartItem         `json:"cart"`
	Customer      *domain.CustomerInfo      `json:"customer"`
	Shipping      *domain.ShippingSelection `json:"shipping"`
	Payment       *domain.PaymentSummary    `json:"payment"`
	Totals        pricing.Totals            `json:"totals"`
	FailedAttempt map[string]any            `json:"failed_attempt,omitempty"`
}

// Flow is the checkout state machine of one browsing session
type Flow struct {
	repos     *repository.Repositories
	history   *history.Merger
	calc      *pricing.Calculator
	orders    OrderCreator
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewFlow creates a checkout flow over session-scoped repositories
func NewFlow(
	repos *repository.Repositories,
	orders OrderCreator,
	calc *pricing.Calculator,
	publisher events.Publisher,
	logger *zap.Logger,
) *Flow {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Flow{
		repos:     repos,
		history:   history.NewMerger(repos.Store, logger),
		calc:      calc,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// State returns the current position. An attempt interrupted while
// submitting is treated as back in review.
func (f *Flow) State(ctx context.Context) (domain.CheckoutState, error) {
	state, err := f.repos.Drafts.State(ctx)
	if err != nil {
		return state, err
	}
	if state == domain.CheckoutStateSubmitting {
		f.logger.Warn("Recovering interrupted submission")
		return domain.CheckoutStateReviewing, nil
	}
	return state, nil
}

// Snapshot loads every draft together with the derived totals
func (f *Flow) Snapshot(ctx context.Context) (*Snapshot, error) {
	state, err := f.State(ctx)
	if err != nil {
		return nil, err
	}
	d, err := f.loadDrafts(ctx)
	if err != nil {
		return nil, err
	}
	failed, err := f.repos.Drafts.FailedAttempt(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		State:         state,
		Cart:          d.cart,
		Customer:      d.customer,
		Shipping:      d.shipping,
		Payment:       d.payment,
		Totals:        f.totals(d),
		FailedAttempt: failed,
	}, nil
}

// SubmitCustomer validates and stores the customer draft. After a confirmed
// order this starts a new checkout.
func (f *Flow) SubmitCustomer(ctx context.Context, in domain.CustomerInfo) (*domain.CustomerInfo, error) {
	if _, err := f.enter(ctx, domain.CheckoutStateCollectingCustomerInfo); err != nil {
		return nil, err
	}

	customer, err := ValidateCustomer(in)
	if err != nil {
		return nil, err
	}
	if err := f.repos.Drafts.SaveCustomer(ctx, &customer); err != nil {
		return nil, err
	}
	if err := f.moveTo(ctx, domain.CheckoutStateCollectingShipping); err != nil {
		return nil, err
	}
	return &customer, nil
}

// SelectShipping validates and stores the shipping draft
func (f *Flow) SelectShipping(ctx context.Context, in ShippingInput) (*domain.ShippingSelection, error) {
	if _, err := f.enter(ctx, domain.CheckoutStateCollectingShipping); err != nil {
		return nil, err
	}

	selection, err := ValidateShipping(in)
	if err != nil {
		return nil, err
	}
	if err := f.repos.Drafts.SaveShipping(ctx, &selection); err != nil {
		return nil, err
	}
	if err := f.moveTo(ctx, domain.CheckoutStateCollectingPayment); err != nil {
		return nil, err
	}
	return &selection, nil
}

// SubmitPayment validates the payment form and stores only its masked summary
func (f *Flow) SubmitPayment(ctx context.Context, in PaymentInput) (*domain.PaymentSummary, error) {
	if _, err := f.enter(ctx, domain.CheckoutStateCollectingPayment); err != nil {
		return nil, err
	}

	summary, err := ValidatePayment(in, f.now())
	if err != nil {
		return nil, err
	}

	d, err := f.loadDrafts(ctx)
	if err != nil {
		return nil, err
	}
	if summary.SameAsShipping {
		summary.Billing = destination(d.customer, d.shipping)
	}

	shippingCost := d.shippingCost()
	summary.Subtotal = pricing.Subtotal(d.cart)
	summary.Shipping = shippingCost
	summary.Amount = pricing.AmountDue(d.cart, shippingCost)
	if summary.Method == domain.PaymentMethodCashOnDelivery {
		summary.CashDueOnDelivery = summary.Amount
	}

	if err := f.repos.Drafts.SavePayment(ctx, &summary); err != nil {
		return nil, err
	}
	if err := f.moveTo(ctx, domain.CheckoutStateReviewing); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Review builds the order that Submit would send, without sending it
func (f *Flow) Review(ctx context.Context) (*domain.Order, error) {
	state, err := f.State(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Reached(domain.CheckoutStateReviewing) || state == domain.CheckoutStateConfirmed {
		return nil, &errors.ErrInvalidStateTransition{From: state.String(), To: domain.CheckoutStateReviewing.String()}
	}

	d, err := f.loadDrafts(ctx)
	if err != nil {
		return nil, err
	}
	order := f.buildOrder(d, f.now())
	return &order, nil
}

// Submit sends the flattened order to the remote API. The empty-cart check
// happens before any remote call. On failure the payload is kept as the
// single local fallback copy and the flow returns to review for a retry.
func (f *Flow) Submit(ctx context.Context) (*domain.Order, error) {
	d, err := f.loadDrafts(ctx)
	if err != nil {
		return nil, err
	}
	if len(d.cart) == 0 {
		return nil, errors.ErrEmptyCart
	}

	state, err := f.State(ctx)
	if err != nil {
		return nil, err
	}
	if !state.CanTransitionTo(domain.CheckoutStateSubmitting) {
		return nil, &errors.ErrInvalidStateTransition{From: state.String(), To: domain.CheckoutStateSubmitting.String()}
	}
	if err := f.repos.Drafts.SaveState(ctx, domain.CheckoutStateSubmitting); err != nil {
		return nil, err
	}

	order := f.buildOrder(d, f.now())
	payload, err := Payload(order)
	if err != nil {
		f.restoreReview(ctx)
		return nil, err
	}

	f.logger.Info("Submitting order",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total),
	)

	resp, err := f.orders.CreateOrder(ctx, payload)
	if err != nil {
		return nil, f.fail(ctx, order.ID, payload, err)
	}

	return f.confirm(ctx, payload, resp)
}

func (f *Flow) confirm(ctx context.Context, payload, resp map[string]any) (*domain.Order, error) {
	record := make(normalize.Record, len(payload)+len(resp))
	for k, v := range payload {
		record[k] = v
	}
	for k, v := range normalize.Unwrap(normalize.Record(resp)) {
		if v != nil {
			record[k] = v
		}
	}
	order := normalize.Order(record, f.now())

	// The remote order already exists, so from here on writes are best effort.
	if err := f.repos.Drafts.SaveState(ctx, domain.CheckoutStateConfirmed); err != nil {
		f.logger.Error("Failed to persist confirmed state", zap.String("order_id", order.ID), zap.Error(err))
	}
	f.logger.Info("Order confirmed", zap.String("order_id", order.ID))

	// checkout_order is itself a history source, so a failed append heals on the next merge.
	if err := f.repos.Drafts.SaveConfirmedOrder(ctx, record); err != nil {
		f.logger.Error("Failed to cache confirmed order", zap.String("order_id", order.ID), zap.Error(err))
	}
	if _, err := f.history.Append(ctx, order); err != nil {
		f.logger.Error("Failed to append order to history", zap.String("order_id", order.ID), zap.Error(err))
	}
	if err := f.repos.Drafts.ClearFailedAttempt(ctx); err != nil {
		f.logger.Warn("Failed to clear failed attempt", zap.Error(err))
	}
	if err := f.publisher.PublishOrderConfirmed(ctx, order); err != nil {
		f.logger.Error("Failed to publish order confirmation", zap.String("order_id", order.ID), zap.Error(err))
	}

	return &order, nil
}

func (f *Flow) fail(ctx context.Context, orderID string, payload map[string]any, cause error) error {
	f.logger.Error("Order submission failed",
		zap.String("order_id", orderID),
		zap.String("state", domain.CheckoutStateFailed.String()),
		zap.Error(cause),
	)

	if err := f.repos.Drafts.SaveFailedAttempt(ctx, payload); err != nil {
		f.logger.Error("Failed to store failed attempt", zap.Error(err))
	}
	f.restoreReview(ctx)

	var remote *errors.ErrRemote
	if stderrors.As(cause, &remote) {
		return remote
	}
	return &errors.ErrRemote{Op: "create order", Err: cause}
}

// restoreReview moves Submitting -> Failed -> Reviewing. Failed is never persisted.
func (f *Flow) restoreReview(ctx context.Context) {
	if err := f.repos.Drafts.SaveState(ctx, domain.CheckoutStateReviewing); err != nil {
		f.logger.Error("Failed to restore review state", zap.Error(err))
	}
}

// enter checks that the flow has reached step and may edit it. A confirmed
// checkout may only restart from the customer step.
func (f *Flow) enter(ctx context.Context, step domain.CheckoutState) (domain.CheckoutState, error) {
	state, err := f.State(ctx)
	if err != nil {
		return state, err
	}

	allowed := state.IsEditable() && state.Reached(step)
	if state == domain.CheckoutStateConfirmed {
		allowed = step == domain.CheckoutStateCollectingCustomerInfo
	}
	if !allowed {
		return state, &errors.ErrInvalidStateTransition{From: state.String(), To: step.String()}
	}
	return state, nil
}

func (f *Flow) moveTo(ctx context.Context, next domain.CheckoutState) error {
	state, err := f.State(ctx)
	if err != nil {
		return err
	}
	if !state.CanTransitionTo(next) {
		return &errors.ErrInvalidStateTransition{From: state.String(), To: next.String()}
	}
	if err := f.repos.Drafts.SaveState(ctx, next); err != nil {
		return fmt.Errorf("failed to move checkout to %s: %w", next, err)
	}
	return nil
}

func (f *Flow) totals(d drafts) pricing.Totals {
	region := pricing.ResolveRegion(d.payment, d.customer, d.shipping)
	return f.calc.Calculate(d.cart, d.shippingCost(), region)
}
