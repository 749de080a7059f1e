package checkout

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/history"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testFlow struct {
	*Flow
	repos     *repository.Repositories
	creator   *mockOrderCreator
	publisher *mockPublisher
}

func newTestFlow(t *testing.T, results ...createResult) *testFlow {
	t.Helper()
	repos := repository.NewRepositories(storage.NewMemoryStore(), zap.NewNop())
	creator := &mockOrderCreator{results: results}
	publisher := &mockPublisher{}

	flow := NewFlow(repos, creator, pricing.NewCalculator(pricing.DefaultRate), publisher, zap.NewNop())
	flow.now = func() time.Time { return fixedNow }

	return &testFlow{Flow: flow, repos: repos, creator: creator, publisher: publisher}
}

func (tf *testFlow) seedCart(t *testing.T, items ...domain.CartItem) {
	t.Helper()
	require.NoError(t, tf.repos.Drafts.SaveCart(context.Background(), items))
}

func laptop() domain.CartItem {
	return domain.CartItem{ID: "1", Title: "Laptop", Image: domain.PlaceholderImage, Price: 999, Qty: 1}
}

func cardPayment() PaymentInput {
	return PaymentInput{
		Method:         "card",
		CardNumber:     "4242424242424242",
		CardName:       "Ada Lovelace",
		Expiry:         "12/30",
		CVV:            "123",
		SameAsShipping: true,
	}
}

// walkToReview completes the three steps with an Ontario customer and standard shipping.
func (tf *testFlow) walkToReview(t *testing.T, payment PaymentInput) {
	t.Helper()
	ctx := context.Background()

	_, err := tf.SubmitCustomer(ctx, validCustomer())
	require.NoError(t, err)
	_, err = tf.SelectShipping(ctx, ShippingInput{ID: "standard"})
	require.NoError(t, err)
	_, err = tf.SubmitPayment(ctx, payment)
	require.NoError(t, err)

	state, err := tf.State(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.CheckoutStateReviewing, state)
}

func TestFlow_HappyPath(t *testing.T) {
	tf := newTestFlow(t, createResult{resp: map[string]any{"id": "SRV-1", "created_at": "2026-03-01T12:00:05Z"}})
	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())
	ctx := context.Background()

	preview, err := tf.Review(ctx)
	require.NoError(t, err)
	assert.Equal(t, 999.0, preview.Subtotal)
	assert.Equal(t, 129.87, preview.Tax)
	assert.Equal(t, 5.0, preview.ShippingCost)
	assert.Equal(t, 1133.87, preview.Total)

	order, err := tf.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SRV-1", order.ID)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, 1133.87, order.Total)
	require.Len(t, order.Items, 1)

	require.Equal(t, 1, tf.creator.calls())
	payload := tf.creator.payloads[0]
	assert.Equal(t, "ORD-1772366400000", payload["id"])
	assert.Equal(t, "Ada Lovelace", payload["customer_name"])
	assert.Equal(t, "ada@example.com", payload["customer_email"])
	assert.Equal(t, "1 King St W", payload["shipping_address"])
	assert.Equal(t, "ON", payload["shipping_province"])
	assert.Equal(t, "M5V 2T6", payload["shipping_postal"])
	assert.Equal(t, "Standard Shipping", payload["shipping_method"])
	assert.Equal(t, "card", payload["payment_method"])
	assert.Equal(t, "•••• •••• •••• 4242", payload["payment_summary"])
	assert.Equal(t, 129.87, payload["tax"])
	assert.Equal(t, "paid", payload["status"])

	state, err := tf.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStateConfirmed, state)

	orders, err := history.NewMerger(tf.repos.Store, zap.NewNop()).Merge(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "SRV-1", orders[0].ID)

	require.Len(t, tf.publisher.orders, 1)
	assert.Equal(t, "SRV-1", tf.publisher.orders[0].ID)

	cart, err := tf.repos.Drafts.Cart(ctx)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestFlow_PaymentNeverStoresCardNumber(t *testing.T) {
	tf := newTestFlow(t)
	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())

	raw, err := tf.repos.Store.Get(context.Background(), storage.KeyCheckoutPayment)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "4242424242424242")
	assert.NotContains(t, string(raw), `"123"`)

	payment, err := tf.repos.Drafts.Payment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ON", payment.Billing.Province)
	assert.Equal(t, 999.0, payment.Subtotal)
	assert.Equal(t, 5.0, payment.Shipping)
	assert.Equal(t, 1004.0, payment.Amount)
	assert.Zero(t, payment.CashDueOnDelivery)
}

func TestFlow_EmptyCartRejectedBeforeRemoteCall(t *testing.T) {
	tf := newTestFlow(t)
	tf.walkToReview(t, cardPayment())

	_, err := tf.Submit(context.Background())
	assert.ErrorIs(t, err, errors.ErrEmptyCart)
	assert.Equal(t, 0, tf.creator.calls())
}

func TestFlow_ServerErrorIsRetryable(t *testing.T) {
	tf := newTestFlow(t,
		createResult{err: &errors.ErrRemote{Op: "create order", StatusCode: 500, Body: "boom"}},
		createResult{resp: map[string]any{"id": "SRV-2"}},
	)
	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())
	ctx := context.Background()

	_, err := tf.Submit(ctx)
	var remote *errors.ErrRemote
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 500, remote.StatusCode)
	assert.True(t, remote.Retryable())

	state, err := tf.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStateReviewing, state)

	customer, err := tf.repos.Drafts.Customer(ctx)
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Ada", customer.FirstName)

	failed, err := tf.repos.Drafts.FailedAttempt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1772366400000", failed["id"])

	orders, err := history.NewMerger(tf.repos.Store, zap.NewNop()).Merge(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, tf.publisher.orders)

	order, err := tf.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SRV-2", order.ID)
	assert.Equal(t, 2, tf.creator.calls())

	failed, err = tf.repos.Drafts.FailedAttempt(ctx)
	require.NoError(t, err)
	assert.Nil(t, failed)
}

func TestFlow_NetworkErrorIsWrapped(t *testing.T) {
	tf := newTestFlow(t, createResult{err: stderrors.New("connection refused")})
	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())

	_, err := tf.Submit(context.Background())
	var remote *errors.ErrRemote
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 0, remote.StatusCode)
	assert.ErrorContains(t, err, "connection refused")
}

func TestFlow_SubmitRequiresReview(t *testing.T) {
	tf := newTestFlow(t)
	tf.seedCart(t, laptop())

	_, err := tf.Submit(context.Background())
	var transition *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.CheckoutStateSubmitting.String(), transition.To)
	assert.Equal(t, 0, tf.creator.calls())
}

func TestFlow_StepsMustBeReached(t *testing.T) {
	tf := newTestFlow(t)
	ctx := context.Background()

	_, err := tf.SelectShipping(ctx, ShippingInput{ID: "standard"})
	var transition *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transition)

	_, err = tf.SubmitPayment(ctx, cardPayment())
	require.ErrorAs(t, err, &transition)

	_, err = tf.Review(ctx)
	require.ErrorAs(t, err, &transition)
}

func TestFlow_ValidationBlocksOnlyThatStep(t *testing.T) {
	tf := newTestFlow(t)
	ctx := context.Background()

	bad := validCustomer()
	bad.Email = "nope"
	_, err := tf.SubmitCustomer(ctx, bad)
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepCustomer, verr.Step)

	state, err := tf.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStateCollectingCustomerInfo, state)

	customer, err := tf.repos.Drafts.Customer(ctx)
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestFlow_EditingEarlierStepFromReview(t *testing.T) {
	tf := newTestFlow(t)
	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())
	ctx := context.Background()

	_, err := tf.SelectShipping(ctx, ShippingInput{ID: "express"})
	require.NoError(t, err)

	state, err := tf.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStateCollectingPayment, state)

	payment, err := tf.repos.Drafts.Payment(ctx)
	require.NoError(t, err)
	assert.NotNil(t, payment)
}

func TestFlow_CashOnDelivery(t *testing.T) {
	tf := newTestFlow(t, createResult{resp: map[string]any{}})
	tf.seedCart(t, laptop())
	tf.walkToReview(t, PaymentInput{Method: "cod", SameAsShipping: true})
	ctx := context.Background()

	payment, err := tf.repos.Drafts.Payment(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1004.0, payment.CashDueOnDelivery)

	order, err := tf.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1772366400000", order.ID)
	assert.Equal(t, domain.OrderStatusPendingCOD, order.Status)
	assert.Equal(t, "Cash on Delivery (pay at delivery)", order.PaymentSummary)
}

func TestFlow_BillingRegionDrivesTax(t *testing.T) {
	tf := newTestFlow(t)
	tf.seedCart(t, domain.CartItem{ID: "2", Title: "Item", Image: domain.PlaceholderImage, Price: 100, Qty: 1})
	tf.walkToReview(t, PaymentInput{
		Method:  "cod",
		Billing: domain.PostalAddress{Address: "9 Rue", City: "Montréal", Province: "qc", Country: "Canada"},
	})

	preview, err := tf.Review(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 14.98, preview.Tax)
}

func TestFlow_ConfirmedRestartsFromCustomer(t *testing.T) {
	tf := newTestFlow(t, createResult{resp: map[string]any{"id": "SRV-3"}})
	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())
	ctx := context.Background()

	_, err := tf.Submit(ctx)
	require.NoError(t, err)

	_, err = tf.SelectShipping(ctx, ShippingInput{ID: "express"})
	var transition *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transition)

	_, err = tf.Submit(ctx)
	require.ErrorAs(t, err, &transition)

	_, err = tf.SubmitCustomer(ctx, validCustomer())
	require.NoError(t, err)
	state, err := tf.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStateCollectingShipping, state)
}

func TestFlow_InterruptedSubmissionResumesReview(t *testing.T) {
	tf := newTestFlow(t)
	ctx := context.Background()
	require.NoError(t, tf.repos.Drafts.SaveState(ctx, domain.CheckoutStateSubmitting))

	state, err := tf.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStateReviewing, state)
}

func TestFlow_PublishFailureDoesNotFailCheckout(t *testing.T) {
	tf := newTestFlow(t, createResult{resp: map[string]any{"id": "SRV-4"}})
	tf.publisher.err = stderrors.New("broker down")
	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())

	order, err := tf.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SRV-4", order.ID)
}

func TestFlow_ConfirmedStateWriteFailureStillReturnsOrder(t *testing.T) {
	store := stateWriteFailingStore{Store: storage.NewMemoryStore()}
	repos := repository.NewRepositories(store, zap.NewNop())
	creator := &mockOrderCreator{results: []createResult{{resp: map[string]any{"id": "SRV-5"}}}}
	publisher := &mockPublisher{}
	flow := NewFlow(repos, creator, pricing.NewCalculator(pricing.DefaultRate), publisher, zap.NewNop())
	flow.now = func() time.Time { return fixedNow }
	tf := &testFlow{Flow: flow, repos: repos, creator: creator, publisher: publisher}

	tf.seedCart(t, laptop())
	tf.walkToReview(t, cardPayment())

	order, err := tf.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SRV-5", order.ID)
	assert.Len(t, publisher.orders, 1)

	orders, err := history.NewMerger(store, zap.NewNop()).Stored(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "SRV-5", orders[0].ID)
}

func TestPayload_Flattened(t *testing.T) {
	payload, err := Payload(domain.Order{
		ID:        "ORD-9",
		CreatedAt: fixedNow,
		Items:     []domain.CartItem{laptop()},
		Total:     10,
		Status:    domain.OrderStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", payload["id"])
	assert.Equal(t, "2026-03-01T12:00:00Z", payload["created_at"])
	items, ok := payload["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}
