package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/normalize"
	"github.com/jafarshop/storefront/internal/storage"
)

type draftRepository struct {
	store  storage.Store
	logger *zap.Logger
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(store storage.Store, logger *zap.Logger) *draftRepository {
	return &draftRepository{
		store:  store,
		logger: logger,
	}
}

// read returns nil, nil for absent keys. Only store failures are errors.
func (r *draftRepository) read(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to read draft", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return raw, nil
}

func (r *draftRepository) write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		r.logger.Error("Failed to write draft", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// decode unmarshals a draft; malformed content is logged and treated as absent.
func (r *draftRepository) decode(key string, raw []byte, v any) bool {
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		r.logger.Warn("Ignoring malformed draft", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Cart returns the normalized cart. Legacy item shapes are accepted.
func (r *draftRepository) Cart(ctx context.Context) ([]domain.CartItem, error) {
	raw, err := r.read(ctx, storage.KeyCart)
	if err != nil || raw == nil {
		return []domain.CartItem{}, err
	}

	records, ok := normalize.ParseRecords(raw)
	if !ok {
		r.logger.Warn("Ignoring malformed draft", zap.String("key", storage.KeyCart))
		return []domain.CartItem{}, nil
	}

	items := make([]domain.CartItem, 0, len(records))
	for _, rec := range records {
		items = append(items, normalize.Item(rec))
	}
	return items, nil
}

func (r *draftRepository) SaveCart(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	return r.write(ctx, storage.KeyCart, items)
}

func (r *draftRepository) Customer(ctx context.Context) (*domain.CustomerInfo, error) {
	raw, err := r.read(ctx, storage.KeyCheckoutCustomer)
	if err != nil {
		return nil, err
	}
	var customer domain.CustomerInfo
	if !r.decode(storage.KeyCheckoutCustomer, raw, &customer) {
		return nil, nil
	}
	return &customer, nil
}

func (r *draftRepository) SaveCustomer(ctx context.Context, customer *domain.CustomerInfo) error {
	return r.write(ctx, storage.KeyCheckoutCustomer, customer)
}

func (r *draftRepository) Shipping(ctx context.Context) (*domain.ShippingSelection, error) {
	raw, err := r.read(ctx, storage.KeyCheckoutShipping)
	if err != nil {
		return nil, err
	}
	var shipping domain.ShippingSelection
	if !r.decode(storage.KeyCheckoutShipping, raw, &shipping) {
		return nil, nil
	}
	return &shipping, nil
}

func (r *draftRepository) SaveShipping(ctx context.Context, shipping *domain.ShippingSelection) error {
	return r.write(ctx, storage.KeyCheckoutShipping, shipping)
}

func (r *draftRepository) Payment(ctx context.Context) (*domain.PaymentSummary, error) {
	raw, err := r.read(ctx, storage.KeyCheckoutPayment)
	if err != nil {
		return nil, err
	}
	var payment domain.PaymentSummary
	if !r.decode(storage.KeyCheckoutPayment, raw, &payment) {
		return nil, nil
	}
	if method, ok := domain.ParsePaymentMethod(string(payment.Method)); ok {
		payment.Method = method
	}
	return &payment, nil
}

func (r *draftRepository) SavePayment(ctx context.Context, payment *domain.PaymentSummary) error {
	return r.write(ctx, storage.KeyCheckoutPayment, payment)
}

// State returns the persisted flow position. Unknown values restart the flow.
func (r *draftRepository) State(ctx context.Context) (domain.CheckoutState, error) {
	raw, err := r.read(ctx, storage.KeyCheckoutState)
	if err != nil {
		return domain.CheckoutStateCollectingCustomerInfo, err
	}
	if raw == nil {
		return domain.CheckoutStateCollectingCustomerInfo, nil
	}

	state := domain.CheckoutState(strings.TrimSpace(string(raw)))
	if !state.IsValid() {
		r.logger.Warn("Ignoring unknown checkout state", zap.String("state", string(raw)))
		return domain.CheckoutStateCollectingCustomerInfo, nil
	}
	return state, nil
}

func (r *draftRepository) SaveState(ctx context.Context, state domain.CheckoutState) error {
	if err := r.store.Set(ctx, storage.KeyCheckoutState, []byte(state)); err != nil {
		r.logger.Error("Failed to write checkout state", zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", storage.KeyCheckoutState, err)
	}
	return nil
}

// SaveConfirmedOrder caches the order acknowledged by the remote API
func (r *draftRepository) SaveConfirmedOrder(ctx context.Context, order map[string]any) error {
	return r.write(ctx, storage.KeyCheckoutOrder, order)
}

func (r *draftRepository) FailedAttempt(ctx context.Context) (map[string]any, error) {
	raw, err := r.read(ctx, storage.KeyFailedOrder)
	if err != nil {
		return nil, err
	}
	record, ok := normalize.ParseRecord(raw)
	if !ok {
		return nil, nil
	}
	return record, nil
}

// SaveFailedAttempt keeps the single last payload the remote API did not accept
func (r *draftRepository) SaveFailedAttempt(ctx context.Context, payload map[string]any) error {
	return r.write(ctx, storage.KeyFailedOrder, payload)
}

func (r *draftRepository) ClearFailedAttempt(ctx context.Context) error {
	if err := r.store.Remove(ctx, storage.KeyFailedOrder); err != nil {
		return fmt.Errorf("failed to remove %s: %w", storage.KeyFailedOrder, err)
	}
	return nil
}
