package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is the local persistent key/value store backing the checkout drafts
// and the order history. Writes are last-writer-wins and there is no
// atomicity across keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")

// Well-known keys
const (
	KeyCart             = "cart"
	KeyCheckoutCustomer = "checkout_customer"
	KeyCheckoutShipping = "checkout_shipping"
	KeyCheckoutPayment  = "checkout_payment"
	KeyCheckoutOrder    = "checkout_order"
	KeyCheckoutState    = "checkout_state"
	KeyFailedOrder      = "checkout_failed_order"
	KeyOrders           = "orders"

	// Legacy writers of a single most recent order
	KeyLastOrder         = "last_order"
	KeyOrderConfirmation = "order_confirmation"
	KeyRecentOrder       = "recent_order"
)

// LocalReviewsKey is where reviews are kept when the remote collaborator is unavailable
func LocalReviewsKey(productID string) string {
	return fmt.Sprintf("reviews_local_%s", productID)
}

// SessionPrefix namespaces every key of one browsing session
func SessionPrefix(sessionID string) string {
	return fmt.Sprintf("session:%s:", sessionID)
}

type prefixedStore struct {
	inner  Store
	prefix string
}

// WithPrefix returns a Store that transparently prefixes every key.
func WithPrefix(inner Store, prefix string) Store {
	return &prefixedStore{inner: inner, prefix: prefix}
}

func (p *prefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixedStore) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}
