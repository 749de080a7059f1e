package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storage"
)

// DraftRepository persists the checkout drafts of one browsing session
type DraftRepository interface {
	Cart(ctx context.Context) ([]domain.CartItem, error)
	SaveCart(ctx context.Context, items []domain.CartItem) error
	Customer(ctx context.Context) (*domain.CustomerInfo, error)
	SaveCustomer(ctx context.Context, customer *domain.CustomerInfo) error
	Shipping(ctx context.Context) (*domain.ShippingSelection, error)
	SaveShipping(ctx context.Context, shipping *domain.ShippingSelection) error
	Payment(ctx context.Context) (*domain.PaymentSummary, error)
	SavePayment(ctx context.Context, payment *domain.PaymentSummary) error
	State(ctx context.Context) (domain.CheckoutState, error)
	SaveState(ctx context.Context, state domain.CheckoutState) error
	SaveConfirmedOrder(ctx context.Context, order map[string]any) error
	FailedAttempt(ctx context.Context) (map[string]any, error)
	SaveFailedAttempt(ctx context.Context, payload map[string]any) error
	ClearFailedAttempt(ctx context.Context) error
}

// ReviewRepository keeps reviews that could not be delivered to the remote API
type ReviewRepository interface {
	Local(ctx context.Context, productID string) ([]domain.Review, error)
	AppendLocal(ctx context.Context, productID string, review domain.Review) error
}

// Repositories bundles the repositories of one session
type Repositories struct {
	Store  storage.Store
	Drafts DraftRepository
	Review ReviewRepository
}

// NewRepositories creates repositories over an already scoped store
func NewRepositories(store storage.Store, logger *zap.Logger) *Repositories {
	return &Repositories{
		Store:  store,
		Drafts: NewDraftRepository(store, logger),
		Review: NewReviewRepository(store, logger),
	}
}

// ForSession scopes the shared store to one browsing session
func ForSession(store storage.Store, sessionID string, logger *zap.Logger) *Repositories {
	scoped := storage.WithPrefix(store, storage.SessionPrefix(sessionID))
	return NewRepositories(scoped, logger.With(zap.String("session_id", sessionID)))
}
