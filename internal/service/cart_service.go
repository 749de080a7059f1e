package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/normalize"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

// ProductLookup resolves a product by id
type ProductLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type cartService struct {
	repos    *repository.Repositories
	products ProductLookup
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(repos *repository.Repositories, products ProductLookup, logger *zap.Logger) *cartService {
	return &cartService{
		repos:    repos,
		products: products,
		logger:   logger,
	}
}

// Items returns the normalized cart
func (s *cartService) Items(ctx context.Context) ([]domain.CartItem, error) {
	return s.repos.Drafts.Cart(ctx)
}

// Add puts an item in the cart. Adding an id already present increases its quantity.
func (s *cartService) Add(ctx context.Context, item domain.CartItem) ([]domain.CartItem, error) {
	item = sanitizeItem(item)

	items, err := s.repos.Drafts.Cart(ctx)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Qty = normalize.Quantity(items[i].Qty + item.Qty)
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	if err := s.repos.Drafts.SaveCart(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddProduct adds qty of a catalog product, taking title, price and image from the catalog.
func (s *cartService) AddProduct(ctx context.Context, productID string, qty int) ([]domain.CartItem, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.Add(ctx, domain.CartItem{
		ID:    product.ID,
		Title: product.Title,
		Image: product.Image,
		Price: product.Price,
		Qty:   qty,
	})
}

// UpdateQuantity sets the quantity of one line, floored to 1.
func (s *cartService) UpdateQuantity(ctx context.Context, id string, qty int) ([]domain.CartItem, error) {
	items, err := s.repos.Drafts.Cart(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, id)
	if idx < 0 {
		return nil, &errors.ErrNotFound{Resource: "cart item", ID: id}
	}
	items[idx].Qty = normalize.Quantity(qty)

	if err := s.repos.Drafts.SaveCart(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *cartService) Remove(ctx context.Context, id string) ([]domain.CartItem, error) {
	items, err := s.repos.Drafts.Cart(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, id)
	if idx < 0 {
		return nil, &errors.ErrNotFound{Resource: "cart item", ID: id}
	}
	items = append(items[:idx], items[idx+1:]...)

	if err := s.repos.Drafts.SaveCart(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *cartService) Clear(ctx context.Context) error {
	return s.repos.Drafts.SaveCart(ctx, []domain.CartItem{})
}

// Subtotal is the sum of price × quantity across the cart
func (s *cartService) Subtotal(ctx context.Context) (float64, error) {
	items, err := s.repos.Drafts.Cart(ctx)
	if err != nil {
		return 0, err
	}
	return pricing.Subtotal(items), nil
}

// sanitizeItem enforces the cart item invariants on caller supplied data.
func sanitizeItem(item domain.CartItem) domain.CartItem {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		item.Title = normalize.DefaultTitle
	}
	if strings.TrimSpace(item.Image) == "" {
		item.Image = domain.PlaceholderImage
	}
	if item.Price < 0 {
		item.Price = 0
	}
	item.Qty = normalize.Quantity(item.Qty)
	return item
}

func indexOf(items []domain.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
