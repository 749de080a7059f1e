package service

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// ProductSource is the remote product collaborator
type ProductSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// ProductList is a catalog listing and whether it came from the static fallback
type ProductList struct {
	Products []domain.Product `json:"products"`
	Fallback bool             `json:"fallback"`
}

// fallbackCatalog keeps the storefront browsable while the product API is down
var fallbackCatalog = []domain.Product{
	{ID: "1", Title: "Laptop", Price: 999, Image: "/laptop.png", InStock: true},
	{ID: "2", Title: "Wireless Headphones", Price: 199, Image: "/headphones.png", InStock: true},
	{ID: "3", Title: "4K TV", Price: 799, Image: "/tv.png", InStock: true},
}

type productService struct {
	source ProductSource
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(source ProductSource, logger *zap.Logger) *productService {
	return &productService{
		source: source,
		logger: logger,
	}
}

// List returns the remote catalog, or the static one when the API is unreachable
func (s *productService) List(ctx context.Context) (*ProductList, error) {
	products, err := s.source.ListProducts(ctx)
	if err == nil {
		return &ProductList{Products: products}, nil
	}
	if !isRemote(err) {
		return nil, err
	}

	s.logger.Warn("Product API unavailable, serving fallback catalog", zap.Error(err))
	return &ProductList{Products: fallbackProducts(), Fallback: true}, nil
}

// Get returns one product. A missing product stays missing; an unreachable
// API falls back to the static catalog.
func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.source.GetProduct(ctx, id)
	if err == nil {
		return product, nil
	}
	if !isRemote(err) {
		return nil, err
	}

	for _, p := range fallbackCatalog {
		if p.ID == id {
			s.logger.Warn("Product API unavailable, serving fallback product", zap.String("product_id", id), zap.Error(err))
			p := p
			return &p, nil
		}
	}
	return nil, err
}

func fallbackProducts() []domain.Product {
	out := make([]domain.Product, len(fallbackCatalog))
	copy(out, fallbackCatalog)
	return out
}

func isRemote(err error) bool {
	var remote *errors.ErrRemote
	return stderrors.As(err, &remote)
}
