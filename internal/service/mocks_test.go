package service

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/pkg/errors"
)

type mockProductSource struct {
	products []domain.Product
	err      error
}

func (m *mockProductSource) ListProducts(context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockProductSource) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: id}
}

type mockReviewSource struct {
	reviews   []domain.Review
	listErr   error
	submitErr error
	submitted []storeapi.ReviewInput
}

func (m *mockReviewSource) ListReviews(context.Context, string) ([]domain.Review, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.reviews, nil
}

func (m *mockReviewSource) SubmitReview(_ context.Context, productID string, in storeapi.ReviewInput) (*domain.Review, error) {
	m.submitted = append(m.submitted, in)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &domain.Review{ID: "99", ProductID: productID, Rating: in.Rating, Text: in.Text, Source: domain.ReviewSourceBackend}, nil
}
