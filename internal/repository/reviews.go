package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/normalize"
	"github.com/jafarshop/storefront/internal/storage"
)

type reviewRepository struct {
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(store storage.Store, logger *zap.Logger) *reviewRepository {
	return &reviewRepository{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (r *reviewRepository) Local(ctx context.Context, productID string) ([]domain.Review, error) {
	key := storage.LocalReviewsKey(productID)
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []domain.Review{}, nil
	}
	if err != nil {
		r.logger.Error("Failed to read local reviews", zap.String("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	records, ok := normalize.ParseRecords(raw)
	if !ok {
		r.logger.Warn("Ignoring malformed local reviews", zap.String("product_id", productID))
		return []domain.Review{}, nil
	}

	now := r.now()
	reviews := make([]domain.Review, 0, len(records))
	for _, rec := range records {
		review := normalize.Review(rec, productID, now)
		review.Source = domain.ReviewSourceLocal
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// AppendLocal adds a review to the front of the local list
func (r *reviewRepository) AppendLocal(ctx context.Context, productID string, review domain.Review) error {
	existing, err := r.Local(ctx, productID)
	if err != nil {
		return err
	}

	reviews := append([]domain.Review{review}, existing...)
	raw, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to encode local reviews: %w", err)
	}

	key := storage.LocalReviewsKey(productID)
	if err := r.store.Set(ctx, key, raw); err != nil {
		r.logger.Error("Failed to write local reviews", zap.String("product_id", productID), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
