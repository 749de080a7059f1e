package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Where a submitted review ended up
const (
	StoredRemote = "remote"
	StoredLocal  = "local"
)

// ReviewSource is the remote review collaborator
type ReviewSource interface {
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
	SubmitReview(ctx context.Context, productID string, in storeapi.ReviewInput) (*domain.Review, error)
}

// ReviewSubmission is the outcome of Submit
type ReviewSubmission struct {
	Review domain.Review `json:"review"`
	Stored string        `json:"stored"`
}

type reviewService struct {
	source ReviewSource
	repos  *repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(source ReviewSource, repos *repository.Repositories, logger *zap.Logger) *reviewService {
	return &reviewService{
		source: source,
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
}

// List merges remote and locally stored reviews, newest first. An unreachable
// API only hides the remote half.
func (s *reviewService) List(ctx context.Context, productID string) ([]domain.Review, error) {
	remote, err := s.source.ListReviews(ctx, productID)
	if err != nil {
		if !isRemote(err) {
			return nil, err
		}
		s.logger.Warn("Review API unavailable, showing local reviews only", zap.String("product_id", productID), zap.Error(err))
		remote = nil
	}

	local, err := s.repos.Review.Local(ctx, productID)
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(remote)+len(local))
	reviews = append(reviews, remote...)
	reviews = append(reviews, local...)
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

// Submit posts a review. When the API cannot take it the review is kept locally.
func (s *reviewService) Submit(ctx context.Context, productID string, rating int, text, userName string) (*ReviewSubmission, error) {
	if rating < 1 || rating > 5 {
		return nil, &errors.ErrValidation{Step: "review", Fields: map[string]string{"rating": "must be between 1 and 5"}}
	}
	text = strings.TrimSpace(text)
	userName = strings.TrimSpace(userName)

	in := storeapi.ReviewInput{Rating: rating, Text: text, UserName: userName}
	review, err := s.source.SubmitReview(ctx, productID, in)
	if err == nil {
		return &ReviewSubmission{Review: *review, Stored: StoredRemote}, nil
	}
	if !isRemote(err) {
		return nil, err
	}

	s.logger.Warn("Review API unavailable, storing review locally", zap.String("product_id", productID), zap.Error(err))

	now := s.now().UTC()
	if userName == "" {
		userName = "Anonymous"
	}
	local := domain.Review{
		ID:        fmt.Sprintf("%s-%d", productID, now.UnixMilli()),
		ProductID: productID,
		Rating:    rating,
		Text:      text,
		User:      userName,
		CreatedAt: now,
		Source:    domain.ReviewSourceLocal,
	}
	if err := s.repos.Review.AppendLocal(ctx, productID, local); err != nil {
		return nil, err
	}
	return &ReviewSubmission{Review: local, Stored: StoredLocal}, nil
}
