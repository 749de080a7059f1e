package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/jafarshop/storefront/internal/domain"
)

// Product normalizes a catalog record from the remote product collaborator.
func Product(r Record) domain.Product {
	title := r.String("title", "name")
	if title == "" {
		title = DefaultTitle
	}
	image := r.String("image", "thumbnail", "image_url")
	if image == "" {
		image = domain.PlaceholderImage
	}

	return domain.Product{
		ID:          r.String("id", "pk", "product"),
		Title:       title,
		Slug:        r.String("slug"),
		Description: r.String("description"),
		Price:       r.Amount("price", "amount", "unit_price"),
		Image:       image,
		Featured:    r.Bool(false, "featured"),
		InStock:     r.Bool(true, "in_stock", "inStock"),
	}
}

// Review normalizes a review. Reviews carrying a server id are "backend",
// everything else "local".
func Review(r Record, productID string, now time.Time) domain.Review {
	product := r.String("product", "product_id")
	if product == "" {
		product = productID
	}

	created := now.UTC()
	if v, ok := r.First("created_at", "created", "date"); ok {
		created = Timestamp(v)
	}

	id := r.String("id", "_id")
	source := domain.ReviewSourceBackend
	if r.String("id") == "" {
		source = domain.ReviewSourceLocal
	}
	if id == "" {
		id = fmt.Sprintf("%s-%s", product, r.String("created_at"))
		if r.String("created_at") == "" {
			id = fmt.Sprintf("%s-%d", product, now.UnixMilli())
		}
	}

	rating := 0
	if v, ok := r.First("rating", "stars", "score"); ok {
		rating = int(toAmount(v))
	}

	return domain.Review{
		ID:        id,
		ProductID: product,
		Rating:    rating,
		Text:      r.String("text", "body", "comment"),
		User:      reviewer(r),
		CreatedAt: created,
		Source:    source,
	}
}

func reviewer(r Record) string {
	if user := r.String("user_name", "user"); user != "" {
		return user
	}
	if email := r.String("user_email"); email != "" {
		return strings.SplitN(email, "@", 2)[0]
	}
	return "Anonymous"
}
