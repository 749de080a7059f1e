package normalize

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/jafarshop/storefront/internal/domain"
)

// DefaultTitle is used when an item carries no usable title
const DefaultTitle = "Product"

const maxQuantity = math.MaxInt32

// Item produces a canonical cart item. Quantity is always >= 1 and price >= 0.
// Items without an id get a random one so they stay addressable in the cart.
func Item(r Record) domain.CartItem {
	id := r.String("id", "product")
	title := r.String("title", "name")

	// order lines returned by the API nest the product object
	if nested, ok := r.Object("product"); ok {
		if id == "" {
			id = nested.String("id", "pk")
		}
		if title == "" {
			title = nested.String("title", "name")
		}
	}

	if id == "" {
		id = uuid.NewString()
	}
	if title == "" {
		title = DefaultTitle
	}

	image := r.String("image", "thumbnail")
	if image == "" {
		image = domain.PlaceholderImage
	}

	return domain.CartItem{
		ID:    id,
		Title: title,
		Image: image,
		Price: r.Amount("price", "amount", "unit_price"),
		Qty:   quantity(r),
	}
}

// Items normalizes every object element of a raw list, dropping anything else.
func Items(list []any) []domain.CartItem {
	records := objects(list)
	items := make([]domain.CartItem, 0, len(records))
	for _, rec := range records {
		items = append(items, Item(rec))
	}
	return items
}

// Quantity coerces a raw value to a positive integer: floor, minimum 1.
func Quantity(v any) int {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	f = math.Floor(f)
	if f < 1 {
		return 1
	}
	if f > maxQuantity {
		return maxQuantity
	}
	return int(f)
}

func quantity(r Record) int {
	v, ok := r.First("qty", "quantity")
	if !ok {
		return 1
	}
	return Quantity(v)
}
