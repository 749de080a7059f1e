package checkout

import (
	"strings"

	"github.com/jafarshop/storefront/internal/domain"
)

var shippingCatalog = []domain.ShippingOption{
	{ID: "standard", Label: "Standard Shipping", Price: 5.00, Description: "3–7 business days"},
	{ID: "express", Label: "Express Shipping", Price: 15.00, Description: "1–3 business days"},
}

// ShippingOptions returns a copy of the shipping catalog
func ShippingOptions() []domain.ShippingOption {
	out := make([]domain.ShippingOption, len(shippingCatalog))
	copy(out, shippingCatalog)
	return out
}

// LookupShippingOption finds a catalog entry by id
func LookupShippingOption(id string) (domain.ShippingOption, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, opt := range shippingCatalog {
		if opt.ID == id {
			return opt, true
		}
	}
	return domain.ShippingOption{}, false
}
