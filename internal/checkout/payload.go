package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/normalize"
)

// drafts is everything the checkout steps have written so far. Any draft
// may be nil; missing drafts flatten to empty fields.
type drafts struct {
	cart     []domain.CartItem
	customer *domain.CustomerInfo
	shipping *domain.ShippingSelection
	payment  *domain.PaymentSummary
}

func (d drafts) shippingCost() float64 {
	if d.shipping == nil {
		return 0
	}
	return d.shipping.Price
}

func (f *Flow) loadDrafts(ctx context.Context) (drafts, error) {
	var d drafts
	var err error
	if d.cart, err = f.repos.Drafts.Cart(ctx); err != nil {
		return d, err
	}
	if d.customer, err = f.repos.Drafts.Customer(ctx); err != nil {
		return d, err
	}
	if d.shipping, err = f.repos.Drafts.Shipping(ctx); err != nil {
		return d, err
	}
	if d.payment, err = f.repos.Drafts.Payment(ctx); err != nil {
		return d, err
	}
	return d, nil
}

// destination resolves each address field from the shipping draft, falling
// back to the customer's address.
func destination(customer *domain.CustomerInfo, shipping *domain.ShippingSelection) domain.PostalAddress {
	var base, override domain.PostalAddress
	if customer != nil {
		base = customer.PostalAddress
	}
	if shipping != nil && shipping.PostalAddress != nil {
		override = *shipping.PostalAddress
	}
	return domain.PostalAddress{
		Address:  firstNonEmpty(override.Address, base.Address),
		Address2: firstNonEmpty(override.Address2, base.Address2),
		City:     firstNonEmpty(override.City, base.City),
		Province: firstNonEmpty(override.Province, base.Province),
		Postal:   firstNonEmpty(override.Postal, base.Postal),
		Country:  firstNonEmpty(override.Country, base.Country),
	}
}

// buildOrder flattens the drafts into one order with a fresh identifier.
func (f *Flow) buildOrder(d drafts, now time.Time) domain.Order {
	totals := f.totals(d)
	dest := destination(d.customer, d.shipping)

	order := domain.Order{
		ID:               fmt.Sprintf("ORD-%d", now.UnixMilli()),
		CreatedAt:        now.UTC().Truncate(time.Second),
		ShippingAddress:  dest.Address,
		ShippingCity:     dest.City,
		ShippingProvince: dest.Province,
		ShippingPostal:   dest.Postal,
		ShippingCountry:  dest.Country,
		ShippingCost:     totals.Shipping,
		PaymentMethod:    "unknown",
		PaymentSummary:   d.payment.Display(),
		Items:            append([]domain.CartItem{}, d.cart...),
		Subtotal:         totals.Subtotal,
		Tax:              totals.Tax,
		Total:            totals.Total,
		Status:           domain.OrderStatusPaid,
	}

	if d.customer != nil {
		order.CustomerName = d.customer.FullName()
		order.CustomerEmail = d.customer.Email
	}
	if d.shipping != nil {
		order.ShippingMethod = firstNonEmpty(d.shipping.Label, d.shipping.ID)
	}
	if d.payment != nil && d.payment.Method != "" {
		order.PaymentMethod = string(d.payment.Method)
		if d.payment.Method == domain.PaymentMethodCashOnDelivery {
			order.Status = domain.OrderStatusPendingCOD
		}
	}
	return order
}

// Payload renders an order as the flattened record sent to the order API.
func Payload(order domain.Order) (map[string]any, error) {
	raw, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order payload: %w", err)
	}
	record, ok := normalize.ParseRecord(raw)
	if !ok {
		return nil, fmt.Errorf("failed to build order payload for %s", order.ID)
	}
	return record, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
