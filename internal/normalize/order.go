package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/storefront/internal/domain"
)

// Order produces a canonical order from any of the historical record shapes.
// now is used when the record carries no date at all.
func Order(r Record, now time.Time) domain.Order {
	created := now.UTC()
	if v, ok := r.FirstNonEmpty("date", "created_at", "timestamp"); ok {
		created = Timestamp(v)
	}

	o := domain.Order{
		ID:               orderID(r, now),
		CreatedAt:        created,
		CustomerName:     customerName(r),
		CustomerEmail:    r.String("customer_email", "email"),
		ShippingAddress:  r.String("shipping_address", "address"),
		ShippingCity:     r.String("shipping_city", "city"),
		ShippingProvince: r.String("shipping_province", "province"),
		ShippingPostal:   r.String("shipping_postal", "postal", "postal_code"),
		ShippingCountry:  r.String("shipping_country", "country"),
		ShippingMethod:   r.String("shipping_method"),
		ShippingCost:     r.Amount("shipping_cost", "shipping_price"),
		PaymentMethod:    r.String("payment_method"),
		PaymentSummary:   r.String("payment_summary"),
		Items:            orderItems(r),
		Subtotal:         r.Amount("subtotal", "total"),
		Tax:              r.Amount("tax", "tax_amount"),
		Total:            r.Amount("total", "grand_total", "amount", "subtotal"),
		Status:           domain.OrderStatus(r.String("status")),
	}
	return o
}

func orderID(r Record, now time.Time) string {
	if id := r.NonEmptyString("id", "order_id", "code"); id != "" {
		return id
	}
	if stamp := r.NonEmptyString("created_at", "date"); stamp != "" {
		return "ORD-" + stamp
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), contentTag(r))
}

// contentTag tells apart undated records synthesized within the same
// millisecond. Records with identical content share it.
func contentTag(r Record) string {
	raw, err := json.Marshal(r)
	if err != nil {
		return "0"
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, raw).String()[:8]
}

func orderItems(r Record) []domain.CartItem {
	list, ok := r.List("items", "products", "lines")
	if !ok {
		return []domain.CartItem{}
	}
	return Items(list)
}

func customerName(r Record) string {
	if name := r.String("customer_name", "full_name"); name != "" {
		return name
	}
	customer, ok := r.Object("customer")
	if !ok {
		return ""
	}
	full := strings.TrimSpace(customer.String("firstName", "first_name") + " " + customer.String("lastName", "last_name"))
	if full != "" {
		return full
	}
	return customer.String("name")
}

// Unwrap returns the order nested under "order" when a legacy writer stored
// an envelope instead of the order itself.
func Unwrap(r Record) Record {
	if inner, ok := r.Object("order"); ok {
		return inner
	}
	return r
}
