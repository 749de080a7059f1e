package domain

import (
	"strings"
	"time"
)

// PlaceholderImage is used for items that carry no image reference
const PlaceholderImage = "/laptop.png"

// CartItem represents one line of the cart draft
type CartItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// LineTotal is price × quantity
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Qty)
}

// PostalAddress is shared by the customer, shipping and billing drafts
type PostalAddress struct {
	Address  string `json:"address" validate:"required"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city" validate:"required"`
	Province string `json:"province"`
	Postal   string `json:"postal"`
	Country  string `json:"country" validate:"required"`
}

// CustomerInfo is the draft written by the customer information step
type CustomerInfo struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	PostalAddress
}

// FullName joins first and last name
func (c CustomerInfo) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// ShippingOption is one entry of the fixed shipping catalog
type ShippingOption struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Price       float64 `json:"price"`
	Description string  `json:"desc"`
}

// ShippingSelection is the draft written by the shipping step. The destination
// is optional; when absent the customer address is used.
type ShippingSelection struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
	*PostalAddress
}

// PaymentSummary is the masked payment draft. It never holds a full card number or CVV.
type PaymentSummary struct {
	Method            PaymentMethod `json:"method"`
	CardMask          string        `json:"cardMask,omitempty"`
	CardName          string        `json:"cardName,omitempty"`
	Billing           PostalAddress `json:"billing"`
	SameAsShipping    bool          `json:"sameAsShipping"`
	Subtotal          float64       `json:"subtotal"`
	Shipping          float64       `json:"shipping"`
	Amount            float64       `json:"amount"`
	CashDueOnDelivery float64       `json:"cashDueOnDelivery"`
}

// Display renders the summary shown on the review page and sent with the order
func (p *PaymentSummary) Display() string {
	if p == nil || p.Method == "" {
		return "—"
	}
	if p.Method == PaymentMethodCashOnDelivery {
		return "Cash on Delivery (pay at delivery)"
	}
	if p.CardMask != "" {
		return p.CardMask
	}
	if p.Method == PaymentMethodCard {
		return "Credit / Debit card"
	}
	return string(p.Method)
}

// Order is the frozen snapshot of the drafts at submission time
type Order struct {
	ID               string      `json:"id"`
	CreatedAt        time.Time   `json:"created_at"`
	CustomerName     string      `json:"customer_name"`
	CustomerEmail    string      `json:"customer_email,omitempty"`
	ShippingAddress  string      `json:"shipping_address"`
	ShippingCity     string      `json:"shipping_city"`
	ShippingProvince string      `json:"shipping_province"`
	ShippingPostal   string      `json:"shipping_postal"`
	ShippingCountry  string      `json:"shipping_country"`
	ShippingMethod   string      `json:"shipping_method,omitempty"`
	ShippingCost     float64     `json:"shipping_cost"`
	PaymentMethod    string      `json:"payment_method"`
	PaymentSummary   string      `json:"payment_summary"`
	Items            []CartItem  `json:"items"`
	Subtotal         float64     `json:"subtotal"`
	Tax              float64     `json:"tax"`
	Total            float64     `json:"total"`
	Status           OrderStatus `json:"status"`
}

// Product is a catalog entry served by the remote product collaborator
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Featured    bool    `json:"featured"`
	InStock     bool    `json:"in_stock"`
}

// Review sources
const (
	ReviewSourceBackend = "backend"
	ReviewSourceLocal   = "local"
)

// Review is a product review from either the remote collaborator or the local fallback
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
}
