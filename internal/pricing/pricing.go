package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
)

// DefaultRate applies to any region missing from the rate table
const DefaultRate = 0.05

// provinceRates maps a region code to its combined sales tax rate
var provinceRates = map[string]float64{
	"ON": 0.13,
	"NB": 0.15,
	"NL": 0.15,
	"NS": 0.15,
	"PE": 0.15,
	"BC": 0.12,
	"MB": 0.12,
	"SK": 0.11,
	"AB": 0.05,
	"NT": 0.05,
	"NU": 0.05,
	"YT": 0.05,
	"QC": 0.14975,
}

// Totals is the derived money breakdown of a cart
type Totals struct {
	Region   string  `json:"region"`
	TaxRate  float64 `json:"tax_rate"`
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Calculator derives tax and totals from a static rate table
type Calculator struct {
	rates       map[string]decimal.Decimal
	defaultRate decimal.Decimal
}

// NewCalculator creates a calculator over the province table with the given fallback rate
func NewCalculator(defaultRate float64) *Calculator {
	rates := make(map[string]decimal.Decimal, len(provinceRates))
	for code, rate := range provinceRates {
		rates[code] = decimal.NewFromFloat(rate)
	}
	return &Calculator{
		rates:       rates,
		defaultRate: decimal.NewFromFloat(defaultRate),
	}
}

// Rate looks up the rate for a region code; unknown or empty codes get the default.
func (c *Calculator) Rate(region string) float64 {
	return c.rate(region).InexactFloat64()
}

func (c *Calculator) rate(region string) decimal.Decimal {
	if rate, ok := c.rates[normalizeRegion(region)]; ok {
		return rate
	}
	return c.defaultRate
}

// Calculate computes tax = round(subtotal × rate, 2) and total = subtotal + shipping + tax.
func (c *Calculator) Calculate(items []domain.CartItem, shippingCost float64, region string) Totals {
	subtotal := subtotal(items).Round(2)
	shipping := decimal.NewFromFloat(nonNegative(shippingCost)).Round(2)
	rate := c.rate(region)
	tax := subtotal.Mul(rate).Round(2)

	return Totals{
		Region:   normalizeRegion(region),
		TaxRate:  rate.InexactFloat64(),
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    subtotal.Add(shipping).Add(tax).InexactFloat64(),
	}
}

// Subtotal sums price × quantity across the items, rounded to cents.
func Subtotal(items []domain.CartItem) float64 {
	return subtotal(items).Round(2).InexactFloat64()
}

// AmountDue is subtotal + shipping, before tax.
func AmountDue(items []domain.CartItem, shippingCost float64) float64 {
	shipping := decimal.NewFromFloat(nonNegative(shippingCost)).Round(2)
	return subtotal(items).Round(2).Add(shipping).InexactFloat64()
}

func subtotal(items []domain.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(nonNegative(item.Price)).Mul(decimal.NewFromInt(int64(item.Qty)))
		sum = sum.Add(line)
	}
	return sum
}

// ResolveRegion picks the tax region: billing province first, then the
// customer's province, then the shipping step's province.
func ResolveRegion(payment *domain.PaymentSummary, customer *domain.CustomerInfo, shipping *domain.ShippingSelection) string {
	if payment != nil && strings.TrimSpace(payment.Billing.Province) != "" {
		return normalizeRegion(payment.Billing.Province)
	}
	if customer != nil && strings.TrimSpace(customer.Province) != "" {
		return normalizeRegion(customer.Province)
	}
	if shipping != nil && shipping.PostalAddress != nil && strings.TrimSpace(shipping.Province) != "" {
		return normalizeRegion(shipping.Province)
	}
	return ""
}

func normalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
