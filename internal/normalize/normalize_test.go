package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestItem_ResolvesAliases(t *testing.T) {
	item := Item(Record{
		"product":    float64(7),
		"name":       "Laptop",
		"unit_price": "999.50",
		"quantity":   float64(2),
		"thumbnail":  "/img/laptop.png",
	})

	assert.Equal(t, domain.CartItem{
		ID:    "7",
		Title: "Laptop",
		Image: "/img/laptop.png",
		Price: 999.5,
		Qty:   2,
	}, item)
}

func TestItem_Defaults(t *testing.T) {
	item := Item(Record{})

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, DefaultTitle, item.Title)
	assert.Equal(t, domain.PlaceholderImage, item.Image)
	assert.Equal(t, 0.0, item.Price)
	assert.Equal(t, 1, item.Qty)
}

func TestItem_PrefersFirstAlias(t *testing.T) {
	item := Item(Record{"id": "a", "price": nil, "amount": float64(3), "qty": float64(4), "quantity": float64(9)})

	assert.Equal(t, 3.0, item.Price)
	assert.Equal(t, 4, item.Qty)
}

func TestItem_NestedProduct(t *testing.T) {
	item := Item(Record{
		"product": map[string]any{"id": float64(3), "name": "4K TV"},
		"qty":     float64(1),
		"price":   "799.00",
	})

	assert.Equal(t, "3", item.ID)
	assert.Equal(t, "4K TV", item.Title)
	assert.Equal(t, 799.0, item.Price)
}

func TestItem_MalformedNeverBreaksInvariants(t *testing.T) {
	cases := []Record{
		{"price": "abc", "qty": "many"},
		{"price": float64(-12), "qty": float64(-3)},
		{"price": math.NaN(), "qty": math.Inf(1)},
		{"price": map[string]any{"x": 1}, "qty": []any{1}},
		{"price": true, "qty": float64(0.4)},
		{"price": " 12.5 ", "qty": "2.9"},
		{"price": "", "quantity": ""},
		{"amount": float64(1e308), "qty": float64(1e12)},
	}

	for _, rec := range cases {
		item := Item(rec)
		assert.GreaterOrEqual(t, item.Qty, 1, "record %v", rec)
		assert.GreaterOrEqual(t, item.Price, 0.0, "record %v", rec)
		assert.False(t, math.IsNaN(item.Price))
	}

	assert.Equal(t, 12.5, Item(cases[5]).Price)
	assert.Equal(t, 2, Item(cases[5]).Qty)
}

func TestItems_SkipsNonObjects(t *testing.T) {
	items := Items([]any{map[string]any{"id": "a"}, "junk", float64(3), nil, map[string]any{"id": "b"}})

	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, 1, Quantity(nil))
	assert.Equal(t, 1, Quantity("zero"))
	assert.Equal(t, 3, Quantity(3.99))
	assert.Equal(t, 5, Quantity("5"))
	assert.Equal(t, math.MaxInt32, Quantity(1e20))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), Timestamp("2025-01-02T03:04:05Z"))
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Timestamp("2025-01-02"))
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), Timestamp(float64(1700000000000)))
	assert.True(t, IsEpoch(Timestamp("not a date")))
	assert.True(t, IsEpoch(Timestamp(map[string]any{})))
	assert.True(t, IsEpoch(Timestamp(nil)))
}

func TestOrder_ResolvesAliases(t *testing.T) {
	order := Order(Record{
		"order_id":    "A-1",
		"timestamp":   "2025-06-01T10:00:00Z",
		"products":    []any{map[string]any{"id": "1", "price": float64(10), "qty": float64(2)}},
		"grand_total": "21.30",
		"full_name":   "Ada Lovelace",
		"email":       "ada@example.com",
		"status":      "paid",
	}, fixedNow)

	assert.Equal(t, "A-1", order.ID)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), order.CreatedAt)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Qty)
	assert.Equal(t, 21.3, order.Total)
	assert.Equal(t, 0.0, order.Subtotal)
	assert.Equal(t, "Ada Lovelace", order.CustomerName)
	assert.Equal(t, "ada@example.com", order.CustomerEmail)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
}

func TestOrder_Defaults(t *testing.T) {
	order := Order(Record{}, fixedNow)

	assert.Regexp(t, `^ORD-1772366400000-[0-9a-f]{8}$`, order.ID)
	assert.Equal(t, fixedNow, order.CreatedAt)
	assert.NotNil(t, order.Items)
	assert.Empty(t, order.Items)
	assert.Equal(t, 0.0, order.Total)
}

func TestOrder_SynthesizesIDFromDate(t *testing.T) {
	order := Order(Record{"created_at": "2025-01-01T00:00:00Z"}, fixedNow)
	assert.Equal(t, "ORD-2025-01-01T00:00:00Z", order.ID)
}

func TestOrder_BlankPrimaryFieldsFallThrough(t *testing.T) {
	order := Order(Record{
		"id":         "",
		"order_id":   "A-1",
		"date":       "",
		"created_at": "2024-05-01T10:00:00Z",
	}, fixedNow)

	assert.Equal(t, "A-1", order.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), order.CreatedAt)
}

func TestOrder_ZeroIDFallsThrough(t *testing.T) {
	order := Order(Record{"id": float64(0), "code": "C-9", "timestamp": float64(0), "date": "  "}, fixedNow)
	assert.Equal(t, "C-9", order.ID)
	assert.Equal(t, fixedNow, order.CreatedAt)
}

func TestOrder_UndatedRecordsGetDistinctIDs(t *testing.T) {
	a := Order(Record{"total": float64(10)}, fixedNow)
	b := Order(Record{"total": float64(20)}, fixedNow)
	again := Order(Record{"total": float64(10)}, fixedNow)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.ID, again.ID)
}

func TestRecord_FirstNonEmpty(t *testing.T) {
	r := Record{"a": "", "b": false, "c": nil, "d": float64(0), "e": "x"}
	v, ok := r.FirstNonEmpty("a", "b", "c", "d", "e")
	require.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = r.First("a", "e")
	require.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = r.FirstNonEmpty("a", "missing")
	assert.False(t, ok)
}

func TestOrder_InvalidDateIsEpoch(t *testing.T) {
	order := Order(Record{"id": "X", "date": "yesterday-ish"}, fixedNow)
	assert.True(t, IsEpoch(order.CreatedAt))
}

func TestOrder_TotalFallsBackToSubtotal(t *testing.T) {
	order := Order(Record{"id": "X", "subtotal": float64(40)}, fixedNow)
	assert.Equal(t, 40.0, order.Total)
	assert.Equal(t, 40.0, order.Subtotal)
}

func TestOrder_NestedCustomer(t *testing.T) {
	order := Order(Record{"id": "X", "customer": map[string]any{"firstName": "Grace", "lastName": "Hopper"}}, fixedNow)
	assert.Equal(t, "Grace Hopper", order.CustomerName)
}

func TestUnwrap(t *testing.T) {
	inner := map[string]any{"id": "in"}
	assert.Equal(t, Record(inner), Unwrap(Record{"order": inner}))

	flat := Record{"id": "flat"}
	assert.Equal(t, flat, Unwrap(flat))
}

func TestParseRecords(t *testing.T) {
	records, ok := ParseRecords([]byte(`[{"id":"A"}, 3, "x", {"id":"B"}]`))
	require.True(t, ok)
	assert.Len(t, records, 2)

	_, ok = ParseRecords([]byte(`{"id":"A"}`))
	assert.False(t, ok)

	_, ok = ParseRecords([]byte(`not json`))
	assert.False(t, ok)

	_, ok = ParseRecord([]byte(`null`))
	assert.False(t, ok)
}

func TestProduct(t *testing.T) {
	p := Product(Record{"id": float64(1), "name": "Laptop", "price": "999.00", "slug": "laptop", "in_stock": false})

	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "Laptop", p.Title)
	assert.Equal(t, 999.0, p.Price)
	assert.Equal(t, domain.PlaceholderImage, p.Image)
	assert.False(t, p.InStock)
}

func TestReview(t *testing.T) {
	backend := Review(Record{"id": float64(9), "stars": float64(4), "body": "great", "user_email": "sam@example.com", "created": "2025-02-02T00:00:00Z"}, "1", fixedNow)

	assert.Equal(t, "9", backend.ID)
	assert.Equal(t, "1", backend.ProductID)
	assert.Equal(t, 4, backend.Rating)
	assert.Equal(t, "great", backend.Text)
	assert.Equal(t, "sam", backend.User)
	assert.Equal(t, domain.ReviewSourceBackend, backend.Source)

	local := Review(Record{"product": "1", "rating": float64(5), "created_at": "2025-03-03T00:00:00Z"}, "1", fixedNow)
	assert.Equal(t, "1-2025-03-03T00:00:00Z", local.ID)
	assert.Equal(t, "Anonymous", local.User)
	assert.Equal(t, domain.ReviewSourceLocal, local.Source)
}
