package checkout

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storage"
)

type createResult struct {
	resp map[string]any
	err  error
}

// mockOrderCreator replays scripted results in order, repeating the last one.
type mockOrderCreator struct {
	mu       sync.Mutex
	results  []createResult
	payloads []map[string]any
}

func (m *mockOrderCreator) CreateOrder(_ context.Context, payload map[string]any) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.payloads = append(m.payloads, payload)
	if len(m.results) == 0 {
		return map[string]any{}, nil
	}
	r := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return r.resp, r.err
}

func (m *mockOrderCreator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

type mockPublisher struct {
	orders []domain.Order
	err    error
}

func (m *mockPublisher) PublishOrderConfirmed(_ context.Context, order domain.Order) error {
	m.orders = append(m.orders, order)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

// stateWriteFailingStore rejects writes of the confirmed checkout state
type stateWriteFailingStore struct {
	storage.Store
}

func (s stateWriteFailingStore) Set(ctx context.Context, key string, value []byte) error {
	if key == storage.KeyCheckoutState && bytes.Contains(value, []byte(domain.CheckoutStateConfirmed)) {
		return stderrors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}
