// Package history assembles the authoritative order history from every place
// an order has ever been written.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/normalize"
	"github.com/jafarshop/storefront/internal/storage"
	apperrors "github.com/jafarshop/storefront/pkg/errors"
)

// SourceKind describes the shape a source key holds
type SourceKind int

const (
	// SourceList holds a JSON array of orders
	SourceList SourceKind = iota
	// SourceSingle holds one order object, possibly wrapped as {"order": {...}}
	SourceSingle
)

// Source is one named storage location feeding the history
type Source struct {
	Key  string
	Kind SourceKind
}

// DefaultSources lists the canonical history key first, followed by the
// single most-recent-order keys written by older checkout flows.
var DefaultSources = []Source{
	{Key: storage.KeyOrders, Kind: SourceList},
	{Key: storage.KeyLastOrder, Kind: SourceSingle},
	{Key: storage.KeyCheckoutOrder, Kind: SourceSingle},
	{Key: storage.KeyOrderConfirmation, Kind: SourceSingle},
	{Key: storage.KeyRecentOrder, Kind: SourceSingle},
}

// Merger folds every source through the normalizer into one de-duplicated,
// newest-first list and writes it back to the canonical key.
type Merger struct {
	store   storage.Store
	sources []Source
	target  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewMerger creates a merger over the given sources. With no sources the
// DefaultSources are used.
func NewMerger(store storage.Store, logger *zap.Logger, sources ...Source) *Merger {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Merger{
		store:   store,
		sources: sources,
		target:  storage.KeyOrders,
		logger:  logger,
		now:     time.Now,
	}
}

// Merge rebuilds the history from all sources and persists it.
func (m *Merger) Merge(ctx context.Context) ([]domain.Order, error) {
	return m.merge(ctx, nil)
}

// Append records a newly confirmed order at the head of the history and
// merges. An existing entry with the same id is replaced by the new one.
func (m *Merger) Append(ctx context.Context, order domain.Order) ([]domain.Order, error) {
	raw, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order %s: %w", order.ID, err)
	}
	head, ok := normalize.ParseRecord(raw)
	if !ok {
		return nil, fmt.Errorf("failed to decode order %s", order.ID)
	}
	return m.merge(ctx, []normalize.Record{head})
}

// Stored reads the canonical history key as it is, without merging or writing.
func (m *Merger) Stored(ctx context.Context) ([]domain.Order, error) {
	records, err := m.collect(ctx, Source{Key: m.target, Kind: SourceList})
	if err != nil {
		return nil, err
	}
	now := m.now()
	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, normalize.Order(rec, now))
	}
	return orders, nil
}

// Find looks up one order of the merged history by id.
func (m *Merger) Find(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := m.Merge(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, &apperrors.ErrNotFound{Resource: "order", ID: id}
}

func (m *Merger) merge(ctx context.Context, head []normalize.Record) ([]domain.Order, error) {
	candidates := append([]normalize.Record{}, head...)
	for _, src := range m.sources {
		records, err := m.collect(ctx, src)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, records...)
	}

	now := m.now()
	seen := make(map[string]struct{}, len(candidates))
	orders := make([]domain.Order, 0, len(candidates))
	for _, rec := range candidates {
		order := normalize.Order(rec, now)
		if _, dup := seen[order.ID]; dup {
			continue
		}
		seen[order.ID] = struct{}{}
		orders = append(orders, order)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	encoded, err := json.Marshal(orders)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order history: %w", err)
	}
	if err := m.store.Set(ctx, m.target, encoded); err != nil {
		m.logger.Error("Failed to persist order history", zap.Error(err))
		return nil, fmt.Errorf("failed to persist order history: %w", err)
	}

	return orders, nil
}

func (m *Merger) collect(ctx context.Context, src Source) ([]normalize.Record, error) {
	raw, err := m.store.Get(ctx, src.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Key, err)
	}

	switch src.Kind {
	case SourceList:
		records, ok := normalize.ParseRecords(raw)
		if !ok {
			m.logger.Warn("Skipping unreadable order source", zap.String("key", src.Key))
			return nil, nil
		}
		for i := range records {
			records[i] = normalize.Unwrap(records[i])
		}
		return records, nil
	default:
		record, ok := normalize.ParseRecord(raw)
		if !ok {
			m.logger.Warn("Skipping unreadable order source", zap.String("key", src.Key))
			return nil, nil
		}
		return []normalize.Record{normalize.Unwrap(record)}, nil
	}
}
