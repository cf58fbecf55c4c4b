package recommendation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"recohub/domain"
)

// in-memory event store honoring the EventFilter contract, newest first
type fakeEventRepo struct {
	events []domain.Event
	err    error
}

func (f *fakeEventRepo) add(tenantID, eventType, userID, productID string, age time.Duration) {
	f.events = append(f.events, domain.Event{
		TenantID:  tenantID,
		EventType: eventType,
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().Add(-age),
	})
}

func (f *fakeEventRepo) FindEvents(_ context.Context, filter EventFilter) ([]domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}

	userIDs := toSet(filter.UserIDs)
	productIDs := toSet(filter.ProductIDs)
	eventTypes := toSet(filter.EventTypes)

	var out []domain.Event
	for _, ev := range f.events {
		if ev.TenantID != filter.TenantID {
			continue
		}
		if filter.UserID != "" && ev.UserID != filter.UserID {
			continue
		}
		if len(userIDs) > 0 {
			if _, ok := userIDs[ev.UserID]; !ok {
				continue
			}
		}
		if len(productIDs) > 0 {
			if _, ok := productIDs[ev.ProductID]; !ok {
				continue
			}
		}
		if len(eventTypes) > 0 {
			if _, ok := eventTypes[ev.EventType]; !ok {
				continue
			}
		}
		if !filter.Since.IsZero() && ev.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, ev)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (f *fakeEventRepo) CountUserEvents(_ context.Context, tenantID, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}

	var n int64
	for _, ev := range f.events {
		if ev.TenantID == tenantID && ev.UserID == userID {
			n++
		}
	}
	return n, nil
}

func toSet(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// in-memory catalog keyed by (tenant, product)
type fakeCatalogRepo struct {
	items []domain.CatalogItem
	err   error
}

func (f *fakeCatalogRepo) add(item domain.CatalogItem) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().Add(-time.Duration(len(f.items)) * time.Minute)
	}
	f.items = append(f.items, item)
}

func (f *fakeCatalogRepo) FindByProductIDs(_ context.Context, tenantID string, productIDs []string, availableOnly bool) ([]domain.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}

	ids := toSet(productIDs)
	var out []domain.CatalogItem
	for _, it := range f.items {
		if it.TenantID != tenantID {
			continue
		}
		if _, ok := ids[it.ProductID]; !ok {
			continue
		}
		if availableOnly && !it.Available {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeCatalogRepo) FindByCategories(_ context.Context, tenantID string, categories []string, limit int) ([]domain.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}

	cats := toSet(categories)
	var out []domain.CatalogItem
	for _, it := range f.items {
		if it.TenantID != tenantID || !it.Available {
			continue
		}
		if _, ok := cats[it.Category]; !ok {
			continue
		}
		out = append(out, it)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalogRepo) FindRecent(_ context.Context, tenantID string, limit int) ([]domain.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}

	var out []domain.CatalogItem
	for _, it := range f.items {
		if it.TenantID == tenantID && it.Available {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeTenantConfig struct {
	strategy domain.Strategy
	ok       bool
	err      error
}

func (f *fakeTenantConfig) GetDefaultStrategy(_ context.Context, _ string) (domain.Strategy, bool, error) {
	return f.strategy, f.ok, f.err
}

type fakeExperimentRepo struct {
	running *domain.Experiment
	err     error
}

func (f *fakeExperimentRepo) FindRunning(_ context.Context, _, _ string) (*domain.Experiment, error) {
	return f.running, f.err
}

// thread-safe map cache recording writes so tests can await fire-and-forget sets
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	sets    chan string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
		sets:    make(chan string, 16),
	}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.entries[key]
	return payload, ok
}

func (f *fakeCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) {
	f.mu.Lock()
	f.entries[key] = payload
	f.ttls[key] = ttl
	f.mu.Unlock()

	select {
	case f.sets <- key:
	default:
	}
}

var errStoreDown = errors.New("store down")
