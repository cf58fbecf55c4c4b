package recommendation

import (
	"context"
	"testing"
	"time"

	"recohub/domain"
)

func availableItem(tenantID, productID string) domain.CatalogItem {
	return domain.CatalogItem{
		TenantID:  tenantID,
		ProductID: productID,
		Name:      productID,
		Available: true,
	}
}

func TestTrendingWeightedVelocity(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	// p1: purchase (5), p2: view + click (3), p3: two views (2)
	events.add("t1", domain.EventPurchase, "u1", "p1", time.Hour)
	events.add("t1", domain.EventProductViewed, "u2", "p2", time.Hour)
	events.add("t1", domain.EventProductClicked, "u3", "p2", time.Hour)
	events.add("t1", domain.EventProductViewed, "u4", "p3", time.Hour)
	events.add("t1", domain.EventProductViewed, "u5", "p3", 2*time.Hour)

	for _, pid := range []string{"p1", "p2", "p3"} {
		catalog.add(availableItem("t1", pid))
	}

	items, err := NewTrendingStrategy(events, catalog).Run(context.Background(), StrategyInput{TenantID: "t1", Limit: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].ProductID != "p1" || items[1].ProductID != "p2" || items[2].ProductID != "p3" {
		t.Errorf("order = %s, %s, %s; want p1, p2, p3", items[0].ProductID, items[1].ProductID, items[2].ProductID)
	}
	if items[0].Score != 1.0 {
		t.Errorf("top score = %v, want 1.0", items[0].Score)
	}
	if items[1].Score != 0.6 {
		t.Errorf("p2 score = %v, want 0.6 (3/5)", items[1].Score)
	}
	if items[0].Reason != "Trending now" {
		t.Errorf("reason = %q", items[0].Reason)
	}
}

func TestTrendingIgnoresOldAndZeroWeightEvents(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	events.add("t1", domain.EventPurchase, "u1", "p-old", 25*time.Hour)
	events.add("t1", domain.EventRemoveFromCart, "u1", "p-rm", time.Hour)
	events.add("t1", domain.EventRecommendationImpress, "u1", "p-imp", time.Hour)
	events.add("t1", domain.EventProductViewed, "u1", "p-live", time.Hour)

	for _, pid := range []string{"p-old", "p-rm", "p-imp", "p-live"} {
		catalog.add(availableItem("t1", pid))
	}

	items, err := NewTrendingStrategy(events, catalog).Run(context.Background(), StrategyInput{TenantID: "t1", Limit: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(items) != 1 || items[0].ProductID != "p-live" {
		t.Errorf("items = %+v, want only p-live", items)
	}
}

func TestTrendingAvailabilityFilter(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	events.add("t1", domain.EventPurchase, "u1", "p-gone", time.Hour)
	events.add("t1", domain.EventProductViewed, "u2", "p-here", time.Hour)

	catalog.add(domain.CatalogItem{TenantID: "t1", ProductID: "p-gone", Available: false})
	catalog.add(availableItem("t1", "p-here"))

	items, err := NewTrendingStrategy(events, catalog).Run(context.Background(), StrategyInput{TenantID: "t1", Limit: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(items) != 1 || items[0].ProductID != "p-here" {
		t.Errorf("items = %+v, want only p-here", items)
	}
	// the filter runs after scoring, so the survivor still normalizes to 1.0
	if items[0].Score != 1.0 {
		t.Errorf("score = %v, want 1.0", items[0].Score)
	}
}

func TestTrendingRecentCatalogFallback(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	now := time.Now()
	for i, pid := range []string{"new-1", "new-2", "new-3", "new-4"} {
		catalog.add(domain.CatalogItem{
			TenantID:  "t1",
			ProductID: pid,
			Available: true,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}

	items, err := NewTrendingStrategy(events, catalog).Run(context.Background(), StrategyInput{TenantID: "t1", Limit: 4})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(items) != 4 {
		t.Fatalf("got %d items, want 4", len(items))
	}
	if items[0].ProductID != "new-1" || items[0].Score != 1.0 {
		t.Errorf("first = %+v, want new-1 at 1.0", items[0])
	}
	if items[1].Score != 0.75 {
		t.Errorf("second score = %v, want 0.75", items[1].Score)
	}
	if items[0].Reason != "Recently added" {
		t.Errorf("reason = %q", items[0].Reason)
	}
}

func TestTrendingExclusions(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	events.add("t1", domain.EventPurchase, "u1", "p1", time.Hour)
	events.add("t1", domain.EventProductViewed, "u2", "p2", time.Hour)
	catalog.add(availableItem("t1", "p1"))
	catalog.add(availableItem("t1", "p2"))

	items, err := NewTrendingStrategy(events, catalog).Run(context.Background(), StrategyInput{
		TenantID: "t1",
		Limit:    10,
		Exclude:  map[string]struct{}{"p1": {}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(items) != 1 || items[0].ProductID != "p2" {
		t.Errorf("items = %+v, want only p2", items)
	}
}

func TestTrendingEmptyTenant(t *testing.T) {
	items, err := NewTrendingStrategy(&fakeEventRepo{}, &fakeCatalogRepo{}).Run(context.Background(), StrategyInput{TenantID: "t1", Limit: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want empty", items)
	}
}
