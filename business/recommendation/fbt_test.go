package recommendation

import (
	"context"
	"testing"
	"time"

	"recohub/domain"
)

func TestFBTCoPurchaseRanking(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	// two buyers of the context product also bought p-a; one bought p-b
	events.add("t1", domain.EventPurchase, "u1", "ctx", time.Hour)
	events.add("t1", domain.EventPurchase, "u1", "p-a", time.Hour)
	events.add("t1", domain.EventPurchase, "u2", "ctx", time.Hour)
	events.add("t1", domain.EventPurchase, "u2", "p-a", time.Hour)
	events.add("t1", domain.EventPurchase, "u2", "p-b", time.Hour)

	catalog.add(availableItem("t1", "p-a"))
	catalog.add(availableItem("t1", "p-b"))

	items, err := NewFBTStrategy(events, catalog).Run(context.Background(), StrategyInput{
		TenantID: "t1", UserID: "u9", ProductID: "ctx", Limit: 10,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
	if items[0].ProductID != "p-a" || items[0].Score != 1.0 {
		t.Errorf("first = %+v, want p-a at 1.0", items[0])
	}
	if items[1].ProductID != "p-b" || items[1].Score != 0.5 {
		t.Errorf("second = %+v, want p-b at 0.5", items[1])
	}
	if items[0].Reason != "Frequently bought together" {
		t.Errorf("reason = %q", items[0].Reason)
	}
}

func TestFBTIgnoresNonPurchaseEvents(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	// views of the context product do not make their users buyers
	events.add("t1", domain.EventProductViewed, "u1", "ctx", time.Hour)
	events.add("t1", domain.EventPurchase, "u1", "p-a", time.Hour)

	catalog.add(availableItem("t1", "p-a"))

	items, err := NewFBTStrategy(events, catalog).Run(context.Background(), StrategyInput{
		TenantID: "t1", ProductID: "ctx", Limit: 10,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want empty without context purchases", items)
	}
}

func TestFBTWindow(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	// the co-purchase happened eight days ago, outside the window
	events.add("t1", domain.EventPurchase, "u1", "ctx", 8*24*time.Hour)
	events.add("t1", domain.EventPurchase, "u1", "p-a", 8*24*time.Hour)

	catalog.add(availableItem("t1", "p-a"))

	items, err := NewFBTStrategy(events, catalog).Run(context.Background(), StrategyInput{
		TenantID: "t1", ProductID: "ctx", Limit: 10,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want empty outside the 7-day window", items)
	}
}

func TestFBTExcludesContextProduct(t *testing.T) {
	events := &fakeEventRepo{}
	catalog := &fakeCatalogRepo{}

	events.add("t1", domain.EventPurchase, "u1", "ctx", time.Hour)
	events.add("t1", domain.EventPurchase, "u1", "p-a", time.Hour)

	catalog.add(availableItem("t1", "ctx"))
	catalog.add(availableItem("t1", "p-a"))

	items, err := NewFBTStrategy(events, catalog).Run(context.Background(), StrategyInput{
		TenantID: "t1", ProductID: "ctx", Limit: 10,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, it := range items {
		if it.ProductID == "ctx" {
			t.Errorf("context product recommended back: %+v", items)
		}
	}
	if len(items) != 1 || items[0].ProductID != "p-a" {
		t.Errorf("items = %+v, want only p-a", items)
	}
}

func TestFBTNoProductContext(t *testing.T) {
	events := &fakeEventRepo{}
	events.add("t1", domain.EventPurchase, "u1", "p-a", time.Hour)

	items, err := NewFBTStrategy(events, &fakeCatalogRepo{}).Run(context.Background(), StrategyInput{
		TenantID: "t1", Limit: 10,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want empty without a product context", items)
	}
}
