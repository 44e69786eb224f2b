package cartstore

import (
	"context"
	"testing"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func sampleItems() []cart.LineItem {
	policy := cart.RangePolicy(1, 10, 1)
	return []cart.LineItem{
		{
			ID:             uuid.New(),
			ProductID:      7,
			ProductName:    "Tomato",
			ProductUnit:    "kg",
			IsOrganic:      true,
			UnitPrice:      decimal.RequireFromString("2.5"),
			Quantity:       3,
			QuantityPolicy: &policy,
		},
		{
			ID:          uuid.New(),
			ProductID:   9,
			ProductName: "Mint",
			ProductUnit: "bunch",
			UnitPrice:   decimal.RequireFromString("1.25"),
			Quantity:    2,
		},
	}
}

func assertSameItems(t *testing.T, want, got []cart.LineItem) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i].ID != got[i].ID {
			t.Fatalf("item %d: id mismatch", i)
		}
		if want[i].ProductID != got[i].ProductID {
			t.Fatalf("item %d: product mismatch", i)
		}
		if want[i].Quantity != got[i].Quantity {
			t.Fatalf("item %d: quantity mismatch", i)
		}
		if !want[i].UnitPrice.Equal(got[i].UnitPrice) {
			t.Fatalf("item %d: price mismatch %s vs %s", i, want[i].UnitPrice, got[i].UnitPrice)
		}
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	keyspace := NewMemory()
	store := keyspace.ForKey("fs:cart:session-1")
	items := sampleItems()

	if err := store.Save(context.Background(), items); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assertSameItems(t, items, loaded)
}

func TestMemoryKeysAreIsolated(t *testing.T) {
	t.Parallel()

	keyspace := NewMemory()
	a := keyspace.ForKey("fs:cart:a")
	b := keyspace.ForKey("fs:cart:b")

	if err := a.Save(context.Background(), sampleItems()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatal("expected other key to stay empty")
	}
}

func TestMemoryCorruptBlobDegradesToEmpty(t *testing.T) {
	t.Parallel()

	keyspace := NewMemory()
	keyspace.blobs["fs:cart:broken"] = []byte(`{"not":"an array`)

	loaded, err := keyspace.ForKey("fs:cart:broken").Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt blob must not error: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatal("expected empty cart from corrupt blob")
	}
}

func TestMemoryClear(t *testing.T) {
	t.Parallel()

	keyspace := NewMemory()
	store := keyspace.ForKey("fs:cart:session-1")
	if err := store.Save(context.Background(), sampleItems()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatal("expected empty cart after clear")
	}
}
