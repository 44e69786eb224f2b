package cart

import (
	"context"
	"errors"
	"reflect"
	"testing"

	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubStore struct {
	items   []LineItem
	loadErr error
	saveErr error
	saves   int
	clears  int
}

func (s *stubStore) Load(ctx context.Context) ([]LineItem, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.items, nil
}

func (s *stubStore) Save(ctx context.Context, items []LineItem) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.items = items
	return nil
}

func (s *stubStore) Clear(ctx context.Context) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.clears++
	s.items = nil
	return nil
}

func intPtr(v int) *int { return &v }

func tomato() ProductSnapshot {
	return ProductSnapshot{
		ID:            7,
		Name:          "Tomato",
		Unit:          "kg",
		Price:         decimal.RequireFromString("2.5"),
		StockQuantity: intPtr(10),
		IsOrganic:     true,
	}
}

func newTestManager(t *testing.T, store Store) *Manager {
	t.Helper()
	if store == nil {
		store = &stubStore{}
	}
	mgr, err := NewManager(context.Background(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return mgr
}

func TestAddItemCreatesSnapshotLine(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	line, err := mgr.AddItem(context.Background(), tomato(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := mgr.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected one line, got %d", len(snap))
	}
	if snap[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", snap[0].Quantity)
	}
	if !snap[0].UnitPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected price snapshot 2.5, got %s", snap[0].UnitPrice)
	}
	if line.ID == uuid.Nil {
		t.Fatal("expected generated line id")
	}
	if snap[0].ProductName != "Tomato" || snap[0].ProductUnit != "kg" {
		t.Fatalf("denormalized copy missing: %+v", snap[0])
	}
}

func TestAddItemMergesSameProduct(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	first, err := mgr.AddItem(context.Background(), tomato(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := mgr.AddItem(context.Background(), tomato(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ID != first.ID {
		t.Fatal("expected merge to keep the existing line id")
	}
	if second.Quantity != 7 {
		t.Fatalf("expected merged quantity 7, got %d", second.Quantity)
	}
	if mgr.Lines() != 1 {
		t.Fatalf("expected single line, got %d", mgr.Lines())
	}
}

func TestAddItemCombinedStockCheck(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	if _, err := mgr.AddItem(context.Background(), tomato(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := mgr.Snapshot()
	_, err := mgr.AddItem(context.Background(), tomato(), 10)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if !reflect.DeepEqual(before, mgr.Snapshot()) {
		t.Fatal("failed add must leave the cart unchanged")
	}
	if got := mgr.QuantityOf(7); got != 7 {
		t.Fatalf("expected quantity 7 after rejected add, got %d", got)
	}
}

func TestAddItemRejectsQuantityBelowOne(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	for _, qty := range []int{0, -1} {
		if _, err := mgr.AddItem(context.Background(), tomato(), qty); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuantity) {
			t.Fatalf("qty %d: expected invalid quantity, got %v", qty, err)
		}
	}
	if mgr.Lines() != 0 {
		t.Fatal("rejected adds must not create lines")
	}
}

func TestAddItemRefreshesPriceOnReAdd(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	if _, err := mgr.AddItem(context.Background(), tomato(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repriced := tomato()
	repriced.Price = decimal.RequireFromString("3.1")
	line, err := mgr.AddItem(context.Background(), repriced, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("3.1")) {
		t.Fatalf("re-add must refresh the price snapshot, got %s", line.UnitPrice)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	line, err := mgr.AddItem(context.Background(), tomato(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := mgr.UpdateItemQuantity(context.Background(), line.ID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", updated.Quantity)
	}
}

func TestUpdateItemQuantityZeroIsNotRemoval(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	line, err := mgr.AddItem(context.Background(), tomato(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := mgr.Snapshot()
	if _, err := mgr.UpdateItemQuantity(context.Background(), line.ID, 0); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if !reflect.DeepEqual(before, mgr.Snapshot()) {
		t.Fatal("rejected update must leave the cart unchanged")
	}
}

func TestUpdateItemQuantityUnknownLine(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	if _, err := mgr.UpdateItemQuantity(context.Background(), uuid.New(), 2); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateItemQuantityStockCeiling(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	line, err := mgr.AddItem(context.Background(), tomato(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := mgr.UpdateItemQuantity(context.Background(), line.ID, 11); !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := mgr.QuantityOf(7); got != 2 {
		t.Fatalf("expected quantity 2 after rejected update, got %d", got)
	}
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	mgr := newTestManager(t, store)
	line, err := mgr.AddItem(context.Background(), tomato(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mgr.RemoveItem(context.Background(), line.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mgr.Lines() != 0 {
		t.Fatal("expected empty cart after removal")
	}
	if len(store.items) != 0 {
		t.Fatal("expected persisted cart to be empty after removal")
	}

	if err := mgr.RemoveItem(context.Background(), line.ID); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}

func TestClearAlsoClearsStore(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	mgr := newTestManager(t, store)
	if _, err := mgr.AddItem(context.Background(), tomato(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mgr.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mgr.Lines() != 0 || store.clears != 1 {
		t.Fatalf("expected cleared cart and store, lines=%d clears=%d", mgr.Lines(), store.clears)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	mgr := newTestManager(t, store)
	if _, err := mgr.AddItem(context.Background(), tomato(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := mgr.Snapshot()
	store.saveErr = errors.New("disk full")

	_, err := mgr.AddItem(context.Background(), tomato(), 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !reflect.DeepEqual(before, mgr.Snapshot()) {
		t.Fatal("failed persist must leave the in-memory cart unchanged")
	}
}

func TestHydrationSanitizesStoredItems(t *testing.T) {
	t.Parallel()

	dup := uuid.New()
	store := &stubStore{items: []LineItem{
		{ID: uuid.New(), ProductID: 7, ProductName: "Tomato", Quantity: 2, UnitPrice: decimal.New(25, -1)},
		{ID: uuid.New(), ProductID: 9, ProductName: "Mint", Quantity: 0, UnitPrice: decimal.New(1, 0)},
		{ID: uuid.Nil, ProductID: 11, ProductName: "Okra", Quantity: 1, UnitPrice: decimal.New(4, 0)},
		{ID: dup, ProductID: 7, ProductName: "Tomato", Quantity: 5, UnitPrice: decimal.New(25, -1)},
	}}

	mgr := newTestManager(t, store)
	snap := mgr.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected one surviving line, got %d", len(snap))
	}
	if snap[0].ProductID != 7 || snap[0].Quantity != 2 {
		t.Fatalf("expected first tomato line to win, got %+v", snap[0])
	}
}

func TestSubscribeDeliversInitialAndMutations(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	var deliveries [][]LineItem
	cancel := mgr.Subscribe(func(items []LineItem) {
		deliveries = append(deliveries, items)
	})

	if len(deliveries) != 1 || len(deliveries[0]) != 0 {
		t.Fatalf("expected immediate empty delivery, got %v", deliveries)
	}

	if _, err := mgr.AddItem(context.Background(), tomato(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deliveries) != 2 || len(deliveries[1]) != 1 {
		t.Fatalf("expected delivery after mutation, got %d", len(deliveries))
	}

	// Rejected mutations must not publish.
	if _, err := mgr.AddItem(context.Background(), tomato(), 0); err == nil {
		t.Fatal("expected invalid quantity")
	}
	if len(deliveries) != 2 {
		t.Fatalf("rejected mutation must not notify, got %d deliveries", len(deliveries))
	}

	cancel()
	if _, err := mgr.AddItem(context.Background(), tomato(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("cancelled subscriber must not be notified, got %d", len(deliveries))
	}
}

func TestSubscriberCopiesAreDefensive(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	mgr.Subscribe(func(items []LineItem) {
		for i := range items {
			items[i].Quantity = 999
		}
	})

	if _, err := mgr.AddItem(context.Background(), tomato(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mgr.QuantityOf(7); got != 2 {
		t.Fatalf("subscriber mutation leaked into the cart: %d", got)
	}
}

func TestDerivedQueries(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, nil)
	if _, err := mgr.AddItem(context.Background(), tomato(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mint := ProductSnapshot{ID: 9, Name: "Mint", Unit: "bunch", Price: decimal.RequireFromString("1.25")}
	if _, err := mgr.AddItem(context.Background(), mint, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mgr.Lines() != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", mgr.Lines())
	}
	// 3 x 2.5 + 2 x 1.25 = 10
	if !mgr.Total().Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected total 10, got %s", mgr.Total())
	}
	if !mgr.Contains(9) || mgr.Contains(42) {
		t.Fatal("contains answered incorrectly")
	}
	if mgr.QuantityOf(42) != 0 {
		t.Fatal("quantity of absent product must be zero")
	}
}

func TestNewManagerRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewManager(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestNewManagerPropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	_, err := NewManager(context.Background(), &stubStore{loadErr: errors.New("redis down")})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
