package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscriber receives the full ordered line-item list after every successful
// mutation, and once at subscription time with the current state.
type Subscriber func(items []LineItem)

// Manager is the single source of truth for one session's cart. All reads
// and writes go through it; observers only ever see defensive copies.
//
// Mutations serialize behind an internal mutex and are atomic: validation
// failures and persistence failures leave the observable state untouched.
// Subscribers are invoked synchronously, outside the lock, in registration
// order.
type Manager struct {
	mu    sync.Mutex
	store Store
	items []LineItem

	subs      []subscription
	nextSubID int
}

type subscription struct {
	id int
	fn Subscriber
}

// NewManager hydrates a manager from the provided store. A corrupt or absent
// blob yields an empty cart per the Store contract; stored entries that
// violate cart invariants (quantity below 1, duplicate products, missing ids)
// are dropped rather than rejected.
func NewManager(ctx context.Context, store Store) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	items, err := store.Load(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return &Manager{store: store, items: sanitizeItems(items)}, nil
}

func sanitizeItems(items []LineItem) []LineItem {
	seen := map[int64]struct{}{}
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.ID == uuid.Nil {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		out = append(out, item.Clone())
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AddItem merges the product into the cart: an existing line for the product
// has its quantity increased and its denormalized snapshot refreshed, a new
// product gets a fresh line with a unique id. The stock check runs against
// the combined quantity.
func (m *Manager) AddItem(ctx context.Context, product ProductSnapshot, quantity int) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be at least 1").
			WithDetails(map[string]any{"requested": quantity})
	}

	m.mu.Lock()
	idx := m.indexOfProduct(product.ID)

	inCart := 0
	if idx >= 0 {
		inCart = m.items[idx].Quantity
	}

	ceiling := product.StockQuantity
	if ceiling == nil && idx >= 0 {
		ceiling = m.items[idx].StockCeiling
	}
	if ceiling != nil && inCart+quantity > *ceiling {
		m.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock ceiling exceeded").
			WithDetails(map[string]any{
				"product_id": product.ID,
				"requested":  quantity,
				"in_cart":    inCart,
				"stock":      *ceiling,
			})
	}

	next := cloneItems(m.items)
	var resultIdx int
	if idx >= 0 {
		line := snapshotLine(next[idx].ID, product, inCart+quantity)
		if product.StockQuantity == nil {
			// Keep the last known ceiling when the fresh snapshot has none.
			line.StockCeiling = copyIntPtr(ceiling)
		}
		next[idx] = line
		resultIdx = idx
	} else {
		next = append(next, snapshotLine(uuid.New(), product, quantity))
		resultIdx = len(next) - 1
	}

	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return LineItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	m.items = next
	result := next[resultIdx].Clone()
	subs, published := m.publishLocked()
	m.mu.Unlock()

	notify(subs, published)
	return result, nil
}

// UpdateItemQuantity sets the quantity on an existing line. Quantities below
// 1 are rejected rather than treated as removal; callers wanting the line
// gone must use RemoveItem.
func (m *Manager) UpdateItemQuantity(ctx context.Context, lineItemID uuid.UUID, quantity int) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be at least 1").
			WithDetails(map[string]any{"requested": quantity})
	}

	m.mu.Lock()
	idx := m.indexOfLine(lineItemID)
	if idx < 0 {
		m.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if ceiling := m.items[idx].StockCeiling; ceiling != nil && quantity > *ceiling {
		m.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock ceiling exceeded").
			WithDetails(map[string]any{
				"product_id": m.items[idx].ProductID,
				"requested":  quantity,
				"stock":      *ceiling,
			})
	}

	next := cloneItems(m.items)
	next[idx].Quantity = quantity

	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return LineItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	m.items = next
	result := next[idx].Clone()
	subs, published := m.publishLocked()
	m.mu.Unlock()

	notify(subs, published)
	return result, nil
}

// RemoveItem drops the line from the cart.
func (m *Manager) RemoveItem(ctx context.Context, lineItemID uuid.UUID) error {
	m.mu.Lock()
	idx := m.indexOfLine(lineItemID)
	if idx < 0 {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	next := cloneItems(m.items)
	next = append(next[:idx], next[idx+1:]...)
	if len(next) == 0 {
		next = nil
	}

	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	m.items = next
	subs, published := m.publishLocked()
	m.mu.Unlock()

	notify(subs, published)
	return nil
}

// Clear unconditionally empties the cart.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	if err := m.store.Clear(ctx); err != nil {
		m.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	m.items = nil
	subs, published := m.publishLocked()
	m.mu.Unlock()

	notify(subs, published)
	return nil
}

// Snapshot returns a copy of the current ordered line-item list.
func (m *Manager) Snapshot() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneItems(m.items)
}

// Subscribe registers fn and synchronously delivers the current state so new
// observers need no separate initial fetch. The returned func cancels the
// subscription.
func (m *Manager) Subscribe(fn Subscriber) func() {
	if fn == nil {
		return func() {}
	}

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	initial := cloneItems(m.items)
	m.mu.Unlock()

	fn(initial)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subs {
			if sub.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Lines counts distinct line items, not summed quantities.
func (m *Manager) Lines() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Total is the monetary value of the cart: sum of unit_price x quantity.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, item := range m.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Contains reports whether the product has a line in the cart.
func (m *Manager) Contains(productID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOfProduct(productID) >= 0
}

// QuantityOf returns the product's quantity in the cart, zero when absent.
func (m *Manager) QuantityOf(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := m.indexOfProduct(productID); idx >= 0 {
		return m.items[idx].Quantity
	}
	return 0
}

func (m *Manager) indexOfProduct(productID int64) int {
	for i, item := range m.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (m *Manager) indexOfLine(id uuid.UUID) int {
	for i, item := range m.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// publishLocked captures the subscriber list and the state to fan out.
// Callers deliver after releasing the lock so subscribers can call back into
// the manager.
func (m *Manager) publishLocked() ([]subscription, []LineItem) {
	if len(m.subs) == 0 {
		return nil, nil
	}
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	return subs, cloneItems(m.items)
}

func notify(subs []subscription, items []LineItem) {
	for _, sub := range subs {
		sub.fn(cloneItems(items))
	}
}

func snapshotLine(id uuid.UUID, product ProductSnapshot, quantity int) LineItem {
	line := LineItem{
		ID:           id,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductUnit:  product.Unit,
		ProductImage: copyStringPtr(product.ImageURL),
		IsOrganic:    product.IsOrganic,
		UnitPrice:    product.Price,
		Quantity:     quantity,
		StockCeiling: copyIntPtr(product.StockQuantity),
	}
	if product.QuantityPolicy != nil {
		policy := *product.QuantityPolicy
		line.QuantityPolicy = &policy
	}
	return line
}
