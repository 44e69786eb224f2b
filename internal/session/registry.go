package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
	"github.com/freshsouq/freshsouq-backend/internal/checkout"
	"github.com/freshsouq/freshsouq-backend/internal/orders"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/metrics"
)

// StoreFactory builds the persistence backend for one session's cart.
type StoreFactory func(sessionID string) cart.Store

type orderCreator interface {
	CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (*orders.Order, error)
}

// Entry bundles the per-session cart and its checkout flow.
type Entry struct {
	Cart     *cart.Manager
	Checkout *checkout.Orchestrator
}

// Registry hands out one cart per session, building it lazily on first
// use and reusing it for every later request in the same session.
type Registry struct {
	stores  StoreFactory
	orders  orderCreator
	logg    *logger.Logger
	metrics *metrics.CartMetrics

	mu      sync.Mutex
	entries map[string]*Entry
}

func NewRegistry(stores StoreFactory, orderClient orderCreator, logg *logger.Logger, cartMetrics *metrics.CartMetrics) (*Registry, error) {
	if stores == nil {
		return nil, fmt.Errorf("store factory is required")
	}
	if orderClient == nil {
		return nil, fmt.Errorf("order client is required")
	}
	return &Registry{
		stores:  stores,
		orders:  orderClient,
		logg:    logg,
		metrics: cartMetrics,
		entries: make(map[string]*Entry),
	}, nil
}

// Session returns the entry for the given session id, hydrating the
// cart from its store the first time the session is seen.
func (r *Registry) Session(ctx context.Context, sessionID string) (*Entry, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[sessionID]; ok {
		return entry, nil
	}

	manager, err := cart.NewManager(ctx, r.stores(sessionID))
	if err != nil {
		return nil, fmt.Errorf("hydrating cart for session %s: %w", sessionID, err)
	}
	orch, err := checkout.NewOrchestrator(manager, r.orders, r.logg)
	if err != nil {
		return nil, fmt.Errorf("building checkout for session %s: %w", sessionID, err)
	}

	entry := &Entry{Cart: manager, Checkout: orch}
	r.entries[sessionID] = entry
	if r.metrics != nil {
		r.metrics.SetActiveSessions(len(r.entries))
	}
	return entry, nil
}

// Count reports how many sessions currently hold a live cart.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
