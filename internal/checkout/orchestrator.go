package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
	"github.com/freshsouq/freshsouq-backend/internal/orders"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/types"
)

// State tracks where a checkout attempt currently stands.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// ShippingDetails is everything the buyer supplies at submit time.
type ShippingDetails struct {
	UserID       string        `json:"user_id" validate:"required"`
	Address      types.Address `json:"shipping_address" validate:"required"`
	ContactPhone string        `json:"contact_phone" validate:"required"`
}

// orderCreator is the slice of the order client the orchestrator needs.
type orderCreator interface {
	CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (*orders.Order, error)
}

// Orchestrator drives a cart through order submission. At most one
// submission runs at a time per cart; concurrent attempts are rejected.
type Orchestrator struct {
	cart   *cart.Manager
	orders orderCreator
	logg   *logger.Logger

	mu    sync.Mutex
	state State
}

func NewOrchestrator(manager *cart.Manager, orderClient orderCreator, logg *logger.Logger) (*Orchestrator, error) {
	if manager == nil {
		return nil, fmt.Errorf("cart manager is required")
	}
	if orderClient == nil {
		return nil, fmt.Errorf("order client is required")
	}
	return &Orchestrator{
		cart:   manager,
		orders: orderClient,
		logg:   logg,
		state:  StateIdle,
	}, nil
}

// State returns the outcome of the most recent submission attempt.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// BuildOrderPayload translates cart lines into an order request. Prices
// are deliberately absent: the order service re-prices every line from
// the catalog so a stale client snapshot can never set what is charged.
func BuildOrderPayload(items []cart.LineItem, details ShippingDetails) (orders.CreateOrderRequest, error) {
	if len(items) == 0 {
		return orders.CreateOrderRequest{}, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
	}

	lines := make([]orders.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, orders.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return orders.CreateOrderRequest{
		UserID:          details.UserID,
		ShippingAddress: details.Address,
		ContactPhone:    details.ContactPhone,
		Items:           lines,
	}, nil
}

// Submit places an order for the cart's current contents. On success the
// cart is emptied; on failure the cart is left exactly as it was and the
// order service's error is returned unchanged.
func (o *Orchestrator) Submit(ctx context.Context, details ShippingDetails) (*orders.Order, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeSubmissionInProgress, "a checkout is already in progress for this cart")
	}

	payload, err := BuildOrderPayload(o.cart.Snapshot(), details)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}

	o.state = StateSubmitting
	o.mu.Unlock()

	order, err := o.orders.CreateOrder(ctx, payload)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	if clearErr := o.cart.Clear(ctx); clearErr != nil {
		// The order exists; losing the clear only leaves stale lines
		// behind, so surface the order anyway.
		if o.logg != nil {
			lctx := o.logg.WithFields(ctx, map[string]any{
				"order_id": order.ID,
				"error":    clearErr.Error(),
			})
			o.logg.Warn(lctx, "order placed but cart clear failed")
		}
	}

	o.setState(StateCompleted)
	return order, nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}
