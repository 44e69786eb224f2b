// Package orders is the REST client for the order service. The checkout
// orchestrator hands it one order-creation request per submission.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/freshsouq/freshsouq-backend/pkg/config"
	"github.com/freshsouq/freshsouq-backend/pkg/enums"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// OrderItem is one {product, quantity} pair. Prices are deliberately absent:
// the order service recomputes them authoritatively and never trusts the
// client-side snapshot.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the submission payload.
type CreateOrderRequest struct {
	UserID          string        `json:"user_id,omitempty"`
	ShippingAddress types.Address `json:"shipping_address"`
	ContactPhone    string        `json:"contact_phone"`
	Items           []OrderItem   `json:"items"`
}

// Order is the order service's record of a created order.
type Order struct {
	ID          int64             `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderItem       `json:"items"`
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the order service.
type Client struct {
	baseURL string
	http    httpDoer
	logg    *logger.Logger
}

// NewClient builds an order client from configuration.
func NewClient(cfg config.OrdersConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("orders base url required")
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

// CreateOrder submits the order and returns the created record.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call order service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("order service returned %d", resp.StatusCode))
	}

	envelope := struct {
		Data Order `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order response")
	}
	return &envelope.Data, nil
}
