// Package catalog is the REST client for the product catalog service. The
// cart engine consumes it once per add-to-cart to capture a product snapshot;
// it never polls.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
	"github.com/freshsouq/freshsouq-backend/pkg/config"
	"github.com/freshsouq/freshsouq-backend/pkg/enums"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Product is the catalog's view of a sellable item.
type Product struct {
	ID             int64                 `json:"id"`
	Name           string                `json:"name"`
	Category       enums.ProduceCategory `json:"category,omitempty"`
	Price          decimal.Decimal       `json:"price"`
	Unit           enums.Unit            `json:"unit"`
	StockQuantity  *int                  `json:"stock_quantity,omitempty"`
	ImageURL       *string               `json:"image_url,omitempty"`
	IsOrganic      bool                  `json:"is_organic"`
	QuantityPolicy *cart.QuantityPolicy  `json:"quantity_policy,omitempty"`
}

// Snapshot converts the product into the shape the cart captures at add time.
func (p Product) Snapshot() cart.ProductSnapshot {
	return cart.ProductSnapshot{
		ID:             p.ID,
		Name:           p.Name,
		Unit:           p.Unit.String(),
		Price:          p.Price,
		StockQuantity:  p.StockQuantity,
		ImageURL:       p.ImageURL,
		IsOrganic:      p.IsOrganic,
		QuantityPolicy: p.QuantityPolicy,
	}
}

// ProductPage is one page of category results. NextCursor is empty on the
// last page.
type ProductPage struct {
	Products   []Product `json:"products"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the catalog service.
type Client struct {
	baseURL string
	http    httpDoer
	logg    *logger.Logger
}

// NewClient builds a catalog client from configuration.
func NewClient(cfg config.CatalogConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("catalog base url required")
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

// GetProduct loads one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	path := "/products/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, path, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByCategory lists one page of a category's products. The page
// size is normalized and the cursor, when set, resumes after the product
// it points at.
func (c *Client) GetProductsByCategory(ctx context.Context, categoryID int64, page pagination.Params) (*ProductPage, error) {
	afterID, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := url.Values{}
	query.Set("category_id", strconv.FormatInt(categoryID, 10))
	query.Set("limit", strconv.Itoa(pagination.NormalizeLimit(page.Limit)))
	if afterID > 0 {
		query.Set("after_id", strconv.FormatInt(afterID, 10))
	}

	var products []Product
	if err := c.getJSON(ctx, "/products?"+query.Encode(), &products); err != nil {
		return nil, err
	}

	result := &ProductPage{Products: products}
	if n := len(products); n == pagination.NormalizeLimit(page.Limit) && n > 0 {
		result.NextCursor = pagination.EncodeCursor(products[n-1].ID)
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call catalog service")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	case resp.StatusCode != http.StatusOK:
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog service returned %d", resp.StatusCode))
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog payload")
	}
	return nil
}
