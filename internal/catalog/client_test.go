package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/freshsouq/freshsouq-backend/pkg/config"
	"github.com/freshsouq/freshsouq-backend/pkg/enums"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.CatalogConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestGetProduct(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{
			"id":7,"name":"Tomato","price":2.5,"unit":"kg",
			"stock_quantity":10,"is_organic":true,
			"quantity_policy":{"kind":"range","min":1,"max":10,"step":1}
		}}`))
	}))

	product, err := client.GetProduct(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Name != "Tomato" || !product.Price.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected product %+v", product)
	}
	if product.StockQuantity == nil || *product.StockQuantity != 10 {
		t.Fatalf("expected stock 10, got %v", product.StockQuantity)
	}
	if product.QuantityPolicy == nil || !product.QuantityPolicy.Allows(5) {
		t.Fatalf("expected range policy, got %+v", product.QuantityPolicy)
	}

	snap := product.Snapshot()
	if snap.ID != 7 || snap.Unit != "kg" || !snap.IsOrganic {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetProduct(context.Background(), 404)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetProductUpstreamFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.GetProduct(context.Background(), 7)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetProductsByCategory(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category_id"); got != "3" {
			t.Errorf("unexpected category %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "25" {
			t.Errorf("expected normalized default limit, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":7,"name":"Tomato","category":"vegetables","price":2.5,"unit":"kg"},
			{"id":9,"name":"Mint","category":"herbs","price":1.25,"unit":"bunch"}
		]}`))
	}))

	page, err := client.GetProductsByCategory(context.Background(), 3, pagination.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
	if page.Products[1].Category != enums.ProduceCategoryHerbs {
		t.Fatalf("unexpected category %q", page.Products[1].Category)
	}
	// A short page means there is nothing left to fetch.
	if page.NextCursor != "" {
		t.Fatalf("expected no next cursor, got %q", page.NextCursor)
	}
}

func TestGetProductsByCategoryPaging(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Errorf("unexpected limit %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":7,"name":"Tomato","price":2.5,"unit":"kg"},
			{"id":9,"name":"Mint","price":1.25,"unit":"bunch"}
		]}`))
	}))

	page, err := client.GetProductsByCategory(context.Background(), 3, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextCursor == "" {
		t.Fatal("full page must carry a next cursor")
	}

	lastID, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lastID != 9 {
		t.Fatalf("cursor should point at the last product, got %d", lastID)
	}
}

func TestGetProductsByCategoryRejectsBadCursor(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("catalog must not be called with an invalid cursor")
	}))

	_, err := client.GetProductsByCategory(context.Background(), 3, pagination.Params{Cursor: "???"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(config.CatalogConfig{}, nil); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
