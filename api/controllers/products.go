package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshsouq/freshsouq-backend/api/responses"
	"github.com/freshsouq/freshsouq-backend/api/validators"
	"github.com/freshsouq/freshsouq-backend/internal/catalog"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/pagination"
)

type catalogReader interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID int64, page pagination.Params) (*catalog.ProductPage, error)
}

// GetProduct proxies a single product lookup to the catalog service.
func GetProduct(products catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		productID, err := validators.ParsePathInt64(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts proxies a category listing to the catalog service.
func ListProducts(products catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		categoryID, err := validators.ParseQueryInt(r, "category_id", 0, 0, 1<<31)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if categoryID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required").WithDetails(map[string]any{"field": "category_id"}))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := products.GetProductsByCategory(r.Context(), int64(categoryID), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if page.Products == nil {
			page.Products = []catalog.Product{}
		}

		responses.WriteSuccess(w, page)
	}
}
