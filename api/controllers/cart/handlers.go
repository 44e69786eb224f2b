package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/freshsouq/freshsouq-backend/api/middleware"
	"github.com/freshsouq/freshsouq-backend/api/responses"
	"github.com/freshsouq/freshsouq-backend/api/validators"
	"github.com/freshsouq/freshsouq-backend/internal/catalog"
	"github.com/freshsouq/freshsouq-backend/internal/session"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/metrics"
)

type productFetcher interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// Fetch returns the session's cart.
func Fetch(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := sessionEntry(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newView(entry.Cart))
	}
}

// AddItem resolves the product from the catalog and adds it to the cart.
// Re-adding a product the cart already holds merges quantities into the
// existing line.
func AddItem(registry *session.Registry, products productFetcher, cartMetrics *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		entry, err := sessionEntry(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		_, err = entry.Cart.AddItem(r.Context(), product.Snapshot(), payload.Quantity)
		cartMetrics.ObserveMutation("add", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newView(entry.Cart))
	}
}

// UpdateItem replaces the quantity of one cart line.
func UpdateItem(registry *session.Registry, cartMetrics *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := sessionEntry(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		_, err = entry.Cart.UpdateItemQuantity(r.Context(), itemID, payload.Quantity)
		cartMetrics.ObserveMutation("update", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newView(entry.Cart))
	}
}

// RemoveItem deletes one line from the cart.
func RemoveItem(registry *session.Registry, cartMetrics *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := sessionEntry(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = entry.Cart.RemoveItem(r.Context(), itemID)
		cartMetrics.ObserveMutation("remove", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newView(entry.Cart))
	}
}

// Clear empties the session's cart.
func Clear(registry *session.Registry, cartMetrics *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := sessionEntry(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = entry.Cart.Clear(r.Context())
		cartMetrics.ObserveMutation("clear", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newView(entry.Cart))
	}
}

func sessionEntry(r *http.Request, registry *session.Registry) (*session.Entry, error) {
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session registry unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	entry, err := registry.Session(r.Context(), sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve session cart")
	}
	return entry, nil
}

func itemIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "itemID")
	itemID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item id")
	}
	return itemID, nil
}
