package controllers

import (
	"net/http"

	"github.com/freshsouq/freshsouq-backend/api/middleware"
	"github.com/freshsouq/freshsouq-backend/api/responses"
	"github.com/freshsouq/freshsouq-backend/api/validators"
	checkoutsvc "github.com/freshsouq/freshsouq-backend/internal/checkout"
	"github.com/freshsouq/freshsouq-backend/internal/session"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/metrics"
	"github.com/freshsouq/freshsouq-backend/pkg/types"
)

type checkoutRequest struct {
	ShippingAddress types.Address `json:"shipping_address" validate:"required"`
	ContactPhone    string        `json:"contact_phone" validate:"required"`
}

// Checkout submits the session's cart as an order.
func Checkout(registry *session.Registry, cartMetrics *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session registry unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "checkout requires a signed-in user"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		entry, err := registry.Session(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve session cart"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := entry.Checkout.Submit(r.Context(), checkoutsvc.ShippingDetails{
			UserID:       userID,
			Address:      payload.ShippingAddress,
			ContactPhone: payload.ContactPhone,
		})
		cartMetrics.ObserveSubmission(err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
