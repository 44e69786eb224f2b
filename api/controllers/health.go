package controllers

import (
	"context"
	"net/http"

	"github.com/freshsouq/freshsouq-backend/api/responses"
	"github.com/freshsouq/freshsouq-backend/pkg/config"
	pkgerrors "github.com/freshsouq/freshsouq-backend/pkg/errors"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
)

// Pinger is any backend the readiness probe should reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FreshSouq-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every registered backend answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, backends map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FreshSouq-Env", cfg.App.Env)
		for name, backend := range backends {
			if backend == nil {
				continue
			}
			if err := backend.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend unavailable").
						WithDetails(map[string]any{"backend": name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}
