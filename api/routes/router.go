package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshsouq/freshsouq-backend/api/controllers"
	cartcontrollers "github.com/freshsouq/freshsouq-backend/api/controllers/cart"
	"github.com/freshsouq/freshsouq-backend/api/middleware"
	"github.com/freshsouq/freshsouq-backend/internal/catalog"
	"github.com/freshsouq/freshsouq-backend/internal/session"
	"github.com/freshsouq/freshsouq-backend/pkg/config"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/metrics"
)

type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Registry    *session.Registry
	Catalog     *catalog.Client
	CartMetrics *metrics.CartMetrics
	Gatherer    prometheus.Gatherer
	Backends    map[string]controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Backends))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.Ping())
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(deps.Registry, logg))
			r.Delete("/", cartcontrollers.Clear(deps.Registry, deps.CartMetrics, logg))
			r.Post("/items", cartcontrollers.AddItem(deps.Registry, deps.Catalog, deps.CartMetrics, logg))
			r.Patch("/items/{itemID}", cartcontrollers.UpdateItem(deps.Registry, deps.CartMetrics, logg))
			r.Delete("/items/{itemID}", cartcontrollers.RemoveItem(deps.Registry, deps.CartMetrics, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Registry, deps.CartMetrics, logg))

		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{productID}", controllers.GetProduct(deps.Catalog, logg))
	})

	return r
}
