package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/scancart-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/scancart-backend/api/controllers/cart"
	scancontrollers "github.com/angelmondragon/scancart-backend/api/controllers/scan"
	"github.com/angelmondragon/scancart-backend/api/middleware"
	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/pkg/config"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
	"github.com/angelmondragon/scancart-backend/pkg/metrics"
)

// Sessions is the scan session controller as seen by the HTTP layer.
type Sessions interface {
	scancontrollers.Service
	cartcontrollers.Confirmer
}

type Dependencies struct {
	Sessions Sessions
	Cart     cartcontrollers.Service
	Catalog  catalog.Resolver
	Ready    map[string]controllers.Pinger

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", controllers.AppState(deps.Sessions, deps.Cart, logg))
		r.Get("/catalog/{code}", controllers.CatalogLookup(deps.Catalog, logg))

		r.Route("/scan", func(r chi.Router) {
			r.Get("/", scancontrollers.ScanState(deps.Sessions, logg))
			r.Post("/start", scancontrollers.ScanStart(deps.Sessions, logg))
			r.Post("/cancel", scancontrollers.ScanCancel(deps.Sessions, logg))
			r.Post("/decode", scancontrollers.ScanDecode(deps.Sessions, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
			r.Post("/confirm", cartcontrollers.CartConfirm(deps.Sessions, logg))
			r.Patch("/lines/{index}", cartcontrollers.CartAdjustQuantity(deps.Cart, logg))
		})
	})

	return r
}
