package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockbook/stockbook/internal/fiscal"
	"github.com/stockbook/stockbook/internal/ledger"
	"github.com/stockbook/stockbook/internal/masterdata/items"
	"github.com/stockbook/stockbook/internal/masterdata/locations"
	"github.com/stockbook/stockbook/internal/observability"
	"github.com/stockbook/stockbook/internal/reporting"
	"github.com/stockbook/stockbook/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	LedgerHandler    *ledger.Handler
	ReportingHandler *reporting.Handler
	ItemsHandler     *items.Handler
	LocationsHandler *locations.Handler
	FiscalHandler    *fiscal.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		params.LedgerHandler.MountRoutes(api)
		params.ReportingHandler.MountRoutes(api)
		params.ItemsHandler.MountRoutes(api)
		params.LocationsHandler.MountRoutes(api)
		params.FiscalHandler.MountRoutes(api)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
