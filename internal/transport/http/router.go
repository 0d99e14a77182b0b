// Package httptransport assembles the HTTP surface: middleware chain,
// public authentication routes, and the authenticated API.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activityhandler "veristaff/internal/activity/handler"
	compliancehandler "veristaff/internal/compliance/handler"
	identityhandler "veristaff/internal/identity/handler"
	orghandler "veristaff/internal/org/handler"
	"veristaff/internal/platform/metrics"
	"veristaff/internal/platform/middleware"
	recordshandler "veristaff/internal/records/handler"
	"veristaff/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Location  *time.Location
	Validator middleware.TokenValidator
	Metrics   *metrics.HTTP

	Identity   *identityhandler.Handler
	Records    *recordshandler.Handler
	Compliance *compliancehandler.Handler
	Orgs       *orghandler.Handler
	Activity   *activityhandler.Handler

	// Health reports readiness of backing stores; nil means always ready.
	Health func() error
}

// NewRouter wires the full route tree. Everything under /api requires a
// valid bearer token; /auth, /healthz, and /metrics are public.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime(deps.Location))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	deps.Identity.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		deps.Records.Register(r)
		deps.Compliance.Register(r)
		deps.Orgs.Register(r)
		deps.Activity.Register(r)
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
