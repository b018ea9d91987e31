package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/recovery-dashboard/internal/handlers"
	"github.com/GregMSThompson/recovery-dashboard/internal/middleware"
)

// NewRouter mounts every route. Authentication is skipped when deps carries no
// Firebase client.
func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	dsh := handlers.NewDashboardHandlers(deps)
	exh := handlers.NewExpiryHandlers(deps)
	rph := handlers.NewReportHandlers(deps)
	rch := handlers.NewRecordHandlers(deps)

	r.Group(func(r chi.Router) {
		if deps.Firebase != nil {
			r.Use(middleware.NewMiddleware(deps.Firebase).FirebaseAuth)
		}
		r.Mount("/dashboard", dsh.DashboardRoutes())
		r.Mount("/expiry", exh.ExpiryRoutes())
		r.Mount("/reports", rph.ReportRoutes())
		r.Mount("/records", rch.RecordRoutes())
	})
	return r
}
