package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

// registerInfra exposes probes and metrics outside the bearer guard, restricted by CIDR.
func registerInfra(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
		r.Get("/healthz", handlers.Healthz(d))
		r.Get("/readyz", handlers.Readyz(d))
		r.Method("GET", "/metrics", handlers.Metrics())
	})
}
