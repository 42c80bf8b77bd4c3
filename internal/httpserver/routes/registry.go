package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var (
	registry    []entry // mounted at the root (infra endpoints)
	apiRegistry []entry // mounted under /api, behind the bearer guard
)

// Register a root-level registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAPI registers routes under /api. They only run for authenticated requests.
func RegisterAPI(reg Registrar, mws ...Middleware) {
	apiRegistry = append(apiRegistry, entry{reg: reg, mws: mws})
}

// RegisterAll mounts every registrar. Called once when the router is built.
func RegisterAll(r chi.Router, d deps.Deps) {
	mount(r, d, registry)

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.RequireBearer(d.APIToken, d.Logger))
		if d.RateLimit.Burst > 0 {
			api.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.RateLimit.Burst,
				RefillPerIPPerMin: d.RateLimit.PerMinute,
				MaxEntries:        mw.DefaultMaxClients,
				TrustProxy:        d.TrustProxy,
			}))
		}
		mount(api, d, apiRegistry)
	})
}

func mount(r chi.Router, d deps.Deps, entries []entry) {
	for _, e := range entries {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}
