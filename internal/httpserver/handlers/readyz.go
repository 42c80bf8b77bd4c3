package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

const readyTimeout = 2 * time.Second

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz reports 200 when the store answers. The cache is optional: a failing cache is
// reported as degraded but does not make the service unready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		storeStatus := checkStore(ctx, d)
		resp := readyzResponse{
			Ready: storeStatus.OK,
			Components: map[string]componentStatus{
				"store": storeStatus,
				"cache": checkCache(ctx, d),
			},
		}

		w.Header().Set("Cache-Control", "no-store")
		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Gateway == nil {
		return componentStatus{OK: false, Mode: d.StoreName, Error: "not initialized"}
	}
	p, ok := d.Gateway.(store.Pinger)
	if !ok {
		return componentStatus{OK: true, Mode: d.StoreName}
	}
	if err := p.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: d.StoreName, Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.StoreName}
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.Cache == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	if err := d.Cache.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "reads-served-from-store",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: "redis"}
}
