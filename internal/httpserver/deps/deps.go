package deps

import (
	"time"

	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	Production   bool             // hide internal error details from clients
	APIToken     string           // static bearer token guarding /api
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz/metrics
	TrustProxy   bool             // true if running behind a trusted reverse proxy
	CORSOrigins  []string         // allowed CORS origins
	RateLimit    RateLimit        // per-IP limit on /api
	Gateway      store.Gateway    // bookmark persistence
	Cache        store.Pinger     // optional cache, nil when disabled
	StoreName    string           // ex: "postgres", "sqlite3", "memory"
}

// RateLimit is disabled when Burst is 0.
type RateLimit struct {
	Burst     int
	PerMinute int
}
