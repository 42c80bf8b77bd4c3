package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarks-api/internal/config"
	"github.com/MrSnakeDoc/bookmarks-api/internal/database"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/redis"
	"github.com/MrSnakeDoc/bookmarks-api/internal/seed"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/bookmarks-api/internal/store/redis"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store/sqlstore"
	"github.com/MrSnakeDoc/bookmarks-api/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *sqlx.DB
	redisClient *goredis.Client
}

// New loads the configuration, connects the backing services and builds the HTTP server.
// Anything that fails here is returned before the server starts listening.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	a := &App{cfg: cfg, logger: loggerClient}

	gateway, storeName, err := a.openStore(ctx)
	if err != nil {
		a.closeBackends()
		return nil, err
	}

	var cache store.Pinger
	if cfg.CacheEnabled() {
		redisClient, err := redis.New(ctx, redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			RedisDB:      cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry:        cfg.RedisRetry(),
		}, loggerClient)
		if err != nil {
			a.closeBackends()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = redisClient

		c := redisstore.NewCache(redisClient, cfg.RedisCacheTTL)
		// Rows may have changed while the service was down.
		if err := c.Flush(ctx); err != nil {
			loggerClient.Warn("failed to flush bookmark cache", logger.Error(err))
		}
		gateway = store.Cached(gateway, c, loggerClient)
		cache = c
		loggerClient.Info("bookmark cache enabled", logger.Duration("ttl", cfg.RedisCacheTTL))
	} else {
		loggerClient.Info("redis address not configured, bookmark cache disabled")
	}

	if cfg.SeedFile != "" {
		if err := a.seed(ctx, gateway); err != nil {
			a.closeBackends()
			return nil, err
		}
	}

	// Dependencies passed to routes.
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		Production:   cfg.IsProduction(),
		APIToken:     cfg.APIToken,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimit: deps.RateLimit{
			Burst:     cfg.RateLimitBurst,
			PerMinute: cfg.RateLimitPerMin,
		},
		Gateway:   gateway,
		Cache:     cache,
		StoreName: storeName,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

// openStore returns the configured gateway and a name for probes and logs.
func (a *App) openStore(ctx context.Context) (store.Gateway, string, error) {
	if a.cfg.Store == config.StoreMemory {
		a.logger.Warn("using in-memory store, bookmarks are lost on restart")
		return memory.New(), config.StoreMemory, nil
	}

	db, err := database.Open(ctx, database.Options{
		Driver:          a.cfg.DBDriver,
		DSN:             a.cfg.DatabaseURL,
		MaxOpenConns:    a.cfg.DBMaxOpenConns,
		MaxIdleConns:    a.cfg.DBMaxIdleConns,
		ConnMaxLifetime: a.cfg.DBConnMaxLifetime,
		Retry:           a.cfg.DBRetry(),
	}, a.logger)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db

	if a.cfg.DBEnsureSchema {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return nil, "", fmt.Errorf("failed to ensure schema: %w", err)
		}
		a.logger.Info("database schema ready", logger.String("table", database.TableBookmarks))
	}

	return sqlstore.New(db), a.cfg.DBDriver, nil
}

func (a *App) seed(ctx context.Context, gw store.Gateway) error {
	inputs, err := seed.NewLoader(a.cfg.SeedFile, a.cfg.SeedDefaultRating).Load()
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}
	res, err := seed.Seed(ctx, gw, inputs, a.logger)
	if err != nil {
		return fmt.Errorf("failed to seed bookmarks: %w", err)
	}
	if res.Ran {
		a.logger.Info("seed applied",
			logger.String("file", a.cfg.SeedFile),
			logger.Int("inserted", res.Inserted),
			logger.Int("skipped", res.Skipped))
	}
	return nil
}

func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	a.logger.Infof("🚀 Starting bookmarks-api v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bookmarks-api %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.closeBackends()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.closeBackends()
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeBackends()
	a.logger.Info("✅ bookmarks-api stopped cleanly")
	return nil
}

func (a *App) closeBackends() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
		a.redisClient = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warnf("failed to close database: %v", err)
		} else {
			a.logger.Info("✅ Database closed cleanly")
		}
		a.db = nil
	}
}
