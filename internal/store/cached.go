package store

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/metrics"
)

// Cache holds single bookmark rows by id.
type Cache interface {
	Get(ctx context.Context, id int64) (domain.Bookmark, bool, error)
	Set(ctx context.Context, b domain.Bookmark) error
	Invalidate(ctx context.Context, id int64) error
}

// CachedGateway serves GetByID through a cache and invalidates on writes.
// Cache failures are logged and never fail the request.
//
// A fill only lands when no write finished while the row was being read: writes bump gen
// under fillMu before invalidating, and fills check gen and call Set while holding fillMu.
type CachedGateway struct {
	inner Gateway
	cache Cache
	log   logger.Logger

	fillMu sync.RWMutex
	gen    uint64
}

var (
	_ Gateway = (*CachedGateway)(nil)
	_ Pinger  = (*CachedGateway)(nil)
)

// Cached wraps inner with a read-through cache.
func Cached(inner Gateway, cache Cache, log logger.Logger) *CachedGateway {
	return &CachedGateway{inner: inner, cache: cache, log: log}
}

func (g *CachedGateway) ListAll(ctx context.Context) ([]domain.Bookmark, error) {
	return g.inner.ListAll(ctx)
}

func (g *CachedGateway) GetByID(ctx context.Context, id int64) (domain.Bookmark, error) {
	b, ok, err := g.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		g.log.Warn("cache lookup failed", logger.Int64("id", id), logger.Error(err))
	case ok:
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return b, nil
	default:
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	gen := g.generation()
	b, err = g.inner.GetByID(ctx, id)
	if err != nil {
		return domain.Bookmark{}, err
	}
	g.fill(ctx, gen, b)
	return b, nil
}

func (g *CachedGateway) generation() uint64 {
	g.fillMu.RLock()
	defer g.fillMu.RUnlock()
	return g.gen
}

// fill caches b unless a write completed since gen was read.
func (g *CachedGateway) fill(ctx context.Context, gen uint64, b domain.Bookmark) {
	g.fillMu.RLock()
	defer g.fillMu.RUnlock()

	if g.gen != gen {
		g.log.Debug("cache fill skipped, row written during read", logger.Int64("id", b.ID))
		return
	}
	if err := g.cache.Set(ctx, b); err != nil {
		g.log.Warn("cache fill failed", logger.Int64("id", b.ID), logger.Error(err))
	}
}

func (g *CachedGateway) Insert(ctx context.Context, d domain.Draft) (domain.Bookmark, error) {
	return g.inner.Insert(ctx, d)
}

func (g *CachedGateway) Update(ctx context.Context, id int64, p domain.Patch) (int64, error) {
	n, err := g.inner.Update(ctx, id, p)
	g.invalidate(ctx, id)
	return n, err
}

func (g *CachedGateway) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := g.inner.Delete(ctx, id)
	g.invalidate(ctx, id)
	return n, err
}

// Ping checks the wrapped gateway when it supports it. The cache is optional and not checked.
func (g *CachedGateway) Ping(ctx context.Context) error {
	if p, ok := g.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (g *CachedGateway) invalidate(ctx context.Context, id int64) {
	// Waits for in-flight fills, which then either landed (and are deleted below) or see the bump.
	g.fillMu.Lock()
	g.gen++
	g.fillMu.Unlock()

	// Invalidate even when the client has gone away.
	ctx = context.WithoutCancel(ctx)
	if err := g.cache.Invalidate(ctx, id); err != nil {
		g.log.Warn("cache invalidation failed", logger.Int64("id", id), logger.Error(err))
	}
}
