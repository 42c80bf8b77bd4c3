package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

var _ store.Gateway = (*Gateway)(nil)

// Gateway keeps bookmarks in process memory.
// Used when no database is configured and in tests. Safe for concurrent use.
type Gateway struct {
	mu     sync.RWMutex
	rows   map[int64]domain.Bookmark
	order  []int64 // insertion order
	nextID int64
}

// New creates an empty gateway. Ids start at 1.
func New() *Gateway {
	return &Gateway{
		rows:   make(map[int64]domain.Bookmark),
		nextID: 1,
	}
}

func (g *Gateway) ListAll(_ context.Context) ([]domain.Bookmark, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]domain.Bookmark, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.rows[id].Clone())
	}
	return out, nil
}

func (g *Gateway) GetByID(_ context.Context, id int64) (domain.Bookmark, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	b, ok := g.rows[id]
	if !ok {
		return domain.Bookmark{}, store.ErrNotFound
	}
	return b.Clone(), nil
}

func (g *Gateway) Insert(_ context.Context, d domain.Draft) (domain.Bookmark, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := domain.FromDraft(g.nextID, d)
	g.nextID++
	g.rows[b.ID] = b
	g.order = append(g.order, b.ID)
	return b.Clone(), nil
}

func (g *Gateway) Update(_ context.Context, id int64, p domain.Patch) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.rows[id]
	if !ok {
		return 0, nil
	}
	g.rows[id] = b.Apply(p)
	return 1, nil
}

func (g *Gateway) Delete(_ context.Context, id int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.rows[id]; !ok {
		return 0, nil
	}
	delete(g.rows, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

// Count returns the number of stored bookmarks.
func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.rows)
}
