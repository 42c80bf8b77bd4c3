package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
)

// ErrNotFound is returned by GetByID when no row matches.
var ErrNotFound = errors.New("bookmark not found")

// Gateway is the persistence boundary for bookmarks_data.
// Each method is a single statement; none of them retry.
type Gateway interface {
	// ListAll returns every bookmark in insertion order. Never nil.
	ListAll(ctx context.Context) ([]domain.Bookmark, error)
	// GetByID returns ErrNotFound when id does not exist.
	GetByID(ctx context.Context, id int64) (domain.Bookmark, error)
	// Insert stores d and returns the record with its new id.
	Insert(ctx context.Context, d domain.Draft) (domain.Bookmark, error)
	// Update applies p to id and reports rows affected. Unknown id is 0, not an error.
	Update(ctx context.Context, id int64, p domain.Patch) (int64, error)
	// Delete removes id and reports rows affected.
	Delete(ctx context.Context, id int64) (int64, error)
}

// Pinger is implemented by gateways backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
