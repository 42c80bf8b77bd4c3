// Package sqlstore implements the bookmark gateway over database/sql with sqlx.
// Queries are written with ? placeholders and rebound for the active driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/bookmarks-api/internal/database"
	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

const columns = "id, title, url, description, rating"

var (
	_ store.Gateway = (*Gateway)(nil)
	_ store.Pinger  = (*Gateway)(nil)
)

// Gateway reads and writes bookmarks_data.
type Gateway struct {
	db *sqlx.DB

	listQuery   string
	getQuery    string
	insertQuery string
	deleteQuery string
}

// New builds a gateway over an open pool.
func New(db *sqlx.DB) *Gateway {
	t := database.TableBookmarks
	return &Gateway{
		db:          db,
		listQuery:   "SELECT " + columns + " FROM " + t + " ORDER BY id",
		getQuery:    db.Rebind("SELECT " + columns + " FROM " + t + " WHERE id = ?"),
		insertQuery: db.Rebind("INSERT INTO " + t + " (title, url, description, rating) VALUES (?, ?, ?, ?) RETURNING " + columns),
		deleteQuery: db.Rebind("DELETE FROM " + t + " WHERE id = ?"),
	}
}

func (g *Gateway) ListAll(ctx context.Context) ([]domain.Bookmark, error) {
	rows := []domain.Bookmark{}
	if err := g.db.SelectContext(ctx, &rows, g.listQuery); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return rows, nil
}

func (g *Gateway) GetByID(ctx context.Context, id int64) (domain.Bookmark, error) {
	var b domain.Bookmark
	if err := g.db.GetContext(ctx, &b, g.getQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Bookmark{}, store.ErrNotFound
		}
		return domain.Bookmark{}, fmt.Errorf("get bookmark %d: %w", id, err)
	}
	return b, nil
}

func (g *Gateway) Insert(ctx context.Context, d domain.Draft) (domain.Bookmark, error) {
	var b domain.Bookmark
	err := g.db.QueryRowxContext(ctx, g.insertQuery, d.Title, d.URL, d.Description, d.Rating).StructScan(&b)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}
	return b, nil
}

func (g *Gateway) Update(ctx context.Context, id int64, p domain.Patch) (int64, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *p.URL)
	}
	if p.SetDescription {
		sets = append(sets, "description = ?")
		args = append(args, p.Description)
	}
	if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	args = append(args, id)

	q := g.db.Rebind("UPDATE " + database.TableBookmarks + " SET " + strings.Join(sets, ", ") + " WHERE id = ?")
	res, err := g.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("update bookmark %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update bookmark %d: rows affected: %w", id, err)
	}
	return n, nil
}

func (g *Gateway) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := g.db.ExecContext(ctx, g.deleteQuery, id)
	if err != nil {
		return 0, fmt.Errorf("delete bookmark %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete bookmark %d: rows affected: %w", id, err)
	}
	return n, nil
}

// Ping checks the pool.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}
