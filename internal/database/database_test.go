package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarks-api/internal/connect"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
)

func testPolicy() connect.Policy {
	return connect.Policy{
		ConnectTimeout: time.Second,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    200 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestOpenSQLiteAndEnsureSchema(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Options{
		Driver:       DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		Retry:        testPolicy(),
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, EnsureSchema(ctx, db))
	// Idempotent.
	require.NoError(t, EnsureSchema(ctx, db))

	var n int
	require.NoError(t, db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+TableBookmarks))
	assert.Equal(t, 0, n)
}

func TestOpenRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "unknown driver", opts: Options{Driver: "mysql", DSN: "x", Retry: testPolicy()}},
		{name: "empty dsn", opts: Options{Driver: DriverPostgres, Retry: testPolicy()}},
		{name: "invalid retry policy", opts: Options{Driver: DriverSQLite, DSN: ":memory:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.opts, logger.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "url form",
			dsn:  "postgres://bookmarks:s3cret@db:5432/bookmarks?sslmode=disable",
			want: "postgres://bookmarks:xxxxx@db:5432/bookmarks?sslmode=disable",
		},
		{
			name: "key value form",
			dsn:  "host=db user=bookmarks password=s3cret dbname=bookmarks",
			want: "host=db user=bookmarks password=xxxxx dbname=bookmarks",
		},
		{
			name: "sqlite path",
			dsn:  "file:bookmarks.db?cache=shared",
			want: "file:bookmarks.db?cache=shared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactDSN(tt.dsn))
		})
	}
}
