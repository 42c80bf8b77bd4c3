package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store/memory"
)

func TestSeedInsertsValidEntries(t *testing.T) {
	gw := memory.New()
	inputs := []domain.Input{
		{"title": "Go", "url": "https://go.dev", "rating": 5},
		{"title": "Broken", "url": "htp://invalid-url", "rating": 3},
		{"title": "No rating", "url": "https://example.com"},
		{"title": "Chi", "url": "https://go-chi.io", "rating": "4"},
	}

	res, err := Seed(context.Background(), gw, inputs, logger.NewNop())
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Skipped)

	all, err := gw.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Go", all[0].Title)
	assert.Equal(t, 4, all[1].Rating)
}

func TestSeedSkipsNonEmptyStore(t *testing.T) {
	gw := memory.New()
	_, err := gw.Insert(context.Background(), domain.Draft{Title: "existing", URL: "https://e.com", Rating: 1})
	require.NoError(t, err)

	res, err := Seed(context.Background(), gw,
		[]domain.Input{{"title": "Go", "url": "https://go.dev", "rating": 5}}, logger.NewNop())
	require.NoError(t, err)
	assert.False(t, res.Ran)
	assert.Equal(t, 1, gw.Count())
}
