package seed

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store"
)

// Result summarizes a seeding run.
type Result struct {
	Inserted int
	Skipped  int  // entries that failed validation
	Ran      bool // false when the store already held bookmarks
}

// Seed inserts inputs into gw when it is empty. Each entry goes through the same validation
// as a create request; invalid entries are logged and skipped.
func Seed(ctx context.Context, gw store.Gateway, inputs []domain.Input, log logger.Logger) (Result, error) {
	existing, err := gw.ListAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed: list existing bookmarks: %w", err)
	}
	if len(existing) > 0 {
		log.Info("store not empty, skipping seed", logger.Int("existing", len(existing)))
		return Result{}, nil
	}

	res := Result{Ran: true}
	for i, in := range inputs {
		d, err := domain.ValidateForCreate(in)
		if err != nil {
			res.Skipped++
			log.Warn("skipping invalid seed entry",
				logger.Int("index", i),
				logger.Error(err))
			continue
		}
		b, err := gw.Insert(ctx, d)
		if err != nil {
			return res, fmt.Errorf("seed: insert entry %d: %w", i, err)
		}
		res.Inserted++
		log.Debug("seeded bookmark", logger.Int64("id", b.ID), logger.String("title", b.Title))
	}

	log.Info("seed complete",
		logger.Int("inserted", res.Inserted),
		logger.Int("skipped", res.Skipped))
	return res, nil
}
