package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/weatherscore/internal/model"
	"go.uber.org/zap"
)

// BatchInserter is satisfied by *scores.Store
type BatchInserter interface {
	InsertBatch(ctx context.Context, batch []model.HighScore) (int, error)
}

// ImportFile parses path and writes every batch to the store. Each batch is
// its own transaction, so a failure leaves earlier batches in place.
func ImportFile(ctx context.Context, parser *Parser, path string, store BatchInserter, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var inserted int
	res, err := parser.ParseFile(path, func(batch []model.HighScore) error {
		n, err := store.InsertBatch(ctx, batch)
		if err != nil {
			return err
		}
		inserted += n
		logger.Debug("Inserted batch", zap.Int("rows", n), zap.Int("total", inserted))
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("import %s: %w", path, err)
	}

	logger.Info("Imported high scores",
		zap.String("file", path),
		zap.Int("inserted", inserted),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
