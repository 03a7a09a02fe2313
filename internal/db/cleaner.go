package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartDraftCleaner periodically removes cards that were saved without a
// mint address and not touched for longer than retention. It stops when ctx
// is done.
func StartDraftCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM cards
                     WHERE mint_address IS NULL
                       AND updated_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean draft cards", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned draft cards", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
