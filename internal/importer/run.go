// ABOUTME: Adds parsed report trades to the store, skipping already imported positions.
// ABOUTME: Each run gets a uuid that tags its log lines.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/tradejournal/internal/models"
	"github.com/harperreed/tradejournal/internal/storage"
	"github.com/harperreed/tradejournal/internal/logging"
	"github.com/rs/zerolog"
)

// Store is the part of the repository an import run needs.
type Store interface {
	TradeExists(ctx context.Context, positionID string) (bool, error)
	AddTrade(ctx context.Context, t *models.Trade) (int64, error)
}

// Result summarizes an import run.
type Result struct {
	RunID   uuid.UUID `json:"run_id"`
	Added   int       `json:"added"`
	Skipped int       `json:"skipped"`
	Failed  int       `json:"failed"`
	Errors  []error   `json:"-"`
}

// Run adds each trade once. Trades whose position id or time slot is already
// recorded are skipped; other failures are collected and the run continues.
func Run(ctx context.Context, store Store, trades []*models.Trade, log zerolog.Logger) Result {
	res := Result{RunID: uuid.New()}
	log = logging.Component(log, "importer").With().Str("run_id", res.RunID.String()).Logger()

	for _, t := range trades {
		if err := ctx.Err(); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err)
			break
		}

		if t.PositionID != nil {
			exists, err := store.TradeExists(ctx, *t.PositionID)
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Errorf("position %s: %w", *t.PositionID, err))
				continue
			}
			if exists {
				res.Skipped++
				log.Debug().Str("position_id", *t.PositionID).Msg("already imported")
				continue
			}
		}

		if _, err := store.AddTrade(ctx, t); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				res.Skipped++
				continue
			}
			res.Failed++
			res.Errors = append(res.Errors, fmt.Errorf("position %s: %w", t.PositionIDString(), err))
			log.Warn().Err(err).Str("position_id", t.PositionIDString()).Msg("import failed")
			continue
		}
		res.Added++
	}

	log.Info().Int("added", res.Added).Int("skipped", res.Skipped).Int("failed", res.Failed).Msg("import finished")
	return res
}
