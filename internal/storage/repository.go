// ABOUTME: Repository interface for trade journal storage.
// ABOUTME: Defines the contract for trades, error tags, settings, and export.
package storage

import (
	"context"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
	"github.com/shopspring/decimal"
)

// Repository defines the storage interface for journal data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Trade operations
	AddTrade(ctx context.Context, t *models.Trade) (int64, error)
	TradeExists(ctx context.Context, positionID string) (bool, error)
	TradeExistsAt(ctx context.Context, openedAt time.Time) (bool, error)
	GetTrade(ctx context.Context, id int64, loc *time.Location) (*models.Trade, error)
	DeleteTrade(ctx context.Context, id int64) error
	ListTrades(ctx context.Context, loc *time.Location) ([]*models.Trade, error)
	FilterTrades(ctx context.Context, loc *time.Location, f models.Filter) ([]*models.Trade, error)
	SetTradeErrors(ctx context.Context, ids []int64, tags []string) error

	// Aggregates
	CountTrades(ctx context.Context) (int, error)
	CountByOutcome(ctx context.Context, outcome models.Outcome) (int, error)
	Counts(ctx context.Context) (Counts, error)

	// Error tag operations
	AddTag(ctx context.Context, name string) error
	ListTags(ctx context.Context) ([]models.ErrorTag, error)
	TagNames(ctx context.Context) ([]string, error)
	GetTag(ctx context.Context, id int64) (*models.ErrorTag, error)
	TagUsage(ctx context.Context) ([]models.TagUsage, error)
	RenameTag(ctx context.Context, id int64, newName string) error
	DeleteTag(ctx context.Context, id int64) error

	// Settings
	GetSetting(ctx context.Context, key, def string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]string, error)
	DefaultTimezone(ctx context.Context) (string, error)
	SetDefaultTimezone(ctx context.Context, name string) error
	RFThreshold(ctx context.Context) (decimal.Decimal, error)
	SetRFThreshold(ctx context.Context, v decimal.Decimal) error

	// Export/Import
	GetAllData(ctx context.Context, loc *time.Location) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) (*ImportSummary, error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
