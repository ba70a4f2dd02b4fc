// ABOUTME: Shared test helpers for the storage package.
// ABOUTME: Opens throwaway databases and builds trades at fixed UTC times.
package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// utcTrade builds a trade opened at "YYYY-MM-DD HH:MM" UTC.
func utcTrade(t *testing.T, stamp, symbol string, outcome models.Outcome) *models.Trade {
	t.Helper()
	opened, err := time.ParseInLocation("2006-01-02 15:04", stamp, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", stamp, err)
	}
	return models.NewTrade(symbol, opened, outcome)
}
