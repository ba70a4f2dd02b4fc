// ABOUTME: Error-tag registry: the reusable vocabulary of trade mistakes.
// ABOUTME: Usage counts come from the trade_errors join table and are computed per call.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/tradejournal/internal/models"
)

// AddTag inserts a tag if it is not already registered.
func (d *DB) AddTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if err := checkTagName(name); err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx, `INSERT OR IGNORE INTO errors (error) VALUES (?)`, name); err != nil {
		return fmt.Errorf("add tag: %w", err)
	}
	return nil
}

// checkTagName enforces the naming rule shared by every path that creates a tag.
// Commas are reserved for the "a, b" list form.
func checkTagName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: tag name is required", ErrInvalid)
	}
	if strings.Contains(name, ",") {
		return fmt.Errorf("%w: tag name %q may not contain a comma", ErrInvalid, name)
	}
	return nil
}

// ListTags returns every tag with its id, ordered by name.
func (d *DB) ListTags(ctx context.Context) ([]models.ErrorTag, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, error FROM errors ORDER BY error`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []models.ErrorTag
	for rows.Next() {
		var tag models.ErrorTag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// TagNames returns the tag names ordered alphabetically.
func (d *DB) TagNames(ctx context.Context) ([]string, error) {
	tags, err := d.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names, nil
}

// GetTag retrieves a tag by id.
func (d *DB) GetTag(ctx context.Context, id int64) (*models.ErrorTag, error) {
	var tag models.ErrorTag
	err := d.db.QueryRowContext(ctx, `SELECT id, error FROM errors WHERE id = ?`, id).Scan(&tag.ID, &tag.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

// TagUsage returns every tag with the number of trades referencing it, including unused tags.
func (d *DB) TagUsage(ctx context.Context) ([]models.TagUsage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT e.id, e.error, COUNT(te.trade_id)
		FROM errors e
		LEFT JOIN trade_errors te ON te.error_id = e.id
		GROUP BY e.id, e.error
		ORDER BY e.error`)
	if err != nil {
		return nil, fmt.Errorf("tag usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var usage []models.TagUsage
	for rows.Next() {
		var u models.TagUsage
		if err := rows.Scan(&u.ID, &u.Name, &u.Count); err != nil {
			return nil, fmt.Errorf("scan tag usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// TagUsageMap returns usage counts keyed by tag name.
func (d *DB) TagUsageMap(ctx context.Context) (map[string]int, error) {
	usage, err := d.TagUsage(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int, len(usage))
	for _, u := range usage {
		m[u.Name] = u.Count
	}
	return m, nil
}

// RenameTag changes a tag's name. Every trade linked to the tag reflects the new name.
func (d *DB) RenameTag(ctx context.Context, id int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if err := checkTagName(newName); err != nil {
		return err
	}

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var other int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM errors WHERE error = ?`, newName).Scan(&other)
		switch {
		case err == nil && other != id:
			return fmt.Errorf("%w: %q", ErrTagExists, newName)
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check tag name: %w", err)
		}

		res, err := tx.ExecContext(ctx, `UPDATE errors SET error = ? WHERE id = ?`, newName, id)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrTagExists, newName)
			}
			return fmt.Errorf("rename tag: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		d.log.Debug().Err(err).Int64("id", id).Str("name", newName).Msg("rename tag rejected")
	}
	return err
}

// DeleteTag removes a tag. It returns ErrTagInUse while any trade references it.
func (d *DB) DeleteTag(ctx context.Context, id int64) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		var uses int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM trade_errors WHERE error_id = ?`, id).Scan(&uses); err != nil {
			return fmt.Errorf("count tag usage: %w", err)
		}
		if uses > 0 {
			return fmt.Errorf("%w: used by %d trade(s)", ErrTagInUse, uses)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM errors WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
