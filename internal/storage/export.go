// ABOUTME: Export and import functionality for journal data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/tradejournal/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current export format version.
const ExportVersion = "1.0"

// ExportData represents the full export format for journal data.
type ExportData struct {
	Version    string            `json:"version" yaml:"version"`
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Tool       string            `json:"tool" yaml:"tool"`
	Timezone   string            `json:"timezone" yaml:"timezone"`
	Trades     []*models.Trade   `json:"trades" yaml:"trades"`
	Tags       []string          `json:"tags" yaml:"tags"`
	Settings   map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// ImportSummary counts what ImportData changed.
type ImportSummary struct {
	Trades   int `json:"trades"`
	Skipped  int `json:"skipped"`
	Tags     int `json:"tags"`
	Settings int `json:"settings"`
}

// GetAllData retrieves all data for export, with trade times projected into loc.
func (d *DB) GetAllData(ctx context.Context, loc *time.Location) (*ExportData, error) {
	if loc == nil {
		loc = time.UTC
	}
	trades, err := d.ListTrades(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	tags, err := d.TagNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	settings, err := d.AllSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "tradejournal",
		Timezone:   loc.String(),
		Trades:     trades,
		Tags:       tags,
		Settings:   settings,
	}, nil
}

// ImportData re-adds exported data. Trades that collide with stored ones are skipped.
func (d *DB) ImportData(ctx context.Context, data *ExportData) (*ImportSummary, error) {
	summary := &ImportSummary{}

	for _, name := range data.Tags {
		if err := d.AddTag(ctx, name); err != nil {
			return summary, fmt.Errorf("import tag %q: %w", name, err)
		}
		summary.Tags++
	}

	for _, t := range data.Trades {
		if _, err := d.AddTrade(ctx, t); err != nil {
			if errors.Is(err, ErrDuplicate) {
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("import trade %d: %w", t.ID, err)
		}
		summary.Trades++
	}

	for k, v := range data.Settings {
		if err := d.SetSetting(ctx, k, v); err != nil {
			return summary, fmt.Errorf("import setting %s: %w", k, err)
		}
		summary.Settings++
	}

	return summary, nil
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, data []byte) (*ImportSummary, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &exportData)
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context, loc *time.Location) ([]byte, error) {
	data, err := d.GetAllData(ctx, loc)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (d *DB) ExportYAML(ctx context.Context, loc *time.Location) ([]byte, error) {
	data, err := d.GetAllData(ctx, loc)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string            `yaml:"version"`
		ExportedAt string            `yaml:"exported_at"`
		Tool       string            `yaml:"tool"`
		Timezone   string            `yaml:"timezone"`
		Trades     []yamlTrade       `yaml:"trades"`
		Tags       []string          `yaml:"tags"`
		Settings   map[string]string `yaml:"settings,omitempty"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Timezone:   data.Timezone,
		Trades:     make([]yamlTrade, 0, len(data.Trades)),
		Tags:       data.Tags,
		Settings:   data.Settings,
	}

	for _, t := range data.Trades {
		yt := yamlTrade{
			ID:               t.ID,
			Date:             t.Date(),
			Time:             t.Clock(),
			Symbol:           t.Symbol,
			Profit:           string(t.Outcome),
			Errors:           t.Errors,
			Size:             t.Size.String(),
			PositionID:       t.PositionIDString(),
			Type:             string(t.Direction),
			OriginalTimezone: t.OriginalTimezone,
		}
		yt.Entry = decString(t.Entry)
		yt.Exit = decString(t.Exit)
		yamlData.Trades = append(yamlData.Trades, yt)
	}

	return yaml.Marshal(yamlData)
}

// yamlTrade keeps decimals as strings so YAML never renders them as floats.
type yamlTrade struct {
	ID               int64    `yaml:"id"`
	Date             string   `yaml:"date"`
	Time             string   `yaml:"time"`
	Symbol           string   `yaml:"symbol"`
	Entry            string   `yaml:"entry,omitempty"`
	Exit             string   `yaml:"exit,omitempty"`
	Profit           string   `yaml:"profit"`
	Errors           []string `yaml:"errors,omitempty"`
	Size             string   `yaml:"size"`
	PositionID       string   `yaml:"position_id,omitempty"`
	Type             string   `yaml:"type,omitempty"`
	OriginalTimezone string   `yaml:"original_timezone,omitempty"`
}

// ExportMarkdown renders trades opened on or after since (nil for all) as a Markdown table.
func (d *DB) ExportMarkdown(ctx context.Context, loc *time.Location, since *time.Time) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	trades, err := d.ListTrades(ctx, loc)
	if err != nil {
		return "", err
	}

	if since != nil {
		var filtered []*models.Trade
		for _, t := range trades {
			if !t.OpenedAt.Before(*since) {
				filtered = append(filtered, t)
			}
		}
		trades = filtered
	}

	var sb strings.Builder
	now := time.Now().In(loc)

	sb.WriteString(fmt.Sprintf("# Trade Journal Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Timezone: %s\n\n", loc))

	sb.WriteString("## Trades\n\n")
	sb.WriteString("| Date | Time | Symbol | Type | Entry | Exit | Size | Result | Errors |\n")
	sb.WriteString("|------|------|--------|------|-------|------|------|--------|--------|\n")
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			t.Date(), t.Clock(), t.Symbol, t.Direction,
			decString(t.Entry), decString(t.Exit), t.Size.String(),
			t.Outcome, t.ErrorsString()))
	}

	usage, err := d.TagUsage(ctx)
	if err == nil && len(usage) > 0 {
		sb.WriteString("\n## Error Tags\n\n")
		sb.WriteString("| Tag | Trades |\n")
		sb.WriteString("|-----|--------|\n")
		for _, u := range usage {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", u.Name, u.Count))
		}
	}

	return sb.String(), nil
}

func decString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
