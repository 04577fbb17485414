package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Usage is the token accounting reported with one completion.
type Usage struct {
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	RecordedAt       time.Time
}

// ModelUsage aggregates Usage rows per model.
type ModelUsage struct {
	Model            string
	Requests         int64
	PromptTokens     int64
	CompletionTokens int64
}

// UsageLedger keeps per-request token counts in <data_dir>/usage.db.
// It stores no message content and no credentials.
type UsageLedger struct {
	db *sql.DB
}

func NewUsageLedger(dataDir string) (*UsageLedger, error) {
	dbPath := filepath.Join(dataDir, "usage.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledger := &UsageLedger{db: db}

	if err := ledger.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return ledger, nil
}

func (ul *UsageLedger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model TEXT NOT NULL,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_usage_model ON usage(model);
	`

	_, err := ul.db.Exec(schema)
	return err
}

// Record appends one usage row. A zero RecordedAt means now.
func (ul *UsageLedger) Record(u Usage) error {
	if u.RecordedAt.IsZero() {
		u.RecordedAt = time.Now()
	}

	query := `
	INSERT INTO usage (model, prompt_tokens, completion_tokens, recorded_at)
	VALUES (?, ?, ?, ?)
	`

	if _, err := ul.db.Exec(query, u.Model, u.PromptTokens, u.CompletionTokens, u.RecordedAt.Unix()); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// Totals returns usage grouped by model, heaviest first.
func (ul *UsageLedger) Totals() ([]ModelUsage, error) {
	query := `
	SELECT model, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens)
	FROM usage
	GROUP BY model
	ORDER BY SUM(prompt_tokens) + SUM(completion_tokens) DESC, model ASC
	`

	rows, err := ul.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var totals []ModelUsage
	for rows.Next() {
		var mu ModelUsage
		if err := rows.Scan(&mu.Model, &mu.Requests, &mu.PromptTokens, &mu.CompletionTokens); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		totals = append(totals, mu)
	}

	return totals, rows.Err()
}

// Reset deletes every usage row.
func (ul *UsageLedger) Reset() error {
	if _, err := ul.db.Exec(`DELETE FROM usage`); err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}
	return nil
}

func (ul *UsageLedger) Close() error {
	if ul.db != nil {
		return ul.db.Close()
	}
	return nil
}
