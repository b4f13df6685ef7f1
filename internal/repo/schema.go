package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates the tables if they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS subscribers (
			email TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			track TEXT NOT NULL DEFAULT '',
			enrolled BOOLEAN NOT NULL DEFAULT false,
			subscribed_on DATE NOT NULL,
			last_sent_on DATE,
			unsubscribed BOOLEAN NOT NULL DEFAULT false
		)`,
		`CREATE TABLE IF NOT EXISTS templates (
			day INTEGER PRIMARY KEY,
			subject TEXT,
			sms_text TEXT NOT NULL DEFAULT '',
			html_body TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}
