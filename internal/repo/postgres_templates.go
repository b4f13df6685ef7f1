package repo

import (
	"context"
	"database/sql"

	"github.com/kfarkas-hq/dripfeed/internal/model"
)

type PostgresTemplateStore struct {
	db *sql.DB
}

func NewPostgresTemplateStore(db *sql.DB) *PostgresTemplateStore {
	return &PostgresTemplateStore{db: db}
}

func (s *PostgresTemplateStore) All(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, subject, sms_text, html_body
		FROM templates
		ORDER BY day ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Template
	for rows.Next() {
		var t model.Template
		var subject sql.NullString
		if err := rows.Scan(&t.Day, &subject, &t.SMSText, &t.HTMLBody); err != nil {
			return nil, err
		}
		t.Subject = subject.String
		out = append(out, t)
	}
	return out, rows.Err()
}
