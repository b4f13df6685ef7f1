package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kfarkas-hq/dripfeed/internal/model"
)

type PostgresSubscriberStore struct {
	db *sql.DB
}

func NewPostgresSubscriberStore(db *sql.DB) *PostgresSubscriberStore {
	return &PostgresSubscriberStore{db: db}
}

const subscriberColumns = `email, name, phone, track, enrolled, subscribed_on, last_sent_on, unsubscribed`

func (s *PostgresSubscriberStore) All(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		ORDER BY email ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresSubscriberStore) GetByEmail(ctx context.Context, email string) (model.Subscriber, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE email = $1
	`, email)

	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscriber{}, ErrNotFound
	}
	if err != nil {
		return model.Subscriber{}, err
	}
	return sub, nil
}

func (s *PostgresSubscriberStore) Upsert(ctx context.Context, sub model.Subscriber) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscribers (email, name, phone, track, enrolled, subscribed_on, unsubscribed)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    track = EXCLUDED.track,
		    enrolled = EXCLUDED.enrolled
	`, sub.Email, sub.Name, sub.Phone, sub.Track, sub.Enrolled, sub.SubscribedOn)
	return err
}

func (s *PostgresSubscriberStore) SetUnsubscribed(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscribers
		SET unsubscribed = true
		WHERE email = $1
	`, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresSubscriberStore) UpdateLastSent(ctx context.Context, email string, sentOn time.Time) error {
	// Conditional so an overlapping run can never move the timestamp back.
	_, err := s.db.ExecContext(ctx, `
		UPDATE subscribers
		SET last_sent_on = $2
		WHERE email = $1
		  AND (last_sent_on IS NULL OR last_sent_on < $2)
	`, email, sentOn)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (model.Subscriber, error) {
	var sub model.Subscriber
	var lastSent sql.NullTime

	if err := row.Scan(
		&sub.Email,
		&sub.Name,
		&sub.Phone,
		&sub.Track,
		&sub.Enrolled,
		&sub.SubscribedOn,
		&lastSent,
		&sub.Unsubscribed,
	); err != nil {
		return model.Subscriber{}, err
	}

	if lastSent.Valid {
		t := lastSent.Time
		sub.LastSentOn = &t
	}
	return sub, nil
}
