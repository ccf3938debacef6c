package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"newsbrief/internal/model"
)

type dbUserBrief struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Category  string    `db:"category"`
	Date      string    `db:"date"`
	Brief     string    `db:"brief"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// GetUserBrief reads a personalized brief for (user, category, date).
// Expired rows are treated as misses.
func (s *Store) GetUserBrief(ctx context.Context, userID int64, category, date string) (*model.Brief, bool, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	var row dbUserBrief
	err = conn.GetContext(
		ctx,
		&row,
		`SELECT id, user_id, category, date, brief, created_at, expires_at
			FROM user_news_cache WHERE user_id = $1 AND category = $2 AND date = $3`,
		userID,
		category,
		date,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if time.Now().After(row.ExpiresAt) {
		return nil, false, nil
	}

	var brief model.Brief
	if err := json.Unmarshal([]byte(row.Brief), &brief); err != nil {
		return nil, false, fmt.Errorf("decode cached brief: %w", err)
	}

	return &brief, true, nil
}

// PutUserBrief upserts the personalized brief row for (user, category, date).
func (s *Store) PutUserBrief(ctx context.Context, userID int64, category, date string, brief model.Brief, ttl time.Duration) error {
	payload, err := json.Marshal(brief)
	if err != nil {
		return fmt.Errorf("encode brief: %w", err)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.ExecContext(
		ctx,
		`INSERT INTO user_news_cache (user_id, category, date, brief, created_at, expires_at)
			VALUES ($1, $2, $3, $4, now(), $5)
			ON CONFLICT (user_id, category, date) DO UPDATE SET
				brief = EXCLUDED.brief,
				created_at = now(),
				expires_at = EXCLUDED.expires_at`,
		userID,
		category,
		date,
		string(payload),
		time.Now().Add(ttl),
	)

	return err
}

// InvalidateUser deletes every personalized brief belonging to the user.
// Called when preferences change and on explicit cache clear.
func (s *Store) InvalidateUser(ctx context.Context, userID int64) (int64, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, `DELETE FROM user_news_cache WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
