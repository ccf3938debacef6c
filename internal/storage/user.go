package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"newsbrief/internal/model"
)

type dbUser struct {
	ID    int64  `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
}

type dbPreferences struct {
	Segments          string `db:"segments"`
	ReadingPreference string `db:"reading_preference"`
	Language          string `db:"language"`
}

// UserByToken resolves a session token to its user. A missing or expired
// session returns (nil, nil); the caller turns that into an auth failure.
func (s *Store) UserByToken(ctx context.Context, token string) (*model.User, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var row dbUser
	err = conn.GetContext(
		ctx,
		&row,
		`SELECT users.id, users.email, users.name
			FROM sessions
			JOIN users ON sessions.user_id = users.id
			WHERE sessions.token = $1 AND sessions.expires_at > now()`,
		token,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user := model.User(row)
	return &user, nil
}

// GetPreferences returns the user's stored preferences. The second return
// value reports whether a row exists; callers substitute defaults when not.
func (s *Store) GetPreferences(ctx context.Context, userID int64) (model.Preferences, bool, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return model.Preferences{}, false, err
	}
	defer conn.Close()

	var row dbPreferences
	err = conn.GetContext(
		ctx,
		&row,
		`SELECT segments, reading_preference, language FROM user_preferences WHERE user_id = $1`,
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}, false, nil
	}
	if err != nil {
		return model.Preferences{}, false, err
	}

	var segments []string
	if err := json.Unmarshal([]byte(row.Segments), &segments); err != nil {
		return model.Preferences{}, false, fmt.Errorf("decode segments: %w", err)
	}

	return model.Preferences{
		Segments:          segments,
		ReadingPreference: row.ReadingPreference,
		Language:          row.Language,
	}, true, nil
}

// UpdatePreferences upserts the user's preferences and invalidates their
// personalized briefs in the same transaction, so a brief computed from the
// old subscriptions cannot outlive the update.
func (s *Store) UpdatePreferences(ctx context.Context, userID int64, prefs model.Preferences) error {
	segments, err := json.Marshal(prefs.Segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO user_preferences (user_id, segments, reading_preference, language, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (user_id) DO UPDATE SET
				segments = EXCLUDED.segments,
				reading_preference = EXCLUDED.reading_preference,
				language = EXCLUDED.language,
				updated_at = now()`,
		userID,
		string(segments),
		prefs.ReadingPreference,
		prefs.Language,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_news_cache WHERE user_id = $1`, userID); err != nil {
		return err
	}

	return tx.Commit()
}
