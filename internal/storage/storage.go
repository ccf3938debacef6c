// Package storage is the persisted cache store. It owns every cache row;
// the aggregation policy is the only writer of shared entries.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InitSchema creates all tables and indexes. The schema is fixed; there is no
// runtime column probing or migration logic.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	email      TEXT UNIQUE NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id            BIGINT PRIMARY KEY REFERENCES users (id),
	segments           TEXT NOT NULL DEFAULT '[]',
	reading_preference TEXT NOT NULL DEFAULT 'short',
	language           TEXT NOT NULL DEFAULT 'en',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cached_news (
	id            BIGSERIAL PRIMARY KEY,
	category      TEXT NOT NULL,
	date          TEXT NOT NULL,
	articles      TEXT NOT NULL DEFAULT '[]',
	article_count INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (category, date)
);

CREATE TABLE IF NOT EXISTS user_news_cache (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id),
	category   TEXT NOT NULL,
	date       TEXT NOT NULL,
	brief      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, category, date)
);

CREATE INDEX IF NOT EXISTS idx_cached_news_date ON cached_news (date DESC);
CREATE INDEX IF NOT EXISTS idx_cached_news_category_date ON cached_news (category, date DESC);
`
