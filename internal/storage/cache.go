package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"newsbrief/internal/model"
)

type dbCachedNews struct {
	ID           int64     `db:"id"`
	Category     string    `db:"category"`
	Date         string    `db:"date"`
	Articles     string    `db:"articles"`
	ArticleCount int       `db:"article_count"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// GetArticles reads the shared cache row for (category, date). The second
// return value distinguishes a stored empty list (true) from a missing or
// logically expired row (false). Expired rows are left in place; expiry is
// enforced here, not by deletion.
func (s *Store) GetArticles(ctx context.Context, category, date string) ([]model.Article, bool, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	var row dbCachedNews
	err = conn.GetContext(
		ctx,
		&row,
		`SELECT id, category, date, articles, article_count, created_at, expires_at
			FROM cached_news WHERE category = $1 AND date = $2`,
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

	var articles []model.Article
	if err := json.Unmarshal([]byte(row.Articles), &articles); err != nil {
		return nil, false, fmt.Errorf("decode cached articles: %w", err)
	}
	if articles == nil {
		articles = []model.Article{}
	}

	return articles, true, nil
}

// PutArticles upserts the shared cache row for (category, date). An empty
// list is a valid value meaning "checked, nothing found". The replace is a
// single statement, so readers never observe a partially written list.
func (s *Store) PutArticles(ctx context.Context, category, date string, articles []model.Article, ttl time.Duration) error {
	if articles == nil {
		articles = []model.Article{}
	}

	payload, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.ExecContext(
		ctx,
		`INSERT INTO cached_news (category, date, articles, article_count, created_at, expires_at)
			VALUES ($1, $2, $3, $4, now(), $5)
			ON CONFLICT (category, date) DO UPDATE SET
				articles = EXCLUDED.articles,
				article_count = EXCLUDED.article_count,
				created_at = now(),
				expires_at = EXCLUDED.expires_at`,
		category,
		date,
		string(payload),
		len(articles),
		time.Now().Add(ttl),
	)

	return err
}

// ClearShared removes every shared cache row.
func (s *Store) ClearShared(ctx context.Context) (int64, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, `DELETE FROM cached_news`)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Stats reports totals and the most recent entries for operators.
func (s *Store) Stats(ctx context.Context) (model.CacheStats, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return model.CacheStats{}, err
	}
	defer conn.Close()

	var stats model.CacheStats

	if err := conn.GetContext(ctx, &stats.TotalEntries, `SELECT COUNT(*) FROM cached_news`); err != nil {
		return model.CacheStats{}, err
	}

	if err := conn.GetContext(
		ctx,
		&stats.NonEmptyEntries,
		`SELECT COUNT(*) FROM cached_news WHERE article_count > 0`,
	); err != nil {
		return model.CacheStats{}, err
	}

	var rows []dbCachedNews
	if err := conn.SelectContext(
		ctx,
		&rows,
		`SELECT id, category, date, articles, article_count, created_at, expires_at
			FROM cached_news ORDER BY date DESC, category LIMIT 50`,
	); err != nil {
		return model.CacheStats{}, err
	}

	stats.RecentEntries = lo.Map(rows, func(row dbCachedNews, _ int) model.CacheEntry {
		return model.CacheEntry{
			Category:     row.Category,
			Date:         row.Date,
			ArticleCount: row.ArticleCount,
			CreatedAt:    row.CreatedAt,
			ExpiresAt:    row.ExpiresAt,
		}
	})

	return stats, nil
}
