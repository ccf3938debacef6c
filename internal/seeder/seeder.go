// Package seeder backfills the persisted news archive over a date range.
// Seeded rows get the archive TTL regardless of content: a past date's news
// is settled and will not change.
package seeder

import (
	"context"
	"log/slog"
	"time"

	"newsbrief/internal/dedup"
	"newsbrief/internal/model"
	"newsbrief/internal/source"
)

type CacheStore interface {
	PutArticles(ctx context.Context, category, date string, articles []model.Article, ttl time.Duration) error
}

type Config struct {
	// RecencyWindow limits non-historical sources (RSS) to near-present
	// dates, matching the aggregation policy.
	RecencyWindow int
	ArchiveTTL    time.Duration
	// Backoff is slept between upstream calls; seeding walks many
	// (date, category) pairs and must respect quotas.
	Backoff time.Duration
}

type Seeder struct {
	store      CacheStore
	sources    []source.Source
	categories []string
	cfg        Config
	log        *slog.Logger

	now func() time.Time
}

func New(store CacheStore, sources []source.Source, categories []string, cfg Config, log *slog.Logger) *Seeder {
	if log == nil {
		log = slog.Default()
	}
	return &Seeder{
		store:      store,
		sources:    sources,
		categories: categories,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

type Summary struct {
	DaysSeeded    int `json:"days_seeded"`
	ArticlesSaved int `json:"articles_saved"`
	DaysWithData  int `json:"days_with_data"`
	DaysEmpty     int `json:"days_empty"`
}

// SeedDays backfills the past N days, today included.
func (s *Seeder) SeedDays(ctx context.Context, days int) (Summary, error) {
	now := s.now()
	end := now
	start := now.AddDate(0, 0, -(days - 1))
	return s.SeedRange(ctx, start, end)
}

// SeedRange backfills every date from start to end inclusive.
func (s *Seeder) SeedRange(ctx context.Context, start, end time.Time) (Summary, error) {
	var summary Summary

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		date := day.Format("2006-01-02")
		age := int(s.now().Sub(day).Hours() / 24)

		dayTotal := 0
		for _, category := range s.categories {
			saved := s.seedOne(ctx, category, date, age)
			dayTotal += saved
			summary.ArticlesSaved += saved
		}

		summary.DaysSeeded++
		if dayTotal > 0 {
			summary.DaysWithData++
		} else {
			summary.DaysEmpty++
		}

		s.log.Info("seeded day", "date", date, "articles", dayTotal)
	}

	return summary, nil
}

func (s *Seeder) seedOne(ctx context.Context, category, date string, age int) int {
	var all []model.Article

	for _, src := range s.sources {
		if !src.Historical() && age > s.cfg.RecencyWindow {
			continue
		}

		articles, err := src.Fetch(ctx, category, date)
		if err != nil {
			s.log.Error("seed fetch failed", "source", src.Name(), "category", category, "date", date, "error", err)
		} else {
			all = append(all, articles...)
		}

		if s.cfg.Backoff > 0 {
			select {
			case <-ctx.Done():
				return 0
			case <-time.After(s.cfg.Backoff):
			}
		}
	}

	final := dedup.Deduplicate(all)

	if err := s.store.PutArticles(ctx, category, date, final, s.cfg.ArchiveTTL); err != nil {
		s.log.Error("seed write failed", "category", category, "date", date, "error", err)
		return 0
	}

	return len(final)
}
