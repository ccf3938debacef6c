// Package aggregator decides where an article list comes from: the persisted
// store, a live fetch, or nowhere. It is the only writer of shared cache rows.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"newsbrief/internal/dedup"
	"newsbrief/internal/model"
	"newsbrief/internal/source"
)

// Source tags on a Result. SourceDatabase covers both pre-seeded historical
// rows and earlier live fetches; they live in the same table and a reader
// cannot tell them apart.
const (
	SourceDatabase = "database"
	SourceRSS      = "rss"
	SourceNone     = "none"
)

// CacheStore is the persistence contract the policy depends on. The bool on
// Get distinguishes a stored empty list (hit) from a missing or expired row
// (miss).
type CacheStore interface {
	GetArticles(ctx context.Context, category, date string) ([]model.Article, bool, error)
	PutArticles(ctx context.Context, category, date string, articles []model.Article, ttl time.Duration) error
}

type Config struct {
	// StalenessHorizon is the age in days past which no fetcher is invoked.
	StalenessHorizon int
	// RecencyWindow is the age in days up to which non-historical sources
	// (RSS) are still worth calling.
	RecencyWindow int
	// FreshTTL applies to non-empty fetch results; EmptyTTL to confirmed
	// empty or too-old verdicts, which will not change.
	FreshTTL time.Duration
	EmptyTTL time.Duration
	// Backoff is slept between consecutive upstream calls.
	Backoff time.Duration
}

type Aggregator struct {
	store   CacheStore
	sources []source.Source
	cfg     Config
	log     *slog.Logger

	now func() time.Time
}

// New builds the policy. Source order is the dedup tie-break order: earlier
// sources win title collisions.
func New(store CacheStore, sources []source.Source, cfg Config, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		store:   store,
		sources: sources,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

type Options struct {
	// UseCache false skips the cache read; the row is still written back.
	UseCache bool
	// ForceRefresh implies UseCache false and is tracked separately only for
	// logging.
	ForceRefresh bool
}

type Result struct {
	// Date is the normalized date actually used as the cache key.
	Date     string
	Articles []model.Article
	Source   string
	TooOld   bool
}

// Aggregate resolves the article list for one category and date. It never
// returns an error: every internal failure degrades per its taxonomy (fetch
// failure → empty for that source, cache read failure → miss, cache write
// failure → logged and swallowed).
func (a *Aggregator) Aggregate(ctx context.Context, category, rawDate string, opts Options) Result {
	if opts.ForceRefresh {
		opts.UseCache = false
	}

	now := a.now()
	date, parsed := normalizeDate(rawDate, now)
	if !parsed {
		a.log.Warn("date parse fallback", "category", category, "requested", rawDate, "using", date)
	}

	age := ageInDays(date, now)

	if opts.UseCache {
		articles, found, err := a.store.GetArticles(ctx, category, date)
		if err != nil {
			a.log.Error("cache read failed, treating as miss", "category", category, "date", date, "error", err)
		} else if found {
			return Result{Date: date, Articles: articles, Source: SourceDatabase}
		}
	}

	// Past the horizon no provider can serve the date; record the verdict so
	// it is never re-asked, without clobbering seeded rows.
	if age > a.cfg.StalenessHorizon {
		a.confirmEmpty(ctx, category, date)
		return Result{Date: date, Articles: []model.Article{}, Source: SourceNone, TooOld: true}
	}

	articles := a.fetchAll(ctx, category, date, age)
	articles = dedup.Deduplicate(articles)

	ttl := a.cfg.FreshTTL
	if len(articles) == 0 {
		ttl = a.cfg.EmptyTTL
	}
	if err := a.store.PutArticles(ctx, category, date, articles, ttl); err != nil {
		a.log.Error("cache write failed", "category", category, "date", date, "error", err)
	}

	if len(articles) == 0 {
		return Result{Date: date, Articles: []model.Article{}, Source: SourceNone}
	}

	return Result{Date: date, Articles: articles, Source: SourceRSS}
}

// fetchAll runs the sources sequentially in configured order, with a backoff
// between calls to respect upstream rate limits.
func (a *Aggregator) fetchAll(ctx context.Context, category, date string, age int) []model.Article {
	var all []model.Article
	called := false

	for _, src := range a.sources {
		if !src.Historical() && age > a.cfg.RecencyWindow {
			a.log.Debug("skipping non-historical source", "source", src.Name(), "date", date, "age_days", age)
			continue
		}

		if called && a.cfg.Backoff > 0 {
			select {
			case <-ctx.Done():
				return all
			case <-time.After(a.cfg.Backoff):
			}
		}
		called = true

		articles, err := src.Fetch(ctx, category, date)
		if err != nil {
			a.log.Error("fetch failed", "source", src.Name(), "category", category, "date", date, "error", err)
			continue
		}

		a.log.Info("fetched", "source", src.Name(), "category", category, "date", date, "count", len(articles))
		all = append(all, articles...)
	}

	return all
}

// confirmEmpty writes an empty row with the long TTL unless a row already
// exists for the key.
func (a *Aggregator) confirmEmpty(ctx context.Context, category, date string) {
	_, found, err := a.store.GetArticles(ctx, category, date)
	if err != nil {
		a.log.Error("cache read failed", "category", category, "date", date, "error", err)
	}
	if found {
		return
	}

	if err := a.store.PutArticles(ctx, category, date, []model.Article{}, a.cfg.EmptyTTL); err != nil {
		a.log.Error("cache write failed", "category", category, "date", date, "error", err)
	}
}
