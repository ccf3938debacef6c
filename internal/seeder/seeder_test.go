package seeder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbrief/internal/model"
	"newsbrief/internal/source"
)

type putCall struct {
	category string
	date     string
	articles []model.Article
	ttl      time.Duration
}

type fakeStore struct {
	puts   []putCall
	putErr error
}

func (s *fakeStore) PutArticles(_ context.Context, category, date string, articles []model.Article, ttl time.Duration) error {
	s.puts = append(s.puts, putCall{category: category, date: date, articles: articles, ttl: ttl})
	return s.putErr
}

type fakeSource struct {
	name       string
	historical bool
	articles   []model.Article
	err        error
	dates      []string
}

func (s *fakeSource) Name() string     { return s.name }
func (s *fakeSource) Historical() bool { return s.historical }

func (s *fakeSource) Fetch(_ context.Context, _, date string) ([]model.Article, error) {
	s.dates = append(s.dates, date)
	return s.articles, s.err
}

var testNow = time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

const archiveTTL = 365 * 24 * time.Hour

func newTestSeeder(store CacheStore, categories []string, sources ...source.Source) *Seeder {
	s := New(store, sources, categories, Config{
		RecencyWindow: 1,
		ArchiveTTL:    archiveTTL,
	}, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func TestSeedDaysWalksDatesAndCategories(t *testing.T) {
	store := &fakeStore{}
	src := &fakeSource{name: "api", historical: true, articles: []model.Article{{Title: "headline"}}}

	summary, err := newTestSeeder(store, []string{"Technology", "Business"}, src).SeedDays(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.DaysSeeded)
	assert.Equal(t, 3, summary.DaysWithData)
	assert.Equal(t, 0, summary.DaysEmpty)
	assert.Equal(t, 6, summary.ArticlesSaved)

	require.Len(t, store.puts, 6)
	assert.Equal(t, "2026-02-03", store.puts[0].date, "range starts days-1 back")
	assert.Equal(t, "2026-02-05", store.puts[5].date)
}

func TestSeedUsesArchiveTTLEvenForFreshData(t *testing.T) {
	store := &fakeStore{}
	src := &fakeSource{name: "api", historical: true, articles: []model.Article{{Title: "headline"}}}

	_, err := newTestSeeder(store, []string{"Technology"}, src).SeedDays(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, store.puts, 1)
	assert.Equal(t, archiveTTL, store.puts[0].ttl)
}

func TestSeedWritesEmptyVerdicts(t *testing.T) {
	store := &fakeStore{}
	src := &fakeSource{name: "api", historical: true}

	summary, err := newTestSeeder(store, []string{"Technology"}, src).SeedDays(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.DaysEmpty)
	require.Len(t, store.puts, 2)
	assert.Empty(t, store.puts[0].articles)
}

func TestSeedSkipsNonHistoricalSourcesForOldDates(t *testing.T) {
	store := &fakeStore{}
	rss := &fakeSource{name: "rss", historical: false, articles: []model.Article{{Title: "rss headline"}}}

	_, err := newTestSeeder(store, []string{"Technology"}, rss).SeedDays(context.Background(), 5)

	require.NoError(t, err)
	// 5 days seeded, but RSS only runs for dates within the recency window.
	assert.Equal(t, []string{"2026-02-04", "2026-02-05"}, rss.dates)
}

func TestSeedContinuesPastFetchFailures(t *testing.T) {
	store := &fakeStore{}
	broken := &fakeSource{name: "newsapi", historical: true, err: errors.New("quota exceeded")}
	working := &fakeSource{name: "gnews", historical: true, articles: []model.Article{{Title: "headline"}}}

	summary, err := newTestSeeder(store, []string{"Technology"}, broken, working).SeedDays(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ArticlesSaved)
}

func TestSeedDeduplicatesAcrossSources(t *testing.T) {
	store := &fakeStore{}
	first := &fakeSource{name: "newsapi", historical: true, articles: []model.Article{
		{Title: "Shared headline about the economy", Source: "NewsAPI"},
	}}
	second := &fakeSource{name: "gnews", historical: true, articles: []model.Article{
		{Title: "SHARED HEADLINE ABOUT THE ECONOMY", Source: "GNews"},
	}}

	_, err := newTestSeeder(store, []string{"Business"}, first, second).SeedDays(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, store.puts, 1)
	require.Len(t, store.puts[0].articles, 1)
	assert.Equal(t, "NewsAPI", store.puts[0].articles[0].Source)
}

func TestSeedStopsOnCancelledContext(t *testing.T) {
	store := &fakeStore{}
	src := &fakeSource{name: "api", historical: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSeeder(store, []string{"Technology"}, src).SeedDays(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
}
