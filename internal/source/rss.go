package source

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	readability "github.com/go-shiori/go-readability"
	"github.com/samber/lo"

	"newsbrief/internal/model"
)

// rssItemCap limits raw entries taken per feed before deduplication.
const rssItemCap = 10

// RSSSource pulls the latest headlines from per-category RSS feeds. RSS has
// no historical query capability, so the requested date is ignored and
// Historical reports false.
type RSSSource struct {
	feeds map[string][]string
}

func NewRSSSource(feeds map[string][]string) *RSSSource {
	if feeds == nil {
		feeds = DefaultFeeds()
	}
	return &RSSSource{feeds: feeds}
}

// DefaultFeeds maps each supported category to its BBC feed.
func DefaultFeeds() map[string][]string {
	return map[string][]string{
		"Technology":    {"https://feeds.bbci.co.uk/news/technology/rss.xml"},
		"Business":      {"https://feeds.bbci.co.uk/news/business/rss.xml"},
		"Sports":        {"https://feeds.bbci.co.uk/sport/rss.xml"},
		"Health":        {"https://feeds.bbci.co.uk/news/health/rss.xml"},
		"Entertainment": {"https://feeds.bbci.co.uk/news/entertainment_and_arts/rss.xml"},
		"Politics":      {"https://feeds.bbci.co.uk/news/politics/rss.xml"},
	}
}

// Categories returns the supported category names in stable order.
func Categories(feeds map[string][]string) []string {
	names := lo.Keys(feeds)
	sort.Strings(names)
	return names
}

func (s *RSSSource) Name() string { return "bbc-rss" }

func (s *RSSSource) Historical() bool { return false }

func (s *RSSSource) Fetch(ctx context.Context, category, _ string) ([]model.Article, error) {
	var (
		articles []model.Article
		firstErr error
	)

	for _, url := range s.feeds[category] {
		feed, err := s.loadFeed(ctx, url)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		items := feed.Items
		if len(items) > rssItemCap {
			items = items[:rssItemCap]
		}

		sourceName := feed.Title
		if sourceName == "" {
			sourceName = "BBC News"
		}

		articles = append(articles, lo.Map(items, func(item *rss.Item, _ int) model.Article {
			var publishedAt string
			if item.DateValid {
				publishedAt = item.Date.Format(time.RFC3339)
			}

			return model.Article{
				Title:       item.Title,
				Description: extractText(item.Summary),
				URL:         item.Link,
				Source:      sourceName,
				PublishedAt: publishedAt,
				Category:    category,
			}
		})...)
	}

	if len(articles) == 0 && firstErr != nil {
		return nil, firstErr
	}

	return articles, nil
}

func (s *RSSSource) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	feedChan := make(chan *rss.Feed, 1)
	errorChan := make(chan error, 1)

	go func() {
		feed, err := rss.Fetch(url)
		if err != nil {
			errorChan <- err
			return
		}
		feedChan <- feed
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errorChan:
		return nil, err
	case feed := <-feedChan:
		return feed, nil
	}
}

// extractText strips HTML markup from feed summaries, which BBC ships as
// small HTML fragments. Readability handles full documents; fragments too
// small for it fall back to plain tag removal.
func extractText(summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" || !strings.Contains(summary, "<") {
		return summary
	}

	doc, err := readability.FromReader(strings.NewReader(summary), nil)
	if err == nil && strings.TrimSpace(doc.TextContent) != "" {
		return strings.Join(strings.Fields(doc.TextContent), " ")
	}

	return stripTags(summary)
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
