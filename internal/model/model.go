package model

import (
	"time"
)

// Article is one aggregated news item. PublishedAt is kept as the opaque
// upstream string; the feeds and APIs disagree on timestamp formats and the
// value is display-only.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Category    string `json:"category"`
}

// Brief is the composed, user-facing result for one category and date.
type Brief struct {
	Category            string    `json:"category"`
	Date                string    `json:"date"`
	Articles            []Article `json:"articles"`
	ConsolidatedSummary string    `json:"consolidated_summary"`
	Source              string    `json:"source"`
	Cached              bool      `json:"cached"`
	NoNewsAvailable     bool      `json:"no_news_available"`
}

// CacheEntry is the metadata view of one shared cache row, used for stats.
type CacheEntry struct {
	Category     string    `json:"category"`
	Date         string    `json:"date"`
	ArticleCount int       `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// CacheStats summarizes the shared cache for operators.
type CacheStats struct {
	TotalEntries    int          `json:"total_entries"`
	NonEmptyEntries int          `json:"non_empty_entries"`
	RecentEntries   []CacheEntry `json:"recent_entries"`
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Preferences holds a user's subscription settings. Segments is the list of
// categories the user receives briefs for.
type Preferences struct {
	Segments          []string `json:"segments"`
	ReadingPreference string   `json:"reading_preference"`
	Language          string   `json:"language"`
}

// DefaultPreferences is returned when a user has no stored preference row.
func DefaultPreferences() Preferences {
	return Preferences{
		Segments:          []string{"Technology", "Business"},
		ReadingPreference: "short",
		Language:          "en",
	}
}
