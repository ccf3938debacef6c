// Package source contains the upstream article fetchers. Each fetcher is
// independent: a failure in one must never block the others, so callers treat
// a returned error as an empty result after logging it.
package source

import (
	"context"

	"newsbrief/internal/model"
)

// Source fetches raw candidate articles for one category. The date is the
// normalized YYYY-MM-DD target; sources that cannot query history ignore it.
type Source interface {
	Name() string

	// Historical reports whether the source accepts a date parameter. The
	// aggregation policy skips non-historical sources for dates outside the
	// recency window.
	Historical() bool

	Fetch(ctx context.Context, category, date string) ([]model.Article, error)
}
