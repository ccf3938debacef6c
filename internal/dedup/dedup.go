// Package dedup merges fetcher outputs into a single bounded list.
package dedup

import (
	"strings"

	"newsbrief/internal/model"
)

const (
	// TitlePrefixLen is the number of runes of the lowercased title used as
	// the identity key. Two articles matching on this prefix are the same
	// story regardless of casing or trailing differences.
	TitlePrefixLen = 50

	// MaxArticles bounds the list fed into the shared cache.
	MaxArticles = 15
)

// Deduplicate keeps the first occurrence of each title key, preserving input
// order, and caps the result at MaxArticles. Input order is the fetcher-call
// order, so earlier fetchers win collisions. Articles whose normalized title
// is blank are dropped. The operation is idempotent.
func Deduplicate(articles []model.Article) []model.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]model.Article, 0, len(articles))

	for _, a := range articles {
		key := titleKey(a.Title)
		if strings.TrimSpace(key) == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, a)

		if len(unique) == MaxArticles {
			break
		}
	}

	return unique
}

func titleKey(title string) string {
	runes := []rune(strings.ToLower(title))
	if len(runes) > TitlePrefixLen {
		runes = runes[:TitlePrefixLen]
	}
	return string(runes)
}
