// Package brief turns an aggregated article list into the user-facing brief.
package brief

import (
	"fmt"
	"strings"

	"newsbrief/internal/aggregator"
	"newsbrief/internal/model"
)

const (
	// ArticleCap bounds the articles carried in a composed brief; the shared
	// cache keeps more (dedup.MaxArticles) than a brief shows.
	ArticleCap = 10
	// HighlightCap is the number of headline lines in the summary text.
	HighlightCap = 5
	// SourceNameCap bounds the trailing source attribution list.
	SourceNameCap = 5
)

// Summarizer produces a short per-article summary. Implementations may call
// out to an external service; Extractive is the local fallback.
type Summarizer interface {
	Summarize(text string) (string, error)
}

type Composer struct {
	summarizer Summarizer
}

func NewComposer(summarizer Summarizer) *Composer {
	if summarizer == nil {
		summarizer = Extractive{}
	}
	return &Composer{summarizer: summarizer}
}

// Compose builds the brief for one category and date. Article order is
// preserved from the deduplicated list: most relevant first, per source
// priority, not chronological.
func (c *Composer) Compose(articles []model.Article, category, date, sourceTag string) model.Brief {
	capped := articles
	if len(capped) > ArticleCap {
		capped = capped[:ArticleCap]
	}

	summarized := make([]model.Article, len(capped))
	for i, a := range capped {
		summary, err := c.summarizer.Summarize(a.Description)
		if err != nil || strings.TrimSpace(summary) == "" {
			summary, _ = Extractive{}.Summarize(a.Description)
		}
		a.Description = summary
		summarized[i] = a
	}

	return model.Brief{
		Category:            category,
		Date:                date,
		Articles:            summarized,
		ConsolidatedSummary: consolidatedSummary(capped, category, date, sourceTag),
		Source:              sourceTag,
		NoNewsAvailable:     len(capped) == 0,
	}
}

func consolidatedSummary(articles []model.Article, category, date, sourceTag string) string {
	if len(articles) == 0 {
		if sourceTag == aggregator.SourceNone {
			return fmt.Sprintf(
				"No news available for %s on %s.\n\n"+
					"This date is outside both the news archive and the live feed window. "+
					"Pick a more recent date, or seed the archive for this range.",
				category, date)
		}
		return fmt.Sprintf("No news available for %s at this time.", category)
	}

	highlights := make([]string, 0, HighlightCap)
	for _, a := range articles {
		highlights = append(highlights, "• "+a.Title)
		if len(highlights) == HighlightCap {
			break
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Highlights:\n\n", category))
	b.WriteString(strings.Join(highlights, "\n\n"))

	if names := sourceNames(articles); len(names) > 0 {
		b.WriteString("\n\nSources: " + strings.Join(names, ", "))
	}

	switch sourceTag {
	case aggregator.SourceDatabase:
		b.WriteString("\n\nSource: news archive")
	case aggregator.SourceRSS:
		b.WriteString("\n\nSource: live RSS feeds")
	}

	return b.String()
}

// sourceNames lists the distinct upstream sources contributing articles, in
// first-appearance order, capped at SourceNameCap.
func sourceNames(articles []model.Article) []string {
	seen := make(map[string]struct{}, len(articles))
	names := make([]string, 0, SourceNameCap)

	for _, a := range articles {
		if a.Source == "" {
			continue
		}
		if _, ok := seen[a.Source]; ok {
			continue
		}
		seen[a.Source] = struct{}{}
		names = append(names, a.Source)

		if len(names) == SourceNameCap {
			break
		}
	}

	return names
}
