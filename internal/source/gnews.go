package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsbrief/internal/model"
)

const gnewsEndpoint = "https://gnews.io/api/v4/search"

const gnewsMaxResults = 20

// GNewsSource queries gnews.io for a specific calendar date. Like NewsAPI,
// a missing key means the source is disabled rather than broken.
type GNewsSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGNewsSource(apiKey string, timeout time.Duration) *GNewsSource {
	return &GNewsSource{
		apiKey:  apiKey,
		baseURL: gnewsEndpoint,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *GNewsSource) Name() string { return "gnews" }

func (s *GNewsSource) Historical() bool { return true }

func (s *GNewsSource) Fetch(ctx context.Context, category, date string) ([]model.Article, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("q", strings.ToLower(category))
	params.Set("lang", "en")
	params.Set("max", fmt.Sprint(gnewsMaxResults))
	params.Set("from", date+"T00:00:00Z")
	params.Set("to", date+"T23:59:59Z")

	body, err := getJSON(ctx, s.client, s.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("gnews: %w", err)
	}

	var resp struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("gnews: decode response: %w", err)
	}

	articles := make([]model.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" || a.Description == "" {
			continue
		}

		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = "GNews"
		}

		articles = append(articles, model.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      sourceName,
			PublishedAt: a.PublishedAt,
			Category:    category,
		})
	}

	return articles, nil
}
