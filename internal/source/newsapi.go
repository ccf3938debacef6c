package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsbrief/internal/model"
)

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// newsAPIPageSize caps raw entries per call; a quota control, not a
// correctness requirement.
const newsAPIPageSize = 20

// NewsAPISource queries newsapi.org for a specific calendar date. Without an
// API key it silently returns nothing, so a missing credential never degrades
// the rest of the pipeline.
type NewsAPISource struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsAPISource(apiKey string, timeout time.Duration) *NewsAPISource {
	return &NewsAPISource{
		apiKey:  apiKey,
		baseURL: newsAPIEndpoint,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *NewsAPISource) Name() string { return "newsapi" }

func (s *NewsAPISource) Historical() bool { return true }

func (s *NewsAPISource) Fetch(ctx context.Context, category, date string) ([]model.Article, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("q", strings.ToLower(category))
	params.Set("from", date)
	params.Set("to", date)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", fmt.Sprint(newsAPIPageSize))

	body, err := getJSON(ctx, s.client, s.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
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
		return nil, fmt.Errorf("newsapi: decode response: %w", err)
	}

	articles := make([]model.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" || a.Description == "" {
			continue
		}

		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = "NewsAPI"
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

func getJSON(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Upstream payloads are small; the limit is a guard against a
	// misbehaving provider.
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}
