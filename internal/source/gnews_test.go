package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gnewsPayload = `{
	"totalArticles": 1,
	"articles": [
		{
			"title": "Vaccine trial clears final phase",
			"description": "Regulators expect approval within weeks.",
			"url": "https://example.com/vaccine",
			"publishedAt": "2026-02-05T10:00:00Z",
			"source": {"name": "Example Health"}
		}
	]
}`

func TestGNewsFetch(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"apikey": r.URL.Query().Get("apikey"),
			"q":      r.URL.Query().Get("q"),
			"from":   r.URL.Query().Get("from"),
			"to":     r.URL.Query().Get("to"),
		}
		w.Write([]byte(gnewsPayload))
	}))
	defer server.Close()

	src := NewGNewsSource("gnews-key", time.Second)
	src.baseURL = server.URL

	articles, err := src.Fetch(context.Background(), "Health", "2026-02-05")

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Vaccine trial clears final phase", articles[0].Title)
	assert.Equal(t, "Example Health", articles[0].Source)
	assert.Equal(t, "Health", articles[0].Category)

	assert.Equal(t, "gnews-key", gotQuery["apikey"])
	assert.Equal(t, "health", gotQuery["q"])
	assert.Equal(t, "2026-02-05T00:00:00Z", gotQuery["from"])
	assert.Equal(t, "2026-02-05T23:59:59Z", gotQuery["to"])
}

func TestGNewsMissingKeyReturnsEmptyWithoutCalling(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	src := NewGNewsSource("", time.Second)
	src.baseURL = server.URL

	articles, err := src.Fetch(context.Background(), "Health", "2026-02-05")

	assert.NoError(t, err)
	assert.Empty(t, articles)
	assert.False(t, called)
}

func TestGNewsNonOKStatusIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	src := NewGNewsSource("gnews-key", time.Second)
	src.baseURL = server.URL

	_, err := src.Fetch(context.Background(), "Health", "2026-02-05")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
