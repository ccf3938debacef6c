// Package api is the HTTP surface. Handlers are thin: the aggregation policy
// and the composer hold all decision logic.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"newsbrief/internal/aggregator"
	"newsbrief/internal/auth"
	"newsbrief/internal/model"
	"newsbrief/internal/seeder"
)

// Aggregator is the per-category entry point into the pipeline.
type Aggregator interface {
	Aggregate(ctx context.Context, category, rawDate string, opts aggregator.Options) aggregator.Result
}

type Composer interface {
	Compose(articles []model.Article, category, date, sourceTag string) model.Brief
}

// Store is the slice of the cache store the handlers touch directly: the
// personalized layer, preferences, and operator queries. Shared cache rows
// are reached only through the Aggregator.
type Store interface {
	GetUserBrief(ctx context.Context, userID int64, category, date string) (*model.Brief, bool, error)
	PutUserBrief(ctx context.Context, userID int64, category, date string, brief model.Brief, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID int64) (int64, error)
	ClearShared(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (model.CacheStats, error)
	GetPreferences(ctx context.Context, userID int64) (model.Preferences, bool, error)
	UpdatePreferences(ctx context.Context, userID int64, prefs model.Preferences) error
	Ping(ctx context.Context) error
}

type Seeder interface {
	SeedDays(ctx context.Context, days int) (seeder.Summary, error)
}

type Handler struct {
	agg        Aggregator
	composer   Composer
	store      Store
	seeder     Seeder
	categories []string
	briefTTL   time.Duration
	log        *slog.Logger

	now func() time.Time
}

func NewHandler(agg Aggregator, composer Composer, store Store, sdr Seeder, categories []string, briefTTL time.Duration, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		agg:        agg,
		composer:   composer,
		store:      store,
		seeder:     sdr,
		categories: categories,
		briefTTL:   briefTTL,
		log:        log,
		now:        time.Now,
	}
}

type newsBriefRequest struct {
	Category     string `json:"category"`
	Date         string `json:"date"`
	ForceRefresh bool   `json:"force_refresh"`
}

type newsBriefResponse struct {
	User        string        `json:"user"`
	Date        string        `json:"date"`
	Briefs      []model.Brief `json:"briefs"`
	GeneratedAt string        `json:"generated_at"`
}

func (h *Handler) newsBrief(c echo.Context) error {
	user := auth.CurrentUser(c)
	ctx := c.Request().Context()

	var req newsBriefRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	categories, err := h.resolveCategories(ctx, user.ID, req.Category)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	targetDate := aggregator.NormalizeDate(req.Date, h.now())

	briefs := make([]model.Brief, 0, len(categories))
	for _, category := range categories {
		briefs = append(briefs, h.briefFor(ctx, user.ID, category, targetDate, req.ForceRefresh))
	}

	return c.JSON(http.StatusOK, newsBriefResponse{
		User:        user.Name,
		Date:        targetDate,
		Briefs:      briefs,
		GeneratedAt: h.now().Format(time.RFC3339),
	})
}

// briefFor serves one category, preferring the personalized layer, then the
// shared pipeline. The personalized row is written back best-effort; a failed
// cache write never fails the request.
func (h *Handler) briefFor(ctx context.Context, userID int64, category, date string, forceRefresh bool) model.Brief {
	if !forceRefresh {
		cached, found, err := h.store.GetUserBrief(ctx, userID, category, date)
		if err != nil {
			h.log.Error("user brief read failed, treating as miss", "user_id", userID, "category", category, "date", date, "error", err)
		} else if found {
			cached.Cached = true
			return *cached
		}
	}

	result := h.agg.Aggregate(ctx, category, date, aggregator.Options{
		UseCache:     !forceRefresh,
		ForceRefresh: forceRefresh,
	})

	composed := h.composer.Compose(result.Articles, category, result.Date, result.Source)
	composed.Cached = result.Source == aggregator.SourceDatabase

	if err := h.store.PutUserBrief(ctx, userID, category, result.Date, composed, h.briefTTL); err != nil {
		h.log.Error("user brief write failed", "user_id", userID, "category", category, "date", date, "error", err)
	}

	return composed
}

func (h *Handler) resolveCategories(ctx context.Context, userID int64, override string) ([]string, error) {
	if override != "" {
		if !slices.Contains(h.categories, override) {
			return nil, fmt.Errorf("unknown category: %s", override)
		}
		return []string{override}, nil
	}

	prefs, found, err := h.store.GetPreferences(ctx, userID)
	if err != nil {
		h.log.Error("preferences read failed, using defaults", "user_id", userID, "error", err)
		found = false
	}
	if !found {
		prefs = model.DefaultPreferences()
	}

	return prefs.Segments, nil
}

func (h *Handler) me(c echo.Context) error {
	user := auth.CurrentUser(c)

	prefs, found, err := h.store.GetPreferences(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "preferences lookup failed"})
	}
	if !found {
		prefs = model.DefaultPreferences()
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":        user,
		"preferences": prefs,
	})
}

func (h *Handler) updatePreferences(c echo.Context) error {
	user := auth.CurrentUser(c)

	var prefs model.Preferences
	if err := c.Bind(&prefs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if len(prefs.Segments) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "segments must not be empty"})
	}
	for _, segment := range prefs.Segments {
		if !slices.Contains(h.categories, segment) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown category: " + segment})
		}
	}
	if prefs.ReadingPreference == "" {
		prefs.ReadingPreference = "short"
	}
	if prefs.Language == "" {
		prefs.Language = "en"
	}

	if err := h.store.UpdatePreferences(c.Request().Context(), user.ID, prefs); err != nil {
		h.log.Error("preferences update failed", "user_id", user.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "preferences update failed"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Preferences updated successfully",
		"preferences": prefs,
	})
}

func (h *Handler) listCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"categories": h.categories})
}

func (h *Handler) health(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "database unreachable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
	})
}

func (h *Handler) cacheStats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		h.log.Error("cache stats failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "cache stats failed"})
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) clearCache(c echo.Context) error {
	user := auth.CurrentUser(c)
	ctx := c.Request().Context()

	cleared, err := h.store.InvalidateUser(ctx, user.ID)
	if err != nil {
		h.log.Error("user cache clear failed", "user_id", user.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "cache clear failed"})
	}

	resp := map[string]any{"user_entries_cleared": cleared}

	if c.QueryParam("all") == "true" {
		shared, err := h.store.ClearShared(ctx)
		if err != nil {
			h.log.Error("shared cache clear failed", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "cache clear failed"})
		}
		resp["shared_entries_cleared"] = shared
	}

	return c.JSON(http.StatusOK, resp)
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

const maxSeedDays = 30

func (h *Handler) seedNews(c echo.Context) error {
	days := 3
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil || parsed > maxSeedDays {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 30"})
		}
		days = parsed
	}

	summary, err := h.seeder.SeedDays(c.Request().Context(), days)
	if err != nil {
		h.log.Error("seeding failed", "days", days, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "seeding failed"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "completed",
		"summary": summary,
	})
}
