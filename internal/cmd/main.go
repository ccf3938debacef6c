package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"

	"newsbrief/internal/aggregator"
	"newsbrief/internal/api"
	"newsbrief/internal/auth"
	"newsbrief/internal/brief"
	"newsbrief/internal/config"
	"newsbrief/internal/notifier"
	"newsbrief/internal/seeder"
	"newsbrief/internal/source"
	"newsbrief/internal/storage"
)

func main() {
	seedDays := flag.Int("seed-days", 0, "backfill the news archive for the past N days and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Get()

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := storage.New(db)
	if err := store.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	feeds := source.DefaultFeeds()
	categories := source.Categories(feeds)

	// Source order is the dedup tie-break: NewsAPI, then GNews, then RSS.
	sources := []source.Source{
		source.NewNewsAPISource(cfg.NewsAPIKey, cfg.UpstreamTimeout),
		source.NewGNewsSource(cfg.GNewsAPIKey, cfg.UpstreamTimeout),
		source.NewRSSSource(feeds),
	}

	agg := aggregator.New(store, sources, aggregator.Config{
		StalenessHorizon: cfg.StalenessHorizon,
		RecencyWindow:    cfg.RSSRecencyDays,
		FreshTTL:         cfg.FreshTTL,
		EmptyTTL:         cfg.EmptyTTL,
		Backoff:          cfg.FetchBackoff,
	}, logger)

	composer := brief.NewComposer(nil)

	sdr := seeder.New(store, sources, categories, seeder.Config{
		RecencyWindow: cfg.RSSRecencyDays,
		ArchiveTTL:    cfg.EmptyTTL,
		Backoff:       cfg.FetchBackoff,
	}, logger)

	if *seedDays > 0 {
		summary, err := sdr.SeedDays(ctx, *seedDays)
		if err != nil {
			logger.Error("seeding aborted", "error", err)
			os.Exit(1)
		}
		logger.Info("seeding completed",
			"days", summary.DaysSeeded,
			"articles", summary.ArticlesSaved,
			"days_with_data", summary.DaysWithData,
			"days_empty", summary.DaysEmpty,
		)
		return
	}

	handler := api.NewHandler(agg, composer, store, sdr, categories, cfg.FreshTTL, logger)

	e := echo.New()
	e.HideBanner = true
	api.RegisterRoutes(e, handler, auth.Middleware(store))

	if cfg.TelegramBotToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}

		n := notifier.New(agg, composer, botAPI, cfg.TelegramChannelID, cfg.NotifyInterval, categories, logger)

		go func() {
			if err := n.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notifier stopped", "error", err)
				return
			}
			logger.Info("notifier stopped")
		}()
	}

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
