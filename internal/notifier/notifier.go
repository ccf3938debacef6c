// Package notifier posts composed briefs to a Telegram channel. It is an
// optional delivery surface; the service runs without it when no bot token
// is configured.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsbrief/internal/aggregator"
	"newsbrief/internal/model"
)

type Aggregator interface {
	Aggregate(ctx context.Context, category, rawDate string, opts aggregator.Options) aggregator.Result
}

type Composer interface {
	Compose(articles []model.Article, category, date, sourceTag string) model.Brief
}

type Notifier struct {
	agg        Aggregator
	composer   Composer
	bot        *tgbotapi.BotAPI
	channelID  int64
	interval   time.Duration
	categories []string
	log        *slog.Logger

	now func() time.Time
}

func New(agg Aggregator, composer Composer, bot *tgbotapi.BotAPI, channelID int64, interval time.Duration, categories []string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		agg:        agg,
		composer:   composer,
		bot:        bot,
		channelID:  channelID,
		interval:   interval,
		categories: categories,
		log:        log,
		now:        time.Now,
	}
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.SendDailyBrief(ctx); err != nil {
				return err
			}
		}
	}
}

// SendDailyBrief posts today's brief for each configured category. Categories
// with no news are skipped rather than posted as empty messages.
func (n *Notifier) SendDailyBrief(ctx context.Context) error {
	date := n.now().Format("2006-01-02")

	for _, category := range n.categories {
		result := n.agg.Aggregate(ctx, category, date, aggregator.Options{UseCache: true})

		composed := n.composer.Compose(result.Articles, category, result.Date, result.Source)
		if composed.NoNewsAvailable {
			n.log.Info("no news to post", "category", category, "date", date)
			continue
		}

		if err := n.sendBrief(composed); err != nil {
			return fmt.Errorf("send brief for %s: %w", category, err)
		}
	}

	return nil
}

func (n *Notifier) sendBrief(brief model.Brief) error {
	const msgFormat = "*%s*\n\n%s"

	msg := tgbotapi.NewMessage(n.channelID, fmt.Sprintf(
		msgFormat,
		EscapeForMarkdown(fmt.Sprintf("%s, %s", brief.Category, brief.Date)),
		EscapeForMarkdown(brief.ConsolidatedSummary),
	))
	msg.ParseMode = "MarkdownV2"

	_, err := n.bot.Send(msg)
	return err
}

var replacer = strings.NewReplacer(
	"-", "\\-",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}
