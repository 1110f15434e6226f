package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/quote-relay/app/database"
	"github.com/lysyi3m/quote-relay/app/quote"
	"github.com/lysyi3m/quote-relay/app/telegram"
	"github.com/lysyi3m/quote-relay/app/telemetry"
)

type PollQuotesTask struct {
	Task
	URL          string
	fetcher      Fetcher
	parser       *quote.Parser
	filter       *quote.NoveltyFilter
	stateRepo    database.StateRepository
	deliveryRepo database.DeliveryRepository
	sender       Sender
	messages     telegram.Messages
}

func NewPollQuotesTask(url string, chatID int64, fetcher Fetcher, parser *quote.Parser, filter *quote.NoveltyFilter,
	stateRepo database.StateRepository, deliveryRepo database.DeliveryRepository, sender Sender, messages telegram.Messages) *PollQuotesTask {
	return &PollQuotesTask{
		Task:         NewTask(TaskTypePollQuotes, chatID),
		URL:          url,
		fetcher:      fetcher,
		parser:       parser,
		filter:       filter,
		stateRepo:    stateRepo,
		deliveryRepo: deliveryRepo,
		sender:       sender,
		messages:     messages,
	}
}

func (t *PollQuotesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetcher.Run(ctx, t.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch quotes: %w", err)
	}

	batch, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse quotes: %w", err)
	}

	if len(batch) == 0 {
		slog.Info("No new quotes", "url", t.URL)
		return nil
	}

	cursor, err := t.stateRepo.GetCursor()
	if err != nil {
		return fmt.Errorf("failed to load cursor: %w", err)
	}

	fresh, next, err := t.filter.Run(batch, cursor)
	if err != nil {
		return fmt.Errorf("failed to filter quotes: %w", err)
	}

	// The cursor moves before delivery: a failed send is not retried on the next poll.
	if next != cursor {
		if err := t.stateRepo.SetCursor(next); err != nil {
			return fmt.Errorf("failed to store cursor: %w", err)
		}
	}
	telemetry.SetCursor(next)

	if len(fresh) == 0 {
		slog.Info("No new quotes", "url", t.URL, "cursor", next)
		return nil
	}

	for _, q := range fresh {
		if err := t.sender.SendText(t.ChatID, t.messages.FormatQuote(q)); err != nil {
			return fmt.Errorf("failed to deliver quote %d: %w", q.Number, err)
		}
		telemetry.RecordDelivered(string(database.DeliverySourcePoll))

		err := t.deliveryRepo.RecordDelivery(database.Delivery{
			QuoteNumber: q.Number,
			Text:        q.Text,
			Source:      database.DeliverySourcePoll,
			ChatID:      t.ChatID,
			DeliveredAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Warn("Failed to record delivery", "quote", q.Number, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", "PollQuotes",
		"duration", t.GetDuration(),
		"total", len(batch),
		"new", len(fresh),
		"previous_cursor", cursor,
		"cursor", next)

	return nil
}
