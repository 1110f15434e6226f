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

// SendRandomQuotesTask forwards every quote of the random page to one chat.
// It never touches the cursor.
type SendRandomQuotesTask struct {
	Task
	URL          string
	fetcher      Fetcher
	parser       *quote.Parser
	deliveryRepo database.DeliveryRepository
	sender       Sender
	messages     telegram.Messages
}

func NewSendRandomQuotesTask(url string, chatID int64, fetcher Fetcher, parser *quote.Parser,
	deliveryRepo database.DeliveryRepository, sender Sender, messages telegram.Messages) *SendRandomQuotesTask {
	return &SendRandomQuotesTask{
		Task:         NewTask(TaskTypeSendRandomQuotes, chatID),
		URL:          url,
		fetcher:      fetcher,
		parser:       parser,
		deliveryRepo: deliveryRepo,
		sender:       sender,
		messages:     messages,
	}
}

func (t *SendRandomQuotesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetcher.Run(ctx, t.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch random quotes: %w", err)
	}

	batch, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse random quotes: %w", err)
	}

	for _, q := range batch {
		if err := t.sender.SendText(t.ChatID, t.messages.FormatQuote(q)); err != nil {
			return fmt.Errorf("failed to deliver quote %d: %w", q.Number, err)
		}
		telemetry.RecordDelivered(string(database.DeliverySourceRandom))

		err := t.deliveryRepo.RecordDelivery(database.Delivery{
			QuoteNumber: q.Number,
			Text:        q.Text,
			Source:      database.DeliverySourceRandom,
			ChatID:      t.ChatID,
			DeliveredAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Warn("Failed to record delivery", "quote", q.Number, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", "SendRandomQuotes",
		"chat_id", t.ChatID,
		"duration", t.GetDuration(),
		"sent", len(batch))

	return nil
}
