package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/quote-relay/app/database"
)

// API is the part of *tgbotapi.BotAPI the bot relies on.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ API = (*tgbotapi.BotAPI)(nil)

// RandomRequester queues delivery of a random quote page to a chat.
type RandomRequester interface {
	RequestRandomQuotes(chatID int64) error
}

type Bot struct {
	api          API
	messages     Messages
	stateRepo    database.StateRepository
	deliveryRepo database.DeliveryRepository
	random       RandomRequester
}

func NewBot(api API, messages Messages, stateRepo database.StateRepository, deliveryRepo database.DeliveryRepository) *Bot {
	return &Bot{
		api:          api,
		messages:     messages,
		stateRepo:    stateRepo,
		deliveryRepo: deliveryRepo,
	}
}

func (b *Bot) SetRandomRequester(random RandomRequester) {
	b.random = random
}

func (b *Bot) Messages() Messages {
	return b.messages
}

func (b *Bot) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	slog.Debug("Message sent", "chat_id", chatID, "length", len(text))
	return nil
}

func (b *Bot) RegisterCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "rand", Description: "Случайные цитаты"},
		tgbotapi.BotCommand{Command: "status", Description: "Последняя доставленная цитата"},
		tgbotapi.BotCommand{Command: "help", Description: "Справка"},
	)

	if _, err := b.api.Request(commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

// Run receives updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.RegisterCommands(); err != nil {
		slog.Warn("Command registration failed", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	slog.Info("Telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(update)
		}
	}
}

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}

	chatID := msg.Chat.ID
	command := msg.Command()

	slog.Debug("Command received", "command", command, "chat_id", chatID)

	var reply string
	switch command {
	case "start":
		reply = b.messages.Welcome
	case "help":
		reply = b.messages.Help
	case "rand":
		reply = b.handleRandom(chatID)
	case "status":
		reply = b.handleStatus()
	default:
		reply = b.messages.Unknown
	}

	if reply == "" {
		return
	}

	if err := b.SendText(chatID, reply); err != nil {
		slog.Error("Failed to reply to command", "command", command, "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleRandom(chatID int64) string {
	if b.random == nil {
		return b.messages.RandomFailed
	}

	if err := b.random.RequestRandomQuotes(chatID); err != nil {
		slog.Error("Failed to request random quotes", "chat_id", chatID, "error", err)
		return b.messages.RandomFailed
	}

	// Quotes arrive as separate messages.
	return ""
}

func (b *Bot) handleStatus() string {
	cursor, err := b.stateRepo.GetCursor()
	if err != nil {
		slog.Error("Database error", "operation", "get_cursor", "error", err)
		return b.messages.FormatError(err)
	}

	stats, err := b.deliveryRepo.GetDeliveryStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_delivery_stats", "error", err)
		return b.messages.FormatError(err)
	}

	return b.messages.FormatStatus(cursor, stats.Total)
}
