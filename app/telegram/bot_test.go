package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/quote-relay/app/database"
)

type MockAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
	sendErr  error
}

func NewMockAPI() *MockAPI {
	return &MockAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (m *MockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return tgbotapi.Message{}, m.sendErr
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, msg)
	}
	return tgbotapi.Message{MessageID: len(m.sent)}, nil
}

func (m *MockAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *MockAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updates
}

func (m *MockAPI) StopReceivingUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockAPI) Sent() []tgbotapi.MessageConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), m.sent...)
}

type MockStateRepository struct {
	cursor int
	err    error
}

func (m *MockStateRepository) GetCursor() (int, error) { return m.cursor, m.err }
func (m *MockStateRepository) SetCursor(value int) error {
	m.cursor = value
	return m.err
}

type MockDeliveryRepository struct {
	stats database.DeliveryStats
}

func (m *MockDeliveryRepository) RecordDelivery(delivery database.Delivery) error { return nil }
func (m *MockDeliveryRepository) GetDeliveryStats() (database.DeliveryStats, error) {
	return m.stats, nil
}
func (m *MockDeliveryRepository) GetLastDelivery() (*database.Delivery, error) { return nil, nil }
func (m *MockDeliveryRepository) GetRecentDeliveries(source database.DeliverySource, limit int) ([]database.Delivery, error) {
	return nil, nil
}

type MockRandomRequester struct {
	chats []int64
	err   error
}

func (m *MockRandomRequester) RequestRandomQuotes(chatID int64) error {
	m.chats = append(m.chats, chatID)
	return m.err
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	command := strings.Fields(text)[0]
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID},
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
		},
	}
}

func newTestBot(api *MockAPI) *Bot {
	return NewBot(api, DefaultMessages(), &MockStateRepository{cursor: 302}, &MockDeliveryRepository{stats: database.DeliveryStats{Total: 5}})
}

func TestBot_HandleUpdate_StartAndHelp(t *testing.T) {
	api := NewMockAPI()
	bot := newTestBot(api)

	bot.HandleUpdate(commandUpdate(7, "/start"))
	bot.HandleUpdate(commandUpdate(7, "/help"))

	sent := api.Sent()
	if len(sent) != 2 {
		t.Fatalf("Expected 2 replies, got %d", len(sent))
	}
	if sent[0].ChatID != 7 || sent[0].Text != DefaultMessages().Welcome {
		t.Errorf("Unexpected /start reply: %+v", sent[0])
	}
	if sent[1].Text != DefaultMessages().Help {
		t.Errorf("Unexpected /help reply: %q", sent[1].Text)
	}
}

func TestBot_HandleUpdate_Random(t *testing.T) {
	api := NewMockAPI()
	bot := newTestBot(api)
	random := &MockRandomRequester{}
	bot.SetRandomRequester(random)

	bot.HandleUpdate(commandUpdate(99, "/rand"))

	if len(random.chats) != 1 || random.chats[0] != 99 {
		t.Errorf("Expected random quotes requested for chat 99, got %v", random.chats)
	}
	if len(api.Sent()) != 0 {
		t.Errorf("Expected no direct reply, got %d", len(api.Sent()))
	}
}

func TestBot_HandleUpdate_RandomFailure(t *testing.T) {
	api := NewMockAPI()
	bot := newTestBot(api)
	bot.SetRandomRequester(&MockRandomRequester{err: errors.New("task queue is full")})

	bot.HandleUpdate(commandUpdate(99, "/rand"))

	sent := api.Sent()
	if len(sent) != 1 || sent[0].Text != DefaultMessages().RandomFailed {
		t.Errorf("Expected random failure reply, got %+v", sent)
	}
}

func TestBot_HandleUpdate_Status(t *testing.T) {
	api := NewMockAPI()
	bot := newTestBot(api)

	bot.HandleUpdate(commandUpdate(1, "/status"))

	sent := api.Sent()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 reply, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Text, "#302") || !strings.Contains(sent[0].Text, "5") {
		t.Errorf("Expected status with cursor and count, got %q", sent[0].Text)
	}
}

func TestBot_HandleUpdate_IgnoresPlainText(t *testing.T) {
	api := NewMockAPI()
	bot := newTestBot(api)

	bot.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 1}}})
	bot.HandleUpdate(tgbotapi.Update{})

	if len(api.Sent()) != 0 {
		t.Errorf("Expected no replies, got %d", len(api.Sent()))
	}
}

func TestBot_HandleUpdate_UnknownCommand(t *testing.T) {
	api := NewMockAPI()
	bot := newTestBot(api)

	bot.HandleUpdate(commandUpdate(1, "/nope"))

	sent := api.Sent()
	if len(sent) != 1 || sent[0].Text != DefaultMessages().Unknown {
		t.Errorf("Expected unknown command reply, got %+v", sent)
	}
}

func TestBot_SendText_Error(t *testing.T) {
	api := NewMockAPI()
	api.sendErr = errors.New("forbidden")
	bot := newTestBot(api)

	if err := bot.SendText(1, "text"); err == nil {
		t.Error("Expected send error")
	}
}

func TestBot_Run(t *testing.T) {
	api := NewMockAPI()
	bot := newTestBot(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	api.updates <- commandUpdate(3, "/help")

	deadline := time.Now().Add(2 * time.Second)
	for len(api.Sent()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error on shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Bot did not stop after context cancellation")
	}

	if len(api.Sent()) != 1 {
		t.Errorf("Expected 1 reply, got %d", len(api.Sent()))
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if !api.stopped {
		t.Error("Expected updates to be stopped")
	}
	if len(api.requests) != 1 {
		t.Errorf("Expected command registration request, got %d", len(api.requests))
	}
}
