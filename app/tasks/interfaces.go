package tasks

import (
	"context"
)

// TaskSchedulerInterface is what the HTTP API and the bot see of the scheduler.
//
//	scheduler := NewScheduler(deps, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.RequestRandomQuotes(chatID)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerPoll() error
	RequestRandomQuotes(chatID int64) error
}

// Fetcher downloads a page; *quote.Fetcher implements it.
type Fetcher interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

// Sender delivers a text to a chat; *telegram.Bot implements it.
type Sender interface {
	SendText(chatID int64, text string) error
}
