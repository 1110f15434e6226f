package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lysyi3m/quote-relay/app/database"
	"github.com/lysyi3m/quote-relay/app/quote"
	"github.com/lysyi3m/quote-relay/app/telegram"
	"github.com/lysyi3m/quote-relay/app/telemetry"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
)

type Deps struct {
	Fetcher      Fetcher
	Parser       *quote.Parser
	Filter       *quote.NoveltyFilter
	StateRepo    database.StateRepository
	DeliveryRepo database.DeliveryRepository
	Sender       Sender
	Messages     telegram.Messages
}

type Options struct {
	SourceURL    string
	RandomURL    string
	ChatID       int64
	PollInterval time.Duration
	Window       ActiveWindow
	WorkerCount  int
	MuteErrors   bool
}

type Scheduler struct {
	deps      Deps
	opts      Options
	cron      *cron.Cron
	pollJob   cron.Job
	now       func() time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(deps Deps, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cronLogger{}

	s := &Scheduler{
		deps:      deps,
		opts:      opts,
		cron:      cron.New(cron.WithLocation(time.Local), cron.WithLogger(logger)),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, taskQueueSize),
	}

	// Polls never overlap, whether started by the timer, at startup or on demand.
	s.pollJob = cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(s.poll))

	return s
}

func (s *Scheduler) Start() {
	for i := 0; i < s.opts.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.cron.Schedule(cron.Every(s.opts.PollInterval), s.pollJob)
	s.cron.Start()

	slog.Info("Scheduler started",
		"interval", s.opts.PollInterval.String(),
		"workers", s.opts.WorkerCount,
		"active_hours", s.opts.Window.Enabled(),
		"active_hours_start", s.opts.Window.Start,
		"active_hours_end", s.opts.Window.End)

	if err := s.TriggerPoll(); err != nil {
		slog.Warn("Failed to run startup poll", "error", err)
	}
}

func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// TriggerPoll runs a poll in the background unless one is already running.
func (s *Scheduler) TriggerPoll() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pollJob.Run()
	}()

	return nil
}

func (s *Scheduler) RequestRandomQuotes(chatID int64) error {
	task := NewSendRandomQuotesTask(s.opts.RandomURL, chatID, s.deps.Fetcher, s.deps.Parser,
		s.deps.DeliveryRepo, s.deps.Sender, s.deps.Messages)

	if err := s.EnqueueTask(task); err != nil {
		return fmt.Errorf("failed to enqueue random quotes: %w", err)
	}

	slog.Debug("Random quotes requested", "chat_id", chatID, "id", task.GetID())
	return nil
}

func (s *Scheduler) poll() {
	if s.ctx.Err() != nil {
		return
	}

	if !s.opts.Window.Contains(s.now()) {
		telemetry.RecordSkipped()
		slog.Debug("Outside active hours, skipping poll")
		return
	}

	telemetry.RecordPoll()
	start := time.Now()

	task := NewPollQuotesTask(s.opts.SourceURL, s.opts.ChatID, s.deps.Fetcher, s.deps.Parser, s.deps.Filter,
		s.deps.StateRepo, s.deps.DeliveryRepo, s.deps.Sender, s.deps.Messages)
	s.executeTask(-1, task)

	telemetry.ObserveSince(telemetry.PollDuration, start)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
		slog.Debug("Task cancelled on shutdown", "type", string(task.GetType()), "id", task.GetID())
		return
	}

	kind := failureKind(err)
	telemetry.RecordFailure(kind)

	slog.Error("Task execution failed",
		"worker_id", workerID,
		"type", string(task.GetType()),
		"id", task.GetID(),
		"kind", kind,
		"duration", task.GetDuration(),
		"error", err)

	if s.opts.MuteErrors {
		return
	}

	if sendErr := s.deps.Sender.SendText(task.GetChatID(), s.deps.Messages.FormatError(err)); sendErr != nil {
		slog.Error("Failed to report task failure", "chat_id", task.GetChatID(), "error", sendErr)
	}
}

func failureKind(err error) string {
	var fetchErr *quote.FetchError
	var parseErr *quote.ParseError

	switch {
	case errors.As(err, &fetchErr):
		return telemetry.FailureFetch
	case errors.As(err, &parseErr):
		return telemetry.FailureParse
	default:
		return telemetry.FailureOther
	}
}

// cronLogger routes robfig/cron logs to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("Cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("Cron: "+msg, append(keysAndValues, "error", err)...)
}
