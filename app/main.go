package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/quote-relay/app/api"
	"github.com/lysyi3m/quote-relay/app/cfg"
	"github.com/lysyi3m/quote-relay/app/database"
	"github.com/lysyi3m/quote-relay/app/feed"
	"github.com/lysyi3m/quote-relay/app/quote"
	"github.com/lysyi3m/quote-relay/app/tasks"
	"github.com/lysyi3m/quote-relay/app/telegram"
	"github.com/lysyi3m/quote-relay/app/telemetry"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	logFile, err := setupLogger(appCfg.Debug, appCfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	slog.Info("Starting Quote Relay", "version", appCfg.Version)

	telemetry.Init()

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	stateRepo := database.NewStateStore(db)
	deliveryRepo := database.NewDeliveryStore(db)

	if cursor, err := stateRepo.GetCursor(); err != nil {
		slog.Warn("Failed to read stored cursor", "error", err)
	} else {
		telemetry.SetCursor(cursor)
		slog.Info("Resuming from stored cursor", "cursor", cursor)
	}

	messages, err := telegram.LoadMessages(appCfg.MessagesFile)
	if err != nil {
		slog.Error("Failed to load messages", "file", appCfg.MessagesFile, "error", err)
		os.Exit(1)
	}

	botAPI, err := tgbotapi.NewBotAPI(appCfg.TelegramToken)
	if err != nil {
		slog.Error("Failed to create Telegram bot", "error", err)
		os.Exit(1)
	}
	botAPI.Debug = appCfg.Debug
	slog.Info("Authorized on Telegram", "account", botAPI.Self.UserName)

	bot := telegram.NewBot(botAPI, messages, stateRepo, deliveryRepo)

	httpClient := &http.Client{}
	fetcher := quote.NewFetcher(httpClient, appCfg.UserAgent, time.Duration(appCfg.RequestTimeout)*time.Second)

	scheduler := tasks.NewScheduler(tasks.Deps{
		Fetcher:      fetcher,
		Parser:       quote.NewParser(),
		Filter:       quote.NewNoveltyFilter(appCfg.CursorClamp),
		StateRepo:    stateRepo,
		DeliveryRepo: deliveryRepo,
		Sender:       bot,
		Messages:     messages,
	}, tasks.Options{
		SourceURL:    appCfg.SourceURL,
		RandomURL:    appCfg.RandomURL,
		ChatID:       appCfg.ChatID,
		PollInterval: time.Duration(appCfg.PollInterval) * time.Second,
		Window:       tasks.ActiveWindow{Start: appCfg.ActiveHoursStart, End: appCfg.ActiveHoursEnd},
		WorkerCount:  appCfg.WorkerCount,
		MuteErrors:   appCfg.MuteErrors,
	})
	bot.SetRandomRequester(scheduler)

	scheduler.Start()
	defer scheduler.Stop()

	botCtx, stopBot := context.WithCancel(context.Background())
	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		if err := bot.Run(botCtx); err != nil {
			slog.Error("Telegram bot stopped with error", "error", err)
		}
	}()

	selfURL := fmt.Sprintf("http://localhost:%s/feed.xml", appCfg.Port)
	if appCfg.BaseURL != "" {
		selfURL = strings.TrimRight(appCfg.BaseURL, "/") + "/feed.xml"
	}
	generator := feed.NewGenerator(feed.Channel{
		Title:   "Quote Relay",
		SiteURL: appCfg.SourceURL,
		SelfURL: selfURL,
		Version: appCfg.Version,
	})

	apiHandler := api.NewHandler(db, stateRepo, deliveryRepo, scheduler, generator, appCfg.FeedSize, appCfg.ChatID)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Quote Relay started",
		"source", appCfg.SourceURL,
		"chat_id", appCfg.ChatID,
		"poll_interval", appCfg.PollInterval)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	stopBot()
	<-botDone

	slog.Info("Shutdown complete")
}

// setupLogger installs the default slog logger. With a log file set, records
// go to both stdout and the file.
func setupLogger(debug bool, logFile string) (*os.File, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	var file *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(os.Stdout, f)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return file, nil
}
