package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Telegram configuration
	TelegramToken string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token" required:"true"`
	ChatID        int64  `long:"chat-id" env:"TELEGRAM_CHAT_ID" description:"Destination chat for new quotes and error reports" required:"true"`

	// Source configuration
	SourceURL      string `long:"source-url" env:"SOURCE_URL" default:"https://bash.im/" description:"Page listing the newest quotes"`
	RandomURL      string `long:"random-url" env:"RANDOM_URL" default:"https://bash.im/random" description:"Page listing random quotes"`
	RequestTimeout int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Page request timeout in seconds"`

	// Polling configuration
	PollInterval     int  `long:"poll-interval" env:"POLL_INTERVAL" default:"300" description:"Poll interval in seconds"`
	ActiveHoursStart int  `long:"active-hours-start" env:"ACTIVE_HOURS_START" default:"0" description:"Polls run only after this hour (exclusive, local time)"`
	ActiveHoursEnd   int  `long:"active-hours-end" env:"ACTIVE_HOURS_END" default:"0" description:"Polls run only before this hour (exclusive, local time); equal bounds disable the window"`
	CursorClamp      bool `long:"cursor-clamp" env:"CURSOR_CLAMP" description:"Never move the quote cursor backwards"`
	MuteErrors       bool `long:"mute-errors" env:"MUTE_ERRORS" description:"Do not report poll failures to the chat"`

	// Application configuration
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./data/quotes.db" description:"SQLite database file"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for on-demand tasks"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	MessagesFile string `long:"messages-file" env:"MESSAGES_FILE" description:"YAML file overriding bot message texts (optional)"`
	BaseURL      string `long:"base-url" env:"BASE_URL" description:"Public URL of this service, used for the feed self link (optional)"`
	FeedSize     int    `long:"feed-size" env:"FEED_SIZE" default:"50" description:"Number of delivered quotes in the RSS feed"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Quote Relay/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for the active hours window (e.g., UTC, Europe/Moscow)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogFile   string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this file (optional)"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// A missing .env file is fine, real environment variables still apply.
	_ = godotenv.Load()

	return parse(nil)
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		TelegramToken:    raw.TelegramToken,
		ChatID:           raw.ChatID,
		SourceURL:        raw.SourceURL,
		RandomURL:        raw.RandomURL,
		RequestTimeout:   raw.RequestTimeout,
		PollInterval:     raw.PollInterval,
		ActiveHoursStart: raw.ActiveHoursStart,
		ActiveHoursEnd:   raw.ActiveHoursEnd,
		CursorClamp:      raw.CursorClamp,
		MuteErrors:       raw.MuteErrors,
		DBPath:           raw.DBPath,
		Port:             raw.Port,
		WorkerCount:      raw.WorkerCount,
		APIAccessKey:     raw.APIAccessKey,
		MessagesFile:     raw.MessagesFile,
		BaseURL:          raw.BaseURL,
		FeedSize:         raw.FeedSize,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		LogFile:          raw.LogFile,
		Version:          GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", cfg.PollInterval)
	}
	if cfg.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", cfg.WorkerCount)
	}
	if cfg.FeedSize <= 0 {
		return fmt.Errorf("feed size must be positive, got %d", cfg.FeedSize)
	}
	if cfg.ActiveHoursStart < 0 || cfg.ActiveHoursStart > 24 {
		return fmt.Errorf("active hours start must be within 0-24, got %d", cfg.ActiveHoursStart)
	}
	if cfg.ActiveHoursEnd < 0 || cfg.ActiveHoursEnd > 24 {
		return fmt.Errorf("active hours end must be within 0-24, got %d", cfg.ActiveHoursEnd)
	}
	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
