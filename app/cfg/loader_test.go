package cfg

import (
	"os"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse([]string{"--telegram-token", "123:abc", "--chat-id=-100500", "--timezone", "UTC"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.TelegramToken != "123:abc" {
		t.Errorf("Expected token '123:abc', got '%s'", cfg.TelegramToken)
	}
	if cfg.ChatID != -100500 {
		t.Errorf("Expected chat ID -100500, got %d", cfg.ChatID)
	}
	if cfg.SourceURL != "https://bash.im/" {
		t.Errorf("Expected source URL 'https://bash.im/', got '%s'", cfg.SourceURL)
	}
	if cfg.RandomURL != "https://bash.im/random" {
		t.Errorf("Expected random URL 'https://bash.im/random', got '%s'", cfg.RandomURL)
	}
	if cfg.PollInterval != 300 {
		t.Errorf("Expected poll interval 300, got %d", cfg.PollInterval)
	}
	if cfg.ActiveHoursStart != 0 || cfg.ActiveHoursEnd != 0 {
		t.Errorf("Expected disabled active hours window, got %d-%d", cfg.ActiveHoursStart, cfg.ActiveHoursEnd)
	}
	if cfg.CursorClamp {
		t.Error("Expected cursor clamp to be disabled by default")
	}
	if cfg.MuteErrors {
		t.Error("Expected error reports to be enabled by default")
	}
	if cfg.FeedSize != 50 {
		t.Errorf("Expected feed size 50, got %d", cfg.FeedSize)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}

	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("ACTIVE_HOURS_START", "8")
	t.Setenv("ACTIVE_HOURS_END", "23")
	t.Setenv("CURSOR_CLAMP", "true")

	cfg, err := parse([]string{"--timezone", "UTC"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.TelegramToken != "env-token" {
		t.Errorf("Expected token 'env-token', got '%s'", cfg.TelegramToken)
	}
	if cfg.ChatID != 42 {
		t.Errorf("Expected chat ID 42, got %d", cfg.ChatID)
	}
	if cfg.PollInterval != 60 {
		t.Errorf("Expected poll interval 60, got %d", cfg.PollInterval)
	}
	if cfg.ActiveHoursStart != 8 || cfg.ActiveHoursEnd != 23 {
		t.Errorf("Expected active hours 8-23, got %d-%d", cfg.ActiveHoursStart, cfg.ActiveHoursEnd)
	}
	if !cfg.CursorClamp {
		t.Error("Expected cursor clamp to be enabled")
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero poll interval", []string{"--poll-interval", "0"}},
		{"zero workers", []string{"--worker-count", "0"}},
		{"start hour out of range", []string{"--active-hours-start", "25"}},
		{"end hour out of range", []string{"--active-hours-end=-1"}},
		{"zero feed size", []string{"--feed-size", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--telegram-token", "t", "--chat-id", "1", "--timezone", "UTC"}, tt.args...)
			if _, err := parse(args); err == nil {
				t.Errorf("Expected validation error for %v", tt.args)
			}
		})
	}
}

func TestParse_MissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	os.Unsetenv("TELEGRAM_TOKEN")

	if _, err := parse([]string{"--chat-id", "1"}); err == nil {
		t.Error("Expected error when telegram token is missing")
	}
}
