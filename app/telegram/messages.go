package telegram

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/quote-relay/app/quote"
)

// Messages holds every text the bot sends. Quote and Error take one %s verb,
// Status takes the cursor (%d) and the delivered quote count (%d).
type Messages struct {
	Welcome      string `yaml:"welcome"`
	Help         string `yaml:"help"`
	Quote        string `yaml:"quote"`
	Error        string `yaml:"error"`
	Status       string `yaml:"status"`
	RandomFailed string `yaml:"random_failed"`
	Unknown      string `yaml:"unknown"`
}

func DefaultMessages() Messages {
	return Messages{
		Welcome:      "Привет! Я присылаю в чат новые цитаты с bash.im.\nСписок команд: /help",
		Help:         "/rand - прислать случайные цитаты\n/status - последняя доставленная цитата\n/help - эта справка",
		Quote:        "Цитата: %s",
		Error:        "Бот упал с ошибкой: %s",
		Status:       "Последняя цитата: #%d\nОтправлено цитат: %d",
		RandomFailed: "Не получилось запросить случайные цитаты, попробуйте позже.",
		Unknown:      "Неизвестная команда. Список команд: /help",
	}
}

// LoadMessages reads overrides from a YAML file on top of the defaults.
// An empty path returns the defaults.
func LoadMessages(path string) (Messages, error) {
	messages := DefaultMessages()
	if path == "" {
		return messages, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Messages{}, fmt.Errorf("failed to read messages file: %w", err)
	}

	var overrides Messages
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Messages{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	messages.merge(overrides)

	if err := messages.validate(); err != nil {
		return Messages{}, fmt.Errorf("invalid messages file %s: %w", path, err)
	}

	return messages, nil
}

func (m *Messages) merge(o Messages) {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&m.Welcome, o.Welcome},
		{&m.Help, o.Help},
		{&m.Quote, o.Quote},
		{&m.Error, o.Error},
		{&m.Status, o.Status},
		{&m.RandomFailed, o.RandomFailed},
		{&m.Unknown, o.Unknown},
	} {
		if strings.TrimSpace(f.src) != "" {
			*f.dst = f.src
		}
	}
}

func (m *Messages) validate() error {
	if strings.Count(m.Quote, "%s") != 1 {
		return fmt.Errorf("quote must contain exactly one %%s")
	}
	if strings.Count(m.Error, "%s") != 1 {
		return fmt.Errorf("error must contain exactly one %%s")
	}
	if strings.Count(m.Status, "%d") != 2 {
		return fmt.Errorf("status must contain exactly two %%d")
	}
	return nil
}

func (m Messages) FormatQuote(q quote.Quote) string {
	return fmt.Sprintf(m.Quote, q.Text)
}

func (m Messages) FormatError(err error) string {
	return fmt.Sprintf(m.Error, err)
}

func (m Messages) FormatStatus(cursor, delivered int) string {
	return fmt.Sprintf(m.Status, cursor, delivered)
}
