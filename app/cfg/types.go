package cfg

type Cfg struct {
	// Telegram configuration
	TelegramToken string
	ChatID        int64

	// Source configuration
	SourceURL      string
	RandomURL      string
	RequestTimeout int

	// Polling configuration
	PollInterval     int
	ActiveHoursStart int
	ActiveHoursEnd   int
	CursorClamp      bool
	MuteErrors       bool

	// Application configuration
	DBPath       string
	Port         string
	WorkerCount  int
	APIAccessKey string
	MessagesFile string
	BaseURL      string
	FeedSize     int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	LogFile   string
	Version   string
}
