package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingTelegramToken is returned by RequireTelegram when the bot token is unset.
var ErrMissingTelegramToken = errors.New("TELEGRAM_BOT_TOKEN is required")

type Config struct {
	TelegramToken string

	WebAddr string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MediaGroupDebounce time.Duration
	MaxConcurrent      int
	MaxHistoryMessages int
	BatchWorkers       int
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		WebAddr:            getEnv("WEB_ADDR", ":8080"),
		LogLevel:           strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:              getEnvBool("DEBUG", false),
		PreferIPv4:         getEnvBool("PREFER_IPV4", true),
		MediaGroupDebounce: time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
		MaxConcurrent:      getEnvInt("MAX_CONCURRENT", 4),
		MaxHistoryMessages: getEnvInt("MAX_HISTORY_MESSAGES", 20),
		BatchWorkers:       getEnvInt("BATCH_WORKERS", 4),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxHistoryMessages < 1 {
		cfg.MaxHistoryMessages = 1
	}
	if cfg.BatchWorkers < 1 {
		cfg.BatchWorkers = 1
	}
	if cfg.MediaGroupDebounce <= 0 {
		cfg.MediaGroupDebounce = 1200 * time.Millisecond
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}

	return cfg, nil
}

// RequireTelegram fails when the bot cannot start for lack of a token.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return ErrMissingTelegramToken
	}
	return nil
}

// SlogLevel maps LogLevel onto slog. Debug forces debug level.
func (c Config) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger writes JSON records to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: c.SlogLevel(),
	}))
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
