package telegram

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxMessageBytes  = 4096
	maxCallbackBytes = 200
)

type Options struct {
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Debug      bool
}

type Client struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if opts.HTTPClient == nil {
		return nil, errors.New("http client is nil")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, tgbotapi.APIEndpoint, opts.HTTPClient)
	if err != nil {
		return nil, err
	}
	bot.Debug = opts.Debug

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		bot:    bot,
		logger: logger,
	}, nil
}

func (c *Client) Username() string {
	return c.bot.Self.UserName
}

type Update = tgbotapi.Update

type Keyboard = tgbotapi.InlineKeyboardMarkup

type UpdatesOptions struct {
	Timeout time.Duration
}

func (c *Client) Updates(opts UpdatesOptions) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	if opts.Timeout > 0 {
		u.Timeout = int(opts.Timeout.Seconds())
	} else {
		u.Timeout = 30
	}
	return c.bot.GetUpdatesChan(u)
}

func (c *Client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

func (c *Client) SendTyping(chatID int64) {
	_, _ = c.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

// SendText sends text, split into as many messages as the size limit needs.
func (c *Client) SendText(chatID int64, text string) error {
	for _, p := range SplitByBytes(text, maxMessageBytes) {
		msg := tgbotapi.NewMessage(chatID, p)
		msg.DisableWebPagePreview = true
		if _, err := c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// SendTextWithKeyboard sends a single message with an inline keyboard and
// returns its id so it can be edited later.
func (c *Client) SendTextWithKeyboard(chatID int64, text string, kb Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, TruncateByBytes(text, maxMessageBytes))
	msg.ReplyMarkup = kb
	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) EditTextWithKeyboard(chatID int64, messageID int, text string, kb Keyboard) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, TruncateByBytes(text, maxMessageBytes), kb)
	_, err := c.bot.Request(edit)
	return err
}

func (c *Client) AnswerCallback(callbackID, text string, alert bool) error {
	text = TruncateByBytes(text, maxCallbackBytes)
	cfg := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	_, err := c.bot.Request(cfg)
	return err
}

// SplitByBytes cuts text into chunks of at most maxBytes without splitting a
// rune. Chunks prefer to end at a line break.
func SplitByBytes(text string, maxBytes int) []string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return []string{text}
	}

	var out []string
	for len(text) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(text)
		}
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

func TruncateByBytes(text string, maxBytes int) string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return text
	}

	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
