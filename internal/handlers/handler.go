package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"suno-forge/internal/forge"
	"suno-forge/internal/mediagroup"
	"suno-forge/internal/session"
	"suno-forge/internal/studio"
	"suno-forge/internal/telegram"
	"suno-forge/internal/validation"
)

const (
	defaultChatBatch = 3
	maxChatBatch     = 10
	historyListSize  = 5
)

// Messenger is the part of the Telegram client the handlers talk to.
type Messenger interface {
	SendTyping(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.Keyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.Keyboard) error
	AnswerCallback(callbackID, text string, alert bool) error
}

type Options struct {
	Telegram     Messenger
	Sessions     *session.Store
	Studio       *studio.Store
	Logger       *slog.Logger
	BatchWorkers int
}

type Handler struct {
	tg           Messenger
	sessions     *session.Store
	studio       *studio.Store
	logger       *slog.Logger
	aggregator   *mediagroup.Aggregator
	batchWorkers int
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}
	st := opts.Studio
	if st == nil {
		st = studio.NewStore()
	}
	workers := opts.BatchWorkers
	if workers < 1 {
		workers = 1
	}

	return &Handler{
		tg:           opts.Telegram,
		sessions:     sessions,
		studio:       st,
		logger:       logger,
		batchWorkers: workers,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(chatID, userID, username, msg)
	}

	if msg.Text != "" {
		return h.handleText(ctx, chatID, userID, username, msg.Text)
	}

	return nil
}

// HandleMediaGroup treats the album captions as one vision description.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	if err := ctx.Err(); err != nil {
		return
	}
	desc := group.Description()
	if desc == "" {
		if err := h.tg.SendText(group.ChatID, msgNeedCaption); err != nil {
			h.logger.Error("send failed", "err", err)
		}
		return
	}
	if err := h.runVision(group.ChatID, group.UserID, group.Username, desc); err != nil {
		h.logger.Error("media group processing failed", "err", err)
	}
}

const (
	msgNeedCaption = "🖼 Add a caption describing the picture (place, colors, feeling) and I will pick a genre and mood for it."
	msgInvalid     = "❌ Those settings are out of range. Tempo must be 20-300 BPM, energy 0-1, title up to 100 characters."
	msgNoPrompt    = "🤷 Nothing to mutate yet. Send /generate first or give a prompt: /mutate viral pop, 120 BPM"
)

func helpText() string {
	return "🎶 Suno Forge\n\n" +
		"I build prompts for AI music generators.\n\n" +
		"Commands:\n" +
		"/generate <args> - build a prompt (genre=trap mood=dark 140bpm energy=0.9 instrumental ...)\n" +
		"/batch <n> <args> - build up to 10 variations\n" +
		"/mutate <type> [prompt] - transform a style (defaults to your last one)\n" +
		"/vision <description> - guess a genre and mood from a scene\n" +
		"/lyrics <args> - lyric blueprint for a genre and theme\n" +
		"/pack [id] - build a prompt from a preset (random without id)\n" +
		"/packs - list presets\n" +
		"/genres - list genres\n" +
		"/studio - pick settings with buttons\n" +
		"/history - your recent prompts\n" +
		"/clear - forget your history\n\n" +
		"Plain text works too: \"dark trap about the city\" or, after a prompt, \"make it faster\"."
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText())
	case "generate", "gen":
		return h.generate(chatID, userID, username, forge.ParseArgs(args, forge.PromptConfig{}), session.KindGenerate)
	case "batch":
		return h.batch(ctx, chatID, userID, username, args)
	case "mutate":
		return h.mutateCommand(chatID, userID, username, args)
	case "vision":
		if args == "" {
			return h.tg.SendText(chatID, "❌ Describe the scene.\nExample: /vision neon city at night in the rain")
		}
		return h.runVision(chatID, userID, username, args)
	case "lyrics":
		return h.lyrics(chatID, args)
	case "pack":
		return h.pack(chatID, userID, username, args)
	case "packs":
		return h.tg.SendText(chatID, packsText())
	case "genres":
		return h.tg.SendText(chatID, "🎼 Genres:\n"+strings.Join(forge.GenreNames(), ", ")+"\n\nOther genres work too; they borrow the pop profile.")
	case "studio":
		return h.startStudio(chatID, userID, args)
	case "history":
		return h.tg.SendText(chatID, historyText(h.sessions.Snapshot(userID, username)))
	case "clear":
		h.sessions.Clear(userID)
		return h.tg.SendText(chatID, "✅ History cleared!")
	case "cancel":
		h.studio.Update(chatID, userID, func(st *studio.UIState) { st.AwaitingTheme = false })
		return h.tg.SendText(chatID, "OK, cancelled.")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Try /help.")
	}
}

func (h *Handler) handleText(ctx context.Context, chatID int64, userID int64, username string, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if h.studio.AwaitingTheme(chatID, userID) {
		return h.setStudioTheme(chatID, userID, text)
	}

	if t, ok := mutationIntent(text); ok {
		if last, ok := h.sessions.Last(userID); ok {
			return h.mutate(chatID, userID, username, t, last.Prompt)
		}
	}

	return h.generate(chatID, userID, username, forge.ParseArgs(text, forge.PromptConfig{}), session.KindGenerate)
}

func (h *Handler) handlePhoto(chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			Username:     username,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       photo.FileID,
		})
		return nil
	}

	caption := strings.TrimSpace(msg.Caption)
	if caption == "" {
		return h.tg.SendText(chatID, msgNeedCaption)
	}
	return h.runVision(chatID, userID, username, caption)
}

func (h *Handler) generate(chatID int64, userID int64, username string, cfg forge.PromptConfig, kind session.Kind) error {
	if !validation.ValidateConfig(cfg) {
		return h.tg.SendText(chatID, msgInvalid)
	}

	h.tg.SendTyping(chatID)
	prompt := forge.BuildPrompt(cfg)
	h.remember(userID, username, kind, prompt)
	return h.tg.SendText(chatID, formatPrompt(prompt))
}

func (h *Handler) batch(ctx context.Context, chatID int64, userID int64, username string, args string) error {
	n := defaultChatBatch
	if fields := strings.Fields(args); len(fields) > 0 {
		if v, err := strconv.Atoi(fields[0]); err == nil {
			n = v
			args = strings.TrimSpace(strings.TrimPrefix(args, fields[0]))
		}
	}
	n = max(validation.MinBatchCount, min(n, maxChatBatch))

	cfg := forge.ParseArgs(args, forge.PromptConfig{})
	if !validation.ValidateBatchRequest(map[string]any{"config": validation.ConfigMap(cfg), "count": n}) {
		return h.tg.SendText(chatID, msgInvalid)
	}

	h.tg.SendTyping(chatID)
	prompts, err := forge.BuildBatch(ctx, cfg, n, h.batchWorkers)
	if err != nil {
		h.logger.Warn("batch aborted", "user_id", userID, "count", n, "err", err)
		return h.tg.SendText(chatID, "⏳ The batch took too long. Try fewer prompts.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎛 %d variations\n", len(prompts))
	for i, p := range prompts {
		fmt.Fprintf(&b, "\n%d) %s\n", i+1, p.Style)
		h.remember(userID, username, session.KindBatch, p)
	}
	if lyrics := prompts[0].Lyrics; lyrics != "" {
		b.WriteString("\nLyrics:\n" + lyrics)
	}
	return h.tg.SendText(chatID, strings.TrimSpace(b.String()))
}

func (h *Handler) mutateCommand(chatID int64, userID int64, username string, args string) error {
	if args == "" {
		return h.tg.SendText(chatID, mutationsText())
	}

	name, rest, _ := strings.Cut(args, " ")
	t, err := forge.ParseMutationType(strings.ToLower(name))
	if err != nil {
		return h.tg.SendText(chatID, "❌ Unknown mutation type.\n\n"+mutationsText())
	}

	base := forge.Prompt{Style: strings.TrimSpace(rest)}
	if base.Style == "" {
		last, ok := h.sessions.Last(userID)
		if !ok {
			return h.tg.SendText(chatID, msgNoPrompt)
		}
		base = last.Prompt
	}
	return h.mutate(chatID, userID, username, t, base)
}

// mutate transforms the style of base. Title and lyrics carry over.
func (h *Handler) mutate(chatID int64, userID int64, username string, t forge.MutationType, base forge.Prompt) error {
	if !validation.ValidateMutateRequest(map[string]any{"prompt": base.Style, "type": t}) {
		return h.tg.SendText(chatID, "❌ That prompt is empty or too long to mutate.")
	}

	mutated, err := forge.MutatePrompt(base.Style, t)
	if err != nil {
		if errors.Is(err, forge.ErrUnknownMutation) {
			h.logger.Error("mutation contract violated", "type", t, "err", err)
		}
		return h.tg.SendText(chatID, "❌ Mutation failed.")
	}

	out := base
	out.Style = mutated
	h.remember(userID, username, session.KindMutate, out)
	return h.tg.SendText(chatID, fmt.Sprintf("🧬 %s\n\n%s", t, mutated))
}

func (h *Handler) runVision(chatID int64, userID int64, username string, description string) error {
	if !validation.ValidateVisionRequest(map[string]any{"description": description}) {
		return h.tg.SendText(chatID, "❌ That description is too long.")
	}

	h.tg.SendTyping(chatID)
	res := forge.ImageToPrompt(description)
	prompt := forge.BuildPrompt(res.Config())
	h.remember(userID, username, session.KindVision, prompt)

	header := fmt.Sprintf("👁 Genre: %s, mood: %s\n\n", res.Genre, res.Mood)
	return h.tg.SendText(chatID, header+formatPrompt(prompt))
}

func (h *Handler) lyrics(chatID int64, args string) error {
	cfg := forge.ParseArgs(args, forge.PromptConfig{})
	if !validation.ValidateLyricsRequest(map[string]any{"genre": cfg.Genre, "theme": cfg.Theme}) {
		return h.tg.SendText(chatID, msgInvalid)
	}
	return h.tg.SendText(chatID, "📝 Lyrics blueprint\n\n"+forge.GenerateLyrics(cfg.Genre, cfg.Theme))
}

func (h *Handler) pack(chatID int64, userID int64, username string, id string) error {
	var p forge.PromptPack
	if id == "" {
		p = forge.RandomPromptPack()
	} else {
		var ok bool
		if p, ok = forge.PromptPackByID(strings.ToLower(id)); !ok {
			return h.tg.SendText(chatID, "❌ Unknown pack. See /packs.")
		}
	}

	h.tg.SendTyping(chatID)
	prompt := forge.BuildPrompt(p.Config())
	h.remember(userID, username, session.KindPack, prompt)

	header := fmt.Sprintf("📦 %s (%s energy)\n%s\n\n", p.Name, p.EnergyLabel, p.UseCase)
	return h.tg.SendText(chatID, header+formatPrompt(prompt))
}

func (h *Handler) remember(userID int64, username string, kind session.Kind, p forge.Prompt) {
	h.sessions.Append(userID, username, session.HistoryEntry{Kind: kind, Prompt: p})
	h.logger.Debug("prompt stored", "user_id", userID, "kind", kind, "name", p.TechnicalName)
}

func formatPrompt(p forge.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎵 %s\n", p.Title)
	fmt.Fprintf(&b, "🏷 %s\n\n", p.TechnicalName)
	b.WriteString("Style:\n" + p.Style + "\n\n")
	if p.Lyrics == "" {
		b.WriteString("Lyrics: (instrumental or none)")
	} else {
		b.WriteString("Lyrics:\n" + p.Lyrics)
	}
	return b.String()
}

func packsText() string {
	var b strings.Builder
	b.WriteString("📦 Packs (use /pack <id>):\n")
	for _, p := range forge.PromptPacks() {
		fmt.Fprintf(&b, "\n%s - %s, %d BPM, %s energy\n  %s\n", p.ID, p.Name, p.Tempo, p.EnergyLabel, p.UseCase)
	}
	return strings.TrimSpace(b.String())
}

func mutationsText() string {
	var b strings.Builder
	b.WriteString("🧬 Mutations:\n")
	for _, t := range forge.MutationTypes() {
		b.WriteString("• " + string(t) + "\n")
	}
	b.WriteString("\nUsage: /mutate <type> [prompt]")
	return b.String()
}

func historyText(entries []session.HistoryEntry) string {
	if len(entries) == 0 {
		return "🗂 No prompts yet. Try /generate."
	}
	if len(entries) > historyListSize {
		entries = entries[len(entries)-historyListSize:]
	}

	var b strings.Builder
	b.WriteString("🗂 Recent prompts:\n")
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		title := e.Prompt.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "\n[%s] %s %s\n%s\n", e.Kind, e.At.UTC().Format("15:04"), title, truncateLine(e.Prompt.Style, 300))
	}
	return strings.TrimSpace(b.String())
}

func truncateLine(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
