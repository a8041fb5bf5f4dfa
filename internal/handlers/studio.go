package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"suno-forge/internal/forge"
	"suno-forge/internal/session"
	"suno-forge/internal/studio"
)

const studioCallbackPrefix = "st"

// startStudio opens the wizard. Arguments in the ParseArgs syntax preselect
// genre, mood and theme.
func (h *Handler) startStudio(chatID int64, userID int64, args string) error {
	pre := forge.ParseArgs(args, forge.PromptConfig{})
	st := h.studio.Update(chatID, userID, func(st *studio.UIState) {
		st.AwaitingTheme = false
		st.Menu = studio.MenuMain
		if pre.Genre != "" {
			st.SetGenre(pre.Genre)
		}
		if pre.Mood != "" {
			st.Mood = pre.Mood
		}
		if pre.Theme != "" {
			st.Theme = pre.Theme
		}
		if pre.Instrumental != nil {
			st.Instrumental = *pre.Instrumental
		}
	})

	msgID, err := h.tg.SendTextWithKeyboard(chatID, studioText(st), studioKeyboard(userID, st))
	if err != nil {
		return err
	}
	h.studio.Update(chatID, userID, func(st *studio.UIState) { st.MessageID = msgID })
	return nil
}

func (h *Handler) setStudioTheme(chatID int64, userID int64, text string) error {
	h.studio.Update(chatID, userID, func(st *studio.UIState) {
		st.Theme = truncateLine(text, 200)
		st.AwaitingTheme = false
		st.Menu = studio.MenuMain
	})
	_ = h.tg.SendText(chatID, "✅ Theme saved.")
	return h.renderStudio(chatID, userID, 0, false)
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, studioCallbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu is not yours.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	if action == "reset" {
		h.studio.Reset(chatID, ownerID)
	}

	updated := h.studio.Update(chatID, ownerID, func(st *studio.UIState) {
		st.MessageID = msgID

		switch action {
		case "menu":
			if len(args) >= 1 {
				st.Menu = args[0]
			}
		case "genre":
			if len(args) >= 1 {
				st.SetGenre(args[0])
				st.Menu = studio.MenuMain
			}
		case "mood":
			if len(args) >= 1 {
				if args[0] == "none" {
					st.SetMood(-1)
				} else if idx, err := strconv.Atoi(args[0]); err == nil {
					st.SetMood(idx)
				}
				st.Menu = studio.MenuMain
			}
		case "energy":
			if len(args) >= 1 {
				st.SetEnergy(forge.EnergyLabel(args[0]))
				st.Menu = studio.MenuMain
			}
		case "inst":
			st.Instrumental = !st.Instrumental
			st.Menu = studio.MenuMain
		case "theme":
			st.AwaitingTheme = true
			st.Menu = studio.MenuMain
		case "close":
			st.AwaitingTheme = false
			st.Menu = studio.MenuMain
		}
	})

	switch action {
	case "theme":
		_ = h.tg.AnswerCallback(q.ID, "Send a theme (cancel: /cancel).", false)
		_ = h.tg.SendText(chatID, "📝 Send the song theme as a message (cancel: /cancel).")
	case "generate":
		_ = h.tg.AnswerCallback(q.ID, "Generating…", false)
		if err := h.generate(chatID, ownerID, q.From.UserName, updated.Config(), session.KindStudio); err != nil {
			return err
		}
	case "mutate":
		if len(args) < 1 {
			_ = h.tg.AnswerCallback(q.ID, "OK", false)
			break
		}
		t, err := forge.ParseMutationType(args[0])
		if err != nil {
			_ = h.tg.AnswerCallback(q.ID, "Unknown mutation.", true)
			break
		}
		last, ok := h.sessions.Last(ownerID)
		if !ok {
			_ = h.tg.AnswerCallback(q.ID, "Generate a prompt first.", true)
			break
		}
		_ = h.tg.AnswerCallback(q.ID, string(t), false)
		if err := h.mutate(chatID, ownerID, q.From.UserName, t, last.Prompt); err != nil {
			return err
		}
	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	return h.renderStudio(chatID, ownerID, msgID, true)
}

func (h *Handler) renderStudio(chatID int64, userID int64, messageID int, edit bool) error {
	st := h.studio.Get(chatID, userID)
	if messageID == 0 {
		messageID = st.MessageID
	}

	text := studioText(st)
	kb := studioKeyboard(userID, st)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.studio.Update(chatID, userID, func(st *studio.UIState) { st.MessageID = msgID })
	return nil
}

func studioText(st studio.UIState) string {
	mood := st.Mood
	if mood == "" {
		mood = "(none)"
	}
	theme := st.Theme
	if strings.TrimSpace(theme) == "" {
		theme = "(none)"
	}

	var b strings.Builder
	b.WriteString("🎛 Studio\n\n")
	b.WriteString(fmt.Sprintf("Genre: %s\n", st.Genre))
	b.WriteString(fmt.Sprintf("Mood: %s\n", mood))
	b.WriteString(fmt.Sprintf("Energy: %s\n", st.Energy))
	b.WriteString(fmt.Sprintf("Vocals: %s\n", onOff(!st.Instrumental)))
	b.WriteString("Theme: " + truncateLine(theme, 80) + "\n")
	if st.AwaitingTheme {
		b.WriteString("\n📝 Send the theme now (cancel: /cancel).\n")
	}
	if st.Menu == studio.MenuMutate {
		b.WriteString("\nMutations apply to your last prompt.\n")
	}
	return strings.TrimSpace(b.String())
}

func studioKeyboard(ownerID int64, st studio.UIState) tgbotapi.InlineKeyboardMarkup {
	switch st.Menu {
	case studio.MenuGenre:
		return genreKeyboard(ownerID, st)
	case studio.MenuMood:
		return moodKeyboard(ownerID, st)
	case studio.MenuEnergy:
		return energyKeyboard(ownerID, st)
	case studio.MenuMutate:
		return mutateKeyboard(ownerID)
	default:
		return mainKeyboard(ownerID, st)
	}
}

func mainKeyboard(ownerID int64, st studio.UIState) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Genre: "+st.Genre, cb(ownerID, "menu", studio.MenuGenre)),
			tgbotapi.NewInlineKeyboardButtonData("Mood", cb(ownerID, "menu", studio.MenuMood)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Energy: "+string(st.Energy), cb(ownerID, "menu", studio.MenuEnergy)),
			tgbotapi.NewInlineKeyboardButtonData("Vocals: "+onOff(!st.Instrumental), cb(ownerID, "inst")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📝 Theme", cb(ownerID, "theme")),
			tgbotapi.NewInlineKeyboardButtonData("🧬 Mutate", cb(ownerID, "menu", studio.MenuMutate)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🎵 Generate", cb(ownerID, "generate")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
			tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
		},
	)
}

func genreKeyboard(ownerID int64, st studio.UIState) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, g := range forge.GenreNames() {
		label := g
		if g == st.Genre {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "genre", g)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, backRow(ownerID))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func moodKeyboard(ownerID int64, st studio.UIState) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, m := range studio.Moods() {
		label := m
		if m == st.Mood {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "mood", strconv.Itoa(i))))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	none := "No mood"
	if st.Mood == "" {
		none = "✅ " + none
	}
	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonData(none, cb(ownerID, "mood", "none"))},
		backRow(ownerID),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func energyKeyboard(ownerID int64, st studio.UIState) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, l := range forge.EnergyLabels() {
		label := string(l)
		if l == st.Energy {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "energy", string(l))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, backRow(ownerID))
}

func mutateKeyboard(ownerID int64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range forge.MutationTypes() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(t), cb(ownerID, "mutate", string(t))))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, backRow(ownerID))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backRow(ownerID int64) []tgbotapi.InlineKeyboardButton {
	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", studio.MenuMain)),
	}
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", studioCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
