package handlers

import (
	"strconv"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"suno-forge/internal/forge"
	"suno-forge/internal/session"
	"suno-forge/internal/studio"
	"suno-forge/internal/telegram"
)

func callback(fromID int64, msgID int, data string) telegram.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "q" + strconv.Itoa(msgID),
		From: &tgbotapi.User{ID: fromID, UserName: "tester"},
		Message: &tgbotapi.Message{
			MessageID: msgID,
			Chat:      &tgbotapi.Chat{ID: testChat},
		},
		Data: data,
	}}
}

func buttons(kb telegram.Keyboard) map[string]string {
	out := make(map[string]string)
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out[*b.CallbackData] = b.Text
			}
		}
	}
	return out
}

func TestStudioOpensWithKeyboard(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/studio jazz instrumental rainy streets"))

	if len(fm.keyboards) != 1 {
		t.Fatalf("keyboards sent = %d", len(fm.keyboards))
	}
	sent := fm.keyboards[0]
	if !strings.Contains(sent.text, "Genre: jazz") || !strings.Contains(sent.text, "Vocals: OFF") || !strings.Contains(sent.text, "rainy streets") {
		t.Fatalf("studio text = %q", sent.text)
	}
	if _, ok := buttons(sent.kb)[cb(testUser, "generate")]; !ok {
		t.Fatalf("no generate button in %v", buttons(sent.kb))
	}
	if got := h.studio.Get(testChat, testUser).MessageID; got != sent.msgID {
		t.Fatalf("message id = %d, want %d", got, sent.msgID)
	}
}

func TestStudioCallbacksEditSelection(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/studio"))

	send(t, h, callback(testUser, 1, cb(testUser, "menu", studio.MenuGenre)))
	if last := fm.edits[len(fm.edits)-1]; buttons(last.kb)[cb(testUser, "genre", "trap")] != "trap" {
		t.Fatalf("genre menu = %v", buttons(last.kb))
	}

	send(t, h, callback(testUser, 1, cb(testUser, "genre", "trap")))
	send(t, h, callback(testUser, 1, cb(testUser, "mood", "3")))
	send(t, h, callback(testUser, 1, cb(testUser, "energy", string(forge.EnergyVeryHigh))))
	send(t, h, callback(testUser, 1, cb(testUser, "inst")))

	st := h.studio.Get(testChat, testUser)
	if st.Genre != "trap" || st.Mood != studio.Moods()[3] || st.Energy != forge.EnergyVeryHigh || !st.Instrumental {
		t.Fatalf("state = %+v", st)
	}
	if st.Menu != studio.MenuMain {
		t.Fatalf("menu = %q", st.Menu)
	}
	if len(fm.answers) != 5 {
		t.Fatalf("answers = %v", fm.answers)
	}
}

func TestStudioThemeAndGenerate(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/studio genre=lofi"))

	send(t, h, callback(testUser, 1, cb(testUser, "theme")))
	if !h.studio.AwaitingTheme(testChat, testUser) {
		t.Fatal("not awaiting theme")
	}
	send(t, h, tgbotapi.Update{Message: message("late night study")})
	st := h.studio.Get(testChat, testUser)
	if st.Theme != "late night study" || st.AwaitingTheme {
		t.Fatalf("state = %+v", st)
	}

	send(t, h, callback(testUser, 1, cb(testUser, "generate")))
	last, ok := h.sessions.Last(testUser)
	if !ok || last.Kind != session.KindStudio || !strings.HasPrefix(last.Prompt.Style, "lofi, ") {
		t.Fatalf("last = %+v, %v", last, ok)
	}
	if !strings.Contains(fm.lastText(t), "Lofi - Vibes") {
		t.Fatalf("generated = %q", fm.lastText(t))
	}
}

func TestStudioMutateNeedsHistory(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/studio"))

	send(t, h, callback(testUser, 1, cb(testUser, "mutate", string(forge.MutationViral))))
	if got := fm.answers[len(fm.answers)-1]; got != "Generate a prompt first." {
		t.Fatalf("answer = %q", got)
	}

	send(t, h, callback(testUser, 1, cb(testUser, "generate")))
	send(t, h, callback(testUser, 1, cb(testUser, "mutate", string(forge.MutationViral))))
	last, _ := h.sessions.Last(testUser)
	if last.Kind != session.KindMutate || !strings.HasSuffix(last.Prompt.Style, "earworm melody") {
		t.Fatalf("last = %+v", last)
	}
}

func TestStudioRejectsOtherUsers(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/studio"))
	edits := len(fm.edits)

	send(t, h, callback(testUser+1, 1, cb(testUser, "genre", "metal")))
	if got := fm.answers[len(fm.answers)-1]; got != "This menu is not yours." {
		t.Fatalf("answer = %q", got)
	}
	if h.studio.Get(testChat, testUser).Genre == "metal" {
		t.Fatal("foreign callback changed state")
	}
	if len(fm.edits) != edits {
		t.Fatal("foreign callback re-rendered the menu")
	}
}

func TestStudioResetAndForeignPrefix(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/studio metal"))
	send(t, h, callback(testUser, 1, cb(testUser, "reset")))
	if st := h.studio.Get(testChat, testUser); st.Genre != "pop" || st.MessageID != 1 {
		t.Fatalf("state after reset = %+v", st)
	}

	answers := len(fm.answers)
	send(t, h, callback(testUser, 1, "pv:7:reset"))
	if len(fm.answers) != answers {
		t.Fatal("answered a callback with another prefix")
	}
}

func TestCancelStopsAwaitingTheme(t *testing.T) {
	h, _ := newTestHandler()
	send(t, h, command("/studio"))
	send(t, h, callback(testUser, 1, cb(testUser, "theme")))
	send(t, h, command("/cancel"))
	if h.studio.AwaitingTheme(testChat, testUser) {
		t.Fatal("still awaiting theme")
	}
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	var owner int64 = 1<<62 - 1
	for _, kb := range []telegram.Keyboard{
		mainKeyboard(owner, studio.UIState{Genre: "hip hop", Energy: forge.EnergyVeryHigh}),
		genreKeyboard(owner, studio.UIState{}),
		moodKeyboard(owner, studio.UIState{}),
		energyKeyboard(owner, studio.UIState{}),
		mutateKeyboard(owner),
	} {
		for data := range buttons(kb) {
			if len(data) > 64 {
				t.Errorf("callback data %q is %d bytes", data, len(data))
			}
		}
	}
}
