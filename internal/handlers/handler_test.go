package handlers

import (
	"context"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"suno-forge/internal/forge"
	"suno-forge/internal/mediagroup"
	"suno-forge/internal/session"
	"suno-forge/internal/studio"
	"suno-forge/internal/telegram"
)

type sentKeyboard struct {
	chatID int64
	msgID  int
	text   string
	kb     telegram.Keyboard
}

type fakeMessenger struct {
	mu        sync.Mutex
	texts     []string
	keyboards []sentKeyboard
	edits     []sentKeyboard
	answers   []string
	typing    int
	nextMsgID int
}

func (f *fakeMessenger) SendTyping(int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
}

func (f *fakeMessenger) SendText(_ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendTextWithKeyboard(chatID int64, text string, kb telegram.Keyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsgID++
	f.keyboards = append(f.keyboards, sentKeyboard{chatID: chatID, msgID: f.nextMsgID, text: text, kb: kb})
	return f.nextMsgID, nil
}

func (f *fakeMessenger) EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentKeyboard{chatID: chatID, msgID: messageID, text: text, kb: kb})
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ string, text string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		t.Fatal("nothing sent")
	}
	return f.texts[len(f.texts)-1]
}

const (
	testChat int64 = 100
	testUser int64 = 7
)

func newTestHandler() (*Handler, *fakeMessenger) {
	fm := &fakeMessenger{}
	h := New(Options{
		Telegram:     fm,
		Sessions:     session.NewStore(session.Options{MaxEntries: 10}),
		Studio:       studio.NewStore(),
		BatchWorkers: 2,
	})
	return h, fm
}

func command(text string) telegram.Update {
	name, _, _ := strings.Cut(text, " ")
	msg := message(text)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}}
	return tgbotapi.Update{Message: msg}
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: testUser, UserName: "tester"},
		Chat:      &tgbotapi.Chat{ID: testChat},
		Text:      text,
	}
}

func send(t *testing.T, h *Handler, u telegram.Update) {
	t.Helper()
	if err := h.HandleUpdate(context.Background(), u); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
}

func TestStartAndHelp(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/start"))
	if !strings.Contains(fm.lastText(t), "/generate") {
		t.Fatalf("start text = %q", fm.lastText(t))
	}
	send(t, h, command("/help@forge_bot"))
	if len(fm.texts) != 2 {
		t.Fatalf("sent %d texts", len(fm.texts))
	}
}

func TestGenerateCommand(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/generate genre=synthwave mood=retro 118bpm neon highways"))

	out := fm.lastText(t)
	for _, want := range []string{"Synthwave - Retro", "118 BPM", "Style:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	last, ok := h.sessions.Last(testUser)
	if !ok || last.Kind != session.KindGenerate || !strings.HasPrefix(last.Prompt.Style, "synthwave, retro, 118 BPM") {
		t.Fatalf("history = %+v, %v", last, ok)
	}
	if fm.typing == 0 {
		t.Fatal("no typing action")
	}
}

func TestGenerateRejectsOutOfRange(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/generate bpm=500"))
	if fm.lastText(t) != msgInvalid {
		t.Fatalf("got %q", fm.lastText(t))
	}
	if _, ok := h.sessions.Last(testUser); ok {
		t.Fatal("invalid prompt stored")
	}
}

func TestBatchCommand(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"/batch", defaultChatBatch},
		{"/batch 4 genre=trap", 4},
		{"/batch 99 trap", maxChatBatch},
		{"/batch -3", 1},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			h, fm := newTestHandler()
			send(t, h, command(tc.text))
			if got := len(h.sessions.Snapshot(testUser, "")); got != tc.want {
				t.Fatalf("stored %d prompts, want %d\n%s", got, tc.want, fm.lastText(t))
			}
		})
	}
}

func TestMutateUsesLastPrompt(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/mutate"))
	if !strings.Contains(fm.lastText(t), "tempo-shift-up") {
		t.Fatalf("listing = %q", fm.lastText(t))
	}

	send(t, h, command("/mutate viral"))
	if fm.lastText(t) != msgNoPrompt {
		t.Fatalf("got %q", fm.lastText(t))
	}

	send(t, h, command("/generate genre=pop 100bpm"))
	send(t, h, command("/mutate tempo-shift-up"))
	last, _ := h.sessions.Last(testUser)
	if last.Kind != session.KindMutate || !strings.Contains(last.Prompt.Style, "120 BPM") {
		t.Fatalf("last = %+v", last)
	}
	if last.Prompt.Title != "Pop - Vibes" {
		t.Fatalf("title not carried over: %q", last.Prompt.Title)
	}
}

func TestMutateExplicitPrompt(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/mutate mood-invert happy pop song"))
	if !strings.HasSuffix(fm.lastText(t), "melancholic pop song") {
		t.Fatalf("got %q", fm.lastText(t))
	}

	send(t, h, command("/mutate remix pop"))
	if !strings.HasPrefix(fm.lastText(t), "❌ Unknown mutation type") {
		t.Fatalf("got %q", fm.lastText(t))
	}
}

func TestTextIntentMutatesLast(t *testing.T) {
	h, _ := newTestHandler()
	send(t, h, tgbotapi.Update{Message: message("genre=rock 150bpm")})

	send(t, h, tgbotapi.Update{Message: message("make it slower")})
	last, _ := h.sessions.Last(testUser)
	if last.Kind != session.KindMutate || !strings.Contains(last.Prompt.Style, "130 BPM") {
		t.Fatalf("last = %+v", last)
	}
}

func TestVisionCommandAndPhoto(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/vision a quiet forest path"))
	if !strings.HasPrefix(fm.lastText(t), "👁 Genre: folk, mood: earthy") {
		t.Fatalf("got %q", fm.lastText(t))
	}

	photo := message("")
	photo.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}}
	send(t, h, tgbotapi.Update{Message: photo})
	if fm.lastText(t) != msgNeedCaption {
		t.Fatalf("got %q", fm.lastText(t))
	}

	photo.Caption = "city lights at night"
	send(t, h, tgbotapi.Update{Message: photo})
	last, _ := h.sessions.Last(testUser)
	if last.Kind != session.KindVision {
		t.Fatalf("last kind = %q", last.Kind)
	}
}

func TestAlbumGoesThroughAggregator(t *testing.T) {
	h, _ := newTestHandler()
	ag := mediagroup.New(mediagroup.Options{Debounce: 1 << 40})
	defer ag.Close()
	h.SetMediaGroupAggregator(ag)

	for _, id := range []string{"a", "b"} {
		m := message("")
		m.MediaGroupID = "album"
		m.Photo = []tgbotapi.PhotoSize{{FileID: id}}
		send(t, h, tgbotapi.Update{Message: m})
	}
	if n := ag.Pending(); n != 1 {
		t.Fatalf("pending = %d", n)
	}
}

func TestHandleMediaGroup(t *testing.T) {
	h, fm := newTestHandler()
	h.HandleMediaGroup(context.Background(), mediagroup.Group{ChatID: testChat, UserID: testUser, Captions: []string{"ocean waves", "ocean waves"}})
	if !strings.HasPrefix(fm.lastText(t), "👁 Genre: ambient, mood: peaceful") {
		t.Fatalf("got %q", fm.lastText(t))
	}
	last, ok := h.sessions.Last(testUser)
	if !ok || last.Kind != session.KindVision {
		t.Fatalf("last = %+v, %v", last, ok)
	}

	h.HandleMediaGroup(context.Background(), mediagroup.Group{ChatID: testChat, UserID: testUser})
	if fm.lastText(t) != msgNeedCaption {
		t.Fatalf("got %q", fm.lastText(t))
	}
}

func TestLyricsCommand(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/lyrics trap city nights"))
	out := fm.lastText(t)
	if !strings.Contains(out, "[Intro]") || !strings.Contains(out, "city nights") {
		t.Fatalf("got %q", out)
	}
}

func TestPackCommands(t *testing.T) {
	h, fm := newTestHandler()

	send(t, h, command("/packs"))
	for _, p := range forge.PromptPacks() {
		if !strings.Contains(fm.lastText(t), p.ID) {
			t.Errorf("listing lacks %q", p.ID)
		}
	}

	send(t, h, command("/pack trap-banger"))
	if !strings.HasPrefix(fm.lastText(t), "📦 Modern Trap Banger") {
		t.Fatalf("got %q", fm.lastText(t))
	}
	last, _ := h.sessions.Last(testUser)
	if last.Kind != session.KindPack || !strings.Contains(last.Prompt.Style, "75 BPM") {
		t.Fatalf("last = %+v", last)
	}

	send(t, h, command("/pack nope"))
	if !strings.HasPrefix(fm.lastText(t), "❌ Unknown pack") {
		t.Fatalf("got %q", fm.lastText(t))
	}

	send(t, h, command("/pack"))
	if !strings.HasPrefix(fm.lastText(t), "📦 ") {
		t.Fatalf("random pack: %q", fm.lastText(t))
	}
}

func TestHistoryAndClear(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/history"))
	if !strings.HasPrefix(fm.lastText(t), "🗂 No prompts") {
		t.Fatalf("got %q", fm.lastText(t))
	}

	send(t, h, command("/generate title=First jazz"))
	send(t, h, command("/history"))
	if !strings.Contains(fm.lastText(t), "[generate]") || !strings.Contains(fm.lastText(t), "First") {
		t.Fatalf("got %q", fm.lastText(t))
	}

	send(t, h, command("/clear"))
	if _, ok := h.sessions.Last(testUser); ok {
		t.Fatal("history not cleared")
	}
}

func TestUnknownCommand(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, command("/dance"))
	if !strings.HasPrefix(fm.lastText(t), "❌ Unknown command") {
		t.Fatalf("got %q", fm.lastText(t))
	}
}

func TestIgnoresUpdatesWithoutSender(t *testing.T) {
	h, fm := newTestHandler()
	send(t, h, tgbotapi.Update{})
	send(t, h, tgbotapi.Update{Message: &tgbotapi.Message{Text: "hi", Chat: &tgbotapi.Chat{ID: 1}}})
	if len(fm.texts) != 0 {
		t.Fatalf("sent %q", fm.texts)
	}
}
