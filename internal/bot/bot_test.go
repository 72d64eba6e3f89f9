package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/cafe-bot/internal/business"
	"github.com/xaenox/cafe-bot/internal/classifier"
	"github.com/xaenox/cafe-bot/internal/loyalty"
	"github.com/xaenox/cafe-bot/internal/session"
	"github.com/xaenox/cafe-bot/internal/storage"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

func (f *fakeAPI) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// fixedRand always lands on the first prize and the minimum award.
type fixedRand struct{}

func (fixedRand) Intn(int) int { return 0 }

func newTestBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	sessions := session.NewManager(
		classifier.NewKeywordResponder(nil),
		storage.NewMemoryStorage(),
		loyalty.NewWheel(fixedRand{}, 0),
		session.Options{StartingPoints: loyalty.StartingPoints},
		zap.NewNop(),
	)
	t.Cleanup(sessions.Close)

	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	b := newBot(api, sessions, business.NewPanel(time.UTC), zap.NewNop())
	b.now = func() time.Time { return time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC) }
	return b, api
}

func command(text string) *tgbotapi.Message {
	name := strings.SplitN(text, " ", 2)[0]
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func text(s string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      s,
	}
}

func TestChatReplyWithSuggestions(t *testing.T) {
	b, api := newTestBot(t)

	b.handleMessage(context.Background(), text("I want to order food"))

	if len(api.requests) != 1 {
		t.Errorf("expected a typing action, got %d requests", len(api.requests))
	}
	reply := api.last()
	if reply.Text != classifier.DefaultRules[2].Text {
		t.Errorf("reply = %q, want the menu reply", reply.Text)
	}
	keyboard, ok := reply.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("reply markup = %T", reply.ReplyMarkup)
	}
	if keyboard.Keyboard[0][0].Text != "Coffee drinks" {
		t.Errorf("first suggestion = %q", keyboard.Keyboard[0][0].Text)
	}
}

func TestChatWithoutStartSeedsGreeting(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, text("Are you open now?"))

	texts := api.texts()
	if len(texts) != 2 || texts[0] != classifier.Greeting.Text {
		t.Fatalf("sent %q, want greeting then reply", texts)
	}

	msgs, err := b.sessions.Get(visitorID(42)).Chat.Transcript(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 || msgs[0].Text != classifier.Greeting.Text || msgs[1].Text != "Are you open now?" {
		t.Errorf("transcript = %+v", msgs)
	}

	b.handleMessage(ctx, text("Menu info"))
	greetings := 0
	for _, s := range api.texts() {
		if s == classifier.Greeting.Text {
			greetings++
		}
	}
	if greetings != 1 {
		t.Errorf("greeting sent %d times, want 1", greetings)
	}
}

func TestChatIgnoresBlankMessage(t *testing.T) {
	b, api := newTestBot(t)
	b.handleMessage(context.Background(), text("   "))
	if n := len(api.texts()); n != 0 {
		t.Errorf("blank message produced %d replies", n)
	}
}

func TestStartSendsGreetingOnce(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command("/start"))
	b.handleMessage(ctx, command("/start"))

	greetings := 0
	for _, s := range api.texts() {
		if s == classifier.Greeting.Text {
			greetings++
		}
	}
	if greetings != 1 {
		t.Errorf("greeting sent %d times, want 1", greetings)
	}
}

func TestMenuFilters(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command("/menu coffee"))
	got := api.last().Text
	if !strings.Contains(got, "Signature Cold Brew") || !strings.Contains(got, "Seasonal Pumpkin Latte") {
		t.Errorf("coffee menu missing items:\n%s", got)
	}
	if strings.Contains(got, "Avocado") {
		t.Errorf("coffee menu contains food:\n%s", got)
	}
	if api.last().ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("ParseMode = %q", api.last().ParseMode)
	}

	b.handleMessage(ctx, command("/tag vegan"))
	got = api.last().Text
	if strings.Contains(got, "Cold Brew") || !strings.Contains(got, "Pumpkin") {
		t.Errorf("coffee+vegan menu:\n%s", got)
	}

	b.handleMessage(ctx, command("/search bowl"))
	if !strings.Contains(api.last().Text, "No items match") {
		t.Errorf("expected empty result:\n%s", api.last().Text)
	}

	b.handleMessage(ctx, command("/clear"))
	got = api.last().Text
	for _, name := range []string{"Cold Brew", "Avocado", "Pumpkin", "Banana", "Quinoa"} {
		if !strings.Contains(got, name) {
			t.Errorf("cleared menu missing %s", name)
		}
	}

	b.handleMessage(ctx, command("/menu pizza"))
	if !strings.HasPrefix(api.last().Text, "Unknown category") {
		t.Errorf("reply = %q", api.last().Text)
	}
}

func TestLikeToggle(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command("/like 3"))
	if got := api.last().Text; !strings.Contains(got, "You liked") || !strings.Contains(got, "157 likes") {
		t.Errorf("like reply = %q", got)
	}
	b.handleMessage(ctx, command("/like 3"))
	if got := api.last().Text; !strings.Contains(got, "unliked") || !strings.Contains(got, "156 likes") {
		t.Errorf("unlike reply = %q", got)
	}
	b.handleMessage(ctx, command("/like 9"))
	if got := api.last().Text; !strings.Contains(got, "no photo") {
		t.Errorf("unknown photo reply = %q", got)
	}
}

func TestSpin(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command("/spin"))
	texts := api.texts()
	if len(texts) != 2 {
		t.Fatalf("sent %v", texts)
	}
	if !strings.Contains(texts[0], "Free Coffee") || !strings.Contains(texts[0], "balance 900") {
		t.Errorf("result = %q", texts[0])
	}

	b.handleMessage(ctx, command("/spin"))
	if got := api.last().Text; !strings.HasPrefix(got, "Come back tomorrow") {
		t.Errorf("second spin reply = %q", got)
	}

	b.handleMessage(ctx, command("/points"))
	if got := api.last().Text; !strings.Contains(got, "900 pts") || !strings.Contains(got, "Come back tomorrow") {
		t.Errorf("points reply = %q", got)
	}
}

func TestUploadValidation(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	pdf := text("")
	pdf.Document = &tgbotapi.Document{FileName: "menu.pdf", MimeType: "application/pdf", FileSize: 1000}
	b.handleMessage(ctx, pdf)
	if got := api.last().Text; !strings.HasPrefix(got, "⚠️ Only image files") {
		t.Errorf("pdf reply = %q", got)
	}

	huge := text("")
	huge.Photo = []tgbotapi.PhotoSize{{FileSize: 100}, {FileSize: 6 * 1024 * 1024}}
	b.handleMessage(ctx, huge)
	if got := api.last().Text; !strings.Contains(got, "5MB or smaller") {
		t.Errorf("large photo reply = %q", got)
	}

	ok := text("")
	ok.Photo = []tgbotapi.PhotoSize{{FileSize: 100}, {FileSize: 200 * 1024}}
	b.handleMessage(ctx, ok)
	if got := api.last().Text; !strings.Contains(got, "Thanks for sharing") || !strings.Contains(got, "865 pts") {
		t.Errorf("photo reply = %q", got)
	}
}

func TestHoursAndHistory(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command("/hours"))
	if got := api.last().Text; !strings.Contains(got, "Open now") || !strings.Contains(got, "123 Artisan Street") {
		t.Errorf("hours reply = %q", got)
	}

	b.handleMessage(ctx, command("/history"))
	if got := api.last().Text; got != "You don't have any messages yet." {
		t.Errorf("empty history reply = %q", got)
	}

	b.handleMessage(ctx, text("what are your hours?"))
	b.handleMessage(ctx, command("/history"))
	got := api.last().Text
	if !strings.Contains(got, "what are your hours?") || !strings.Contains(got, "Café assistant") {
		t.Errorf("history reply = %q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	b, api := newTestBot(t)
	b.handleMessage(context.Background(), command("/dance"))
	if got := api.last().Text; !strings.HasPrefix(got, "Unknown command") {
		t.Errorf("reply = %q", got)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	b, _ := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("$4.50 (gluten-free)!")
	want := `$4\.50 \(gluten\-free\)\!`
	if got != want {
		t.Errorf("escapeMarkdown() = %q, want %q", got, want)
	}
}
