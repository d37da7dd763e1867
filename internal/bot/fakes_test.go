package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/harryxc515/AikoBot/internal/authz"
	"github.com/harryxc515/AikoBot/internal/session"
	"github.com/harryxc515/AikoBot/internal/store"
	"github.com/harryxc515/AikoBot/internal/telegram"
	"github.com/harryxc515/AikoBot/llm"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Opts   *telegram.SendOptions
}

type deleteCall struct {
	ChatID    int64
	MessageID int64
}

// fakeTransport records outbound calls and lets tests script failures.
type fakeTransport struct {
	mu sync.Mutex

	Sent     []sentMessage
	Deleted  []deleteCall
	Banned   []int64
	Unbanned []int64
	Pinned   []int64
	Unpins   int

	Member *telegram.ChatMember

	SendErrFor   map[int64]error // per chat
	DeleteErrFor map[int64]error // per message id
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		Member: &telegram.ChatMember{Status: "administrator", CanDeleteMessages: true},
	}
}

func (f *fakeTransport) GetMe(ctx context.Context) (*telegram.User, error) {
	return &telegram.User{ID: 999, IsBot: true, Username: "aikobot"}, nil
}

func (f *fakeTransport) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, int64, error) {
	return nil, offset, nil
}

func (f *fakeTransport) SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SendErrFor[chatID]; err != nil {
		return err
	}
	f.Sent = append(f.Sent, sentMessage{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

func (f *fakeTransport) BanChatMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Banned = append(f.Banned, userID)
	return nil
}

func (f *fakeTransport) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unbanned = append(f.Unbanned, userID)
	return nil
}

func (f *fakeTransport) PinChatMessage(ctx context.Context, chatID, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pinned = append(f.Pinned, messageID)
	return nil
}

func (f *fakeTransport) UnpinChatMessage(ctx context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unpins++
	return nil
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DeleteErrFor[messageID]; err != nil {
		return err
	}
	f.Deleted = append(f.Deleted, deleteCall{ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *fakeTransport) GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error) {
	if f.Member == nil {
		return nil, errors.New("no member")
	}
	return f.Member, nil
}

func (f *fakeTransport) AnswerCallbackQuery(ctx context.Context, id string) error { return nil }

func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Sent))
	for i, m := range f.Sent {
		out[i] = m.Text
	}
	return out
}

// fakeStore is an in-memory SettingsStore.
type fakeStore struct {
	mu       sync.Mutex
	settings map[int64]store.Settings
	chats    []store.Chat
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: make(map[int64]store.Settings)}
}

func (s *fakeStore) ChatSettings(ctx context.Context, chatID int64) (store.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.settings[chatID]; ok {
		return st, nil
	}
	st := store.Settings{ChatID: chatID, Enabled: true}
	s.settings[chatID] = st
	return st, nil
}

func (s *fakeStore) SetChatEnabled(ctx context.Context, chatID int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.settings[chatID]
	st.ChatID = chatID
	st.Enabled = enabled
	s.settings[chatID] = st
	return nil
}

func (s *fakeStore) SetWelcome(ctx context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[chatID]
	if !ok {
		st = store.Settings{ChatID: chatID, Enabled: true}
	}
	st.WelcomeText = text
	s.settings[chatID] = st
	return nil
}

func (s *fakeStore) Welcome(ctx context.Context, chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings[chatID].WelcomeText, nil
}

func (s *fakeStore) SaveChat(ctx context.Context, chatID int64, title string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats[i].Title = title
			return nil
		}
	}
	s.chats = append(s.chats, store.Chat{ID: chatID, Title: title})
	return nil
}

func (s *fakeStore) AllChats(ctx context.Context) ([]store.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Chat(nil), s.chats...), nil
}

// fakeLLM returns a scripted reply or error and records requests.
type fakeLLM struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Requests []llm.Request
}

func (f *fakeLLM) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()
	if f.Err != nil {
		return llm.Result{}, f.Err
	}
	return llm.Result{Text: f.Reply}, nil
}

type blockingGate struct{ blocked bool }

func (g blockingGate) Check(context.Context, int64, int64, string) (bool, error) {
	return g.blocked, nil
}

func newTestBot(api *fakeTransport, st *fakeStore, model *fakeLLM, cfg Config) *Bot {
	if cfg.Model == "" {
		cfg.Model = "test-model"
	}
	b := New(Deps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		API:    api,
		LLM:    model,
		Store:  st,
		Policy: authz.New(42, []int64{100}),
		Memory: session.NewMemory(),
	}, cfg)
	b.botUser = "aikobot"
	b.botID = 999
	return b
}

func groupMessage(chatID, userID, messageID int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: messageID,
		Chat:      &telegram.Chat{ID: chatID, Type: "supergroup", Title: "Test Group"},
		From:      &telegram.User{ID: userID, FirstName: fmt.Sprintf("U%d", userID)},
		Text:      text,
	}
}
