// Package bot wires the Telegram transport, the completion service, the
// settings store and the session memory into the command router and the
// conversational handler.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/harryxc515/AikoBot/internal/antispam"
	"github.com/harryxc515/AikoBot/internal/authz"
	"github.com/harryxc515/AikoBot/internal/session"
	"github.com/harryxc515/AikoBot/internal/store"
	"github.com/harryxc515/AikoBot/internal/telegram"
	"github.com/harryxc515/AikoBot/llm"
)

// Transport is the subset of the Bot API the bot performs. *telegram.Client
// implements it; tests substitute a recorder.
type Transport interface {
	GetMe(ctx context.Context) (*telegram.User, error)
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, int64, error)
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) error
	BanChatMember(ctx context.Context, chatID, userID int64) error
	UnbanChatMember(ctx context.Context, chatID, userID int64) error
	PinChatMessage(ctx context.Context, chatID, messageID int64) error
	UnpinChatMessage(ctx context.Context, chatID int64) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error)
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

// SettingsStore is the persistence boundary: per-chat settings plus the
// broadcast registry.
type SettingsStore interface {
	ChatSettings(ctx context.Context, chatID int64) (store.Settings, error)
	SetChatEnabled(ctx context.Context, chatID int64, enabled bool) error
	SetWelcome(ctx context.Context, chatID int64, text string) error
	Welcome(ctx context.Context, chatID int64) (string, error)
	SaveChat(ctx context.Context, chatID int64, title string) error
	AllChats(ctx context.Context) ([]store.Chat, error)
}

type Config struct {
	Model             string
	Temperature       float64
	MaxTokens         int
	MemoryLimit       int
	GroupReplyOnlyTag bool
	SupportText       string
	LogChannelID      int64

	PollTimeout    time.Duration
	TaskTimeout    time.Duration
	MaxConcurrency int
}

type Deps struct {
	Logger   *slog.Logger
	API      Transport
	LLM      llm.Client
	Store    SettingsStore
	Policy   *authz.Policy
	Memory   *session.Memory
	SpamGate antispam.Gate
}

type Bot struct {
	cfg    Config
	logger *slog.Logger
	api    Transport
	llm    llm.Client
	store  SettingsStore
	policy *authz.Policy
	memory *session.Memory
	gate   antispam.Gate

	// Bot identity, filled in by the runtime's getMe loop.
	botUser string
	botID   int64
}

func New(d Deps, cfg Config) *Bot {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 90 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if cfg.MemoryLimit <= 0 {
		cfg.MemoryLimit = 12
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gate := d.SpamGate
	if gate == nil {
		gate = antispam.Nop{}
	}
	return &Bot{
		cfg:    cfg,
		logger: logger,
		api:    d.API,
		llm:    d.LLM,
		store:  d.Store,
		policy: d.Policy,
		memory: d.Memory,
		gate:   gate,
	}
}

// reply answers in the same chat; send failures are logged, never fatal.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) {
	if err := b.api.SendMessage(ctx, chatID, text, opts); err != nil {
		b.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

// logToChannel mirrors an operational event to the configured log channel.
// Best-effort: failures are logged and swallowed.
func (b *Bot) logToChannel(ctx context.Context, text string) {
	if b.cfg.LogChannelID == 0 {
		return
	}
	if err := b.api.SendMessage(ctx, b.cfg.LogChannelID, text, nil); err != nil {
		b.logger.Warn("log_channel_send_error", "chat_id", b.cfg.LogChannelID, "error", err.Error())
	}
}
