package bot

import (
	"context"
	"strings"

	"github.com/harryxc515/AikoBot/internal/session"
	"github.com/harryxc515/AikoBot/llm"
)

const systemPrompt = `You are a helpful Telegram assistant.
Rules:
- Reply fast, short, smart.
- Mirror the user's language.
- No "thinking..." filler.
- Be friendly and helpful.`

const (
	replyNoContent = "No reply."
	replyLLMFailed = "Something went wrong, please try again."
)

// handleChat is the default conversational path. Gating order: chat
// enabled, group mention requirement, anti-spam. Session memory is only
// mutated after a successful model exchange.
func (b *Bot) handleChat(ctx context.Context, chatID, userID int64, chatType, text string, isReplyToBot bool) {
	settings, err := b.store.ChatSettings(ctx, chatID)
	if err != nil {
		b.logger.Warn("chat_settings_error", "chat_id", chatID, "error", err.Error())
		return
	}
	if !settings.Enabled {
		return
	}

	if chatType != "private" && b.cfg.GroupReplyOnlyTag {
		tag := "@" + b.botUser
		if !strings.Contains(text, tag) && !isReplyToBot {
			return
		}
	}

	blocked, err := b.gate.Check(ctx, chatID, userID, text)
	if err != nil {
		b.logger.Warn("antispam_check_error", "chat_id", chatID, "user_id", userID, "error", err.Error())
	}
	if blocked {
		b.logger.Info("antispam_blocked", "chat_id", chatID, "user_id", userID)
		return
	}

	history := b.memory.Recent(chatID, userID, b.cfg.MemoryLimit)
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: session.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: session.RoleUser, Content: text})

	res, err := b.llm.Chat(ctx, llm.Request{
		Model:       b.cfg.Model,
		Messages:    messages,
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
	})
	if err != nil {
		b.logger.Warn("llm_chat_error", "chat_id", chatID, "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, replyLLMFailed, nil)
		return
	}

	// A 2xx response with no usable content is still a completed exchange:
	// the fallback text becomes the assistant turn.
	answer := strings.TrimSpace(res.Text)
	if answer == "" {
		answer = replyNoContent
	}

	b.memory.Append(chatID, userID,
		session.Turn{Role: session.RoleUser, Content: text},
		session.Turn{Role: session.RoleAssistant, Content: answer},
	)
	b.reply(ctx, chatID, answer, nil)
	b.logger.Debug("chat_exchange_done",
		"chat_id", chatID,
		"user_id", userID,
		"input_tokens", res.Usage.InputTokens,
		"output_tokens", res.Usage.OutputTokens,
		"duration", res.Duration.String(),
	)
}
