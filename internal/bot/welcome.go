package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/harryxc515/AikoBot/internal/telegram"
)

const defaultWelcome = "Welcome {name} to {chat}.\nEnjoy your stay."

// RenderWelcome substitutes every {name} and {chat} occurrence in the
// template.
func RenderWelcome(template, name, chat string) string {
	out := strings.ReplaceAll(template, "{name}", name)
	return strings.ReplaceAll(out, "{chat}", chat)
}

// handleNewMembers greets each joining member with the chat's stored
// template, or the default when none is set.
func (b *Bot) handleNewMembers(ctx context.Context, msg *telegram.Message) {
	if !telegram.IsGroup(msg.Chat.Type) {
		return
	}

	template, err := b.store.Welcome(ctx, msg.Chat.ID)
	if err != nil {
		b.logger.Warn("welcome_load_error", "chat_id", msg.Chat.ID, "error", err.Error())
	}
	if template == "" {
		template = defaultWelcome
	}

	chatTitle := msg.Chat.Title
	if chatTitle == "" {
		chatTitle = "Group"
	}
	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "Owner", URL: fmt.Sprintf("tg://user?id=%d", b.policy.OwnerID())},
		}},
	}

	for i := range msg.NewChatMembers {
		name := msg.NewChatMembers[i].FirstName
		if name == "" {
			name = "User"
		}
		b.reply(ctx, msg.Chat.ID, RenderWelcome(template, name, chatTitle),
			&telegram.SendOptions{ReplyMarkup: markup})
	}
}
