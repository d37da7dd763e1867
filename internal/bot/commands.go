package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/harryxc515/AikoBot/internal/telegram"
)

const (
	replyDenied       = "Only the owner or a sudo user can use this."
	replyGroupsOnly   = "This command works only in groups."
	replyNeedAdmin    = "Make me an admin first."
	replyNeedDelete   = "Give me the delete messages permission first."
	maxPurgeCount     = 50
	defaultPurgeCount = 10
)

// handleCommand dispatches a parsed command. Returns false when the command
// is unknown, so the caller can fall through to the conversational handler.
func (b *Bot) handleCommand(ctx context.Context, msg *telegram.Message, cmd Command) bool {
	switch cmd.Name {
	case "start":
		b.cmdStart(ctx, msg)
	case "status":
		b.cmdStatus(ctx, msg)
	case "on":
		b.cmdSetEnabled(ctx, msg, true)
	case "off":
		b.cmdSetEnabled(ctx, msg, false)
	case "setwelcome":
		b.cmdSetWelcome(ctx, msg, cmd)
	case "broadcast":
		b.cmdBroadcast(ctx, msg, cmd)
	case "ban":
		b.cmdBan(ctx, msg)
	case "unban":
		b.cmdUnban(ctx, msg, cmd)
	case "kick":
		b.cmdKick(ctx, msg)
	case "pin":
		b.cmdPin(ctx, msg)
	case "unpin":
		b.cmdUnpin(ctx, msg)
	case "purge":
		b.cmdPurge(ctx, msg, cmd)
	default:
		return false
	}
	return true
}

// authorize gates a privileged command; on failure it replies and reports
// false so the handler performs no state change.
func (b *Bot) authorize(ctx context.Context, msg *telegram.Message) bool {
	if msg.From != nil && b.policy.IsOwnerOrSudo(msg.From.ID) {
		return true
	}
	b.reply(ctx, msg.Chat.ID, replyDenied, nil)
	return false
}

func (b *Bot) requireGroup(ctx context.Context, msg *telegram.Message) bool {
	if telegram.IsGroup(msg.Chat.Type) {
		return true
	}
	b.reply(ctx, msg.Chat.ID, replyGroupsOnly, nil)
	return false
}

// botIsAdmin checks the bot's own membership status in the chat.
func (b *Bot) botIsAdmin(ctx context.Context, chatID int64) bool {
	m, err := b.api.GetChatMember(ctx, chatID, b.botID)
	if err != nil {
		b.logger.Warn("get_chat_member_error", "chat_id", chatID, "error", err.Error())
		return false
	}
	return m.Status == "administrator" || m.Status == "creator"
}

func (b *Bot) botCanDelete(ctx context.Context, chatID int64) bool {
	m, err := b.api.GetChatMember(ctx, chatID, b.botID)
	if err != nil {
		b.logger.Warn("get_chat_member_error", "chat_id", chatID, "error", err.Error())
		return false
	}
	return m.CanDeleteMessages || m.Status == "creator"
}

// targetUser resolves the user a moderation command acts on, via the
// reply-chain anchor.
func targetUser(msg *telegram.Message) *telegram.User {
	if msg.ReplyTo == nil {
		return nil
	}
	return msg.ReplyTo.From
}

func (b *Bot) cmdStart(ctx context.Context, msg *telegram.Message) {
	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "Owner", URL: fmt.Sprintf("tg://user?id=%d", b.policy.OwnerID())},
			{Text: "Support", CallbackData: "SUPPORT"},
		}},
	}
	b.reply(ctx, msg.Chat.ID,
		"AI bot online.\n\nType anything to chat.\nIn groups: tag me or reply to me.",
		&telegram.SendOptions{ReplyMarkup: markup})
}

func (b *Bot) cmdStatus(ctx context.Context, msg *telegram.Message) {
	settings, err := b.store.ChatSettings(ctx, msg.Chat.ID)
	if err != nil {
		b.logger.Warn("chat_settings_error", "chat_id", msg.Chat.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Could not load chat settings.", nil)
		return
	}
	title := msg.Chat.Title
	if title == "" {
		title = "Private"
	}
	sudo := make([]string, 0)
	for _, id := range b.policy.SudoIDs() {
		sudo = append(sudo, strconv.FormatInt(id, 10))
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"Bot status\n\nEnabled: %v\nChat: %s\nOwner: %d\nSudo: %s",
		settings.Enabled, title, b.policy.OwnerID(), strings.Join(sudo, ", ")), nil)
}

func (b *Bot) cmdSetEnabled(ctx context.Context, msg *telegram.Message, enabled bool) {
	if !b.authorize(ctx, msg) {
		return
	}
	if err := b.store.SetChatEnabled(ctx, msg.Chat.ID, enabled); err != nil {
		b.logger.Warn("set_chat_enabled_error", "chat_id", msg.Chat.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Could not update chat settings.", nil)
		return
	}
	if enabled {
		b.reply(ctx, msg.Chat.ID, "Bot enabled in this chat.", nil)
	} else {
		b.reply(ctx, msg.Chat.ID, "Bot disabled in this chat.", nil)
	}
}

func (b *Bot) cmdSetWelcome(ctx context.Context, msg *telegram.Message, cmd Command) {
	if !b.authorize(ctx, msg) {
		return
	}
	if !b.requireGroup(ctx, msg) {
		return
	}
	if cmd.ArgText == "" {
		b.reply(ctx, msg.Chat.ID,
			"Usage:\n/setwelcome Welcome {name}\n\nTags:\n{name} = user name\n{chat} = group name", nil)
		return
	}
	if err := b.store.SetWelcome(ctx, msg.Chat.ID, cmd.ArgText); err != nil {
		b.logger.Warn("set_welcome_error", "chat_id", msg.Chat.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Could not save the welcome message.", nil)
		return
	}
	b.reply(ctx, msg.Chat.ID, "Welcome message saved.", nil)
}

func (b *Bot) cmdBroadcast(ctx context.Context, msg *telegram.Message, cmd Command) {
	if !b.authorize(ctx, msg) {
		return
	}
	if cmd.ArgText == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: /broadcast your message", nil)
		return
	}

	chats, err := b.store.AllChats(ctx)
	if err != nil {
		b.logger.Warn("all_chats_error", "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Could not load the chat registry.", nil)
		return
	}
	if len(chats) == 0 {
		b.reply(ctx, msg.Chat.ID, "No chats registered.", nil)
		return
	}

	broadcastID := uuid.NewString()
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Broadcasting to %d chats...", len(chats)), nil)
	b.logger.Info("broadcast_start", "broadcast_id", broadcastID, "chats", len(chats))

	sent := 0
	failed := 0
	for _, c := range chats {
		if err := b.api.SendMessage(ctx, c.ID, "Broadcast:\n\n"+cmd.ArgText, nil); err != nil {
			failed++
			b.logger.Warn("broadcast_send_error", "broadcast_id", broadcastID, "chat_id", c.ID, "error", err.Error())
			continue
		}
		sent++
	}

	summary := fmt.Sprintf("Broadcast done.\nSent: %d\nFailed: %d", sent, failed)
	b.reply(ctx, msg.Chat.ID, summary, nil)
	b.logToChannel(ctx, summary)
	b.logger.Info("broadcast_done", "broadcast_id", broadcastID, "sent", sent, "failed", failed)
}

func (b *Bot) cmdBan(ctx context.Context, msg *telegram.Message) {
	if !b.authorize(ctx, msg) {
		return
	}
	if !b.requireGroup(ctx, msg) {
		return
	}
	user := targetUser(msg)
	if user == nil {
		b.reply(ctx, msg.Chat.ID, "Reply to a user's message to ban.", nil)
		return
	}
	if !b.botIsAdmin(ctx, msg.Chat.ID) {
		b.reply(ctx, msg.Chat.ID, replyNeedAdmin, nil)
		return
	}
	if err := b.api.BanChatMember(ctx, msg.Chat.ID, user.ID); err != nil {
		b.logger.Warn("ban_error", "chat_id", msg.Chat.ID, "user_id", user.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Ban failed.", nil)
		return
	}
	b.reply(ctx, msg.Chat.ID, "Banned: "+telegram.DisplayName(user), nil)
	b.logToChannel(ctx, fmt.Sprintf("Banned user %d in chat %d", user.ID, msg.Chat.ID))
}

func (b *Bot) cmdUnban(ctx context.Context, msg *telegram.Message, cmd Command) {
	if !b.authorize(ctx, msg) {
		return
	}
	if !b.requireGroup(ctx, msg) {
		return
	}
	if !b.botIsAdmin(ctx, msg.Chat.ID) {
		b.reply(ctx, msg.Chat.ID, replyNeedAdmin, nil)
		return
	}

	var userID int64
	if user := targetUser(msg); user != nil {
		userID = user.ID
	} else if len(cmd.Args) > 0 {
		userID, _ = strconv.ParseInt(cmd.Args[0], 10, 64)
	}
	if userID == 0 {
		b.reply(ctx, msg.Chat.ID, "Use: /unban (reply to a user) or /unban user_id", nil)
		return
	}

	if err := b.api.UnbanChatMember(ctx, msg.Chat.ID, userID); err != nil {
		b.logger.Warn("unban_error", "chat_id", msg.Chat.ID, "user_id", userID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Unban failed.", nil)
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Unbanned: %d", userID), nil)
}

func (b *Bot) cmdKick(ctx context.Context, msg *telegram.Message) {
	if !b.authorize(ctx, msg) {
		return
	}
	if !b.requireGroup(ctx, msg) {
		return
	}
	user := targetUser(msg)
	if user == nil {
		b.reply(ctx, msg.Chat.ID, "Reply to a user's message to kick.", nil)
		return
	}
	if !b.botIsAdmin(ctx, msg.Chat.ID) {
		b.reply(ctx, msg.Chat.ID, replyNeedAdmin, nil)
		return
	}
	// Ban then unban removes the user without blocking a rejoin.
	if err := b.api.BanChatMember(ctx, msg.Chat.ID, user.ID); err != nil {
		b.logger.Warn("kick_error", "chat_id", msg.Chat.ID, "user_id", user.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Kick failed.", nil)
		return
	}
	if err := b.api.UnbanChatMember(ctx, msg.Chat.ID, user.ID); err != nil {
		b.logger.Warn("kick_unban_error", "chat_id", msg.Chat.ID, "user_id", user.ID, "error", err.Error())
	}
	b.reply(ctx, msg.Chat.ID, "Kicked: "+telegram.DisplayName(user), nil)
	b.logToChannel(ctx, fmt.Sprintf("Kicked user %d from chat %d", user.ID, msg.Chat.ID))
}

func (b *Bot) cmdPin(ctx context.Context, msg *telegram.Message) {
	if !b.authorize(ctx, msg) {
		return
	}
	if !b.requireGroup(ctx, msg) {
		return
	}
	if msg.ReplyTo == nil {
		b.reply(ctx, msg.Chat.ID, "Reply to a message to pin it.", nil)
		return
	}
	if !b.botIsAdmin(ctx, msg.Chat.ID) {
		b.reply(ctx, msg.Chat.ID, replyNeedAdmin, nil)
		return
	}
	if err := b.api.PinChatMessage(ctx, msg.Chat.ID, msg.ReplyTo.MessageID); err != nil {
		b.logger.Warn("pin_error", "chat_id", msg.Chat.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Pin failed.", nil)
		return
	}
	b.reply(ctx, msg.Chat.ID, "Pinned.", nil)
}

func (b *Bot) cmdUnpin(ctx context.Context, msg *telegram.Message) {
	if !b.authorize(ctx, msg) {
		return
	}
	if !b.requireGroup(ctx, msg) {
		return
	}
	if !b.botIsAdmin(ctx, msg.Chat.ID) {
		b.reply(ctx, msg.Chat.ID, replyNeedAdmin, nil)
		return
	}
	if err := b.api.UnpinChatMessage(ctx, msg.Chat.ID); err != nil {
		b.logger.Warn("unpin_error", "chat_id", msg.Chat.ID, "error", err.Error())
		b.reply(ctx, msg.Chat.ID, "Unpin failed.", nil)
		return
	}
	b.reply(ctx, msg.Chat.ID, "Unpinned.", nil)
}

// cmdPurge deletes up to min(n, 50) messages counting backward from the
// replied-to anchor. Message IDs are assumed contiguous below the anchor;
// that is a best-effort heuristic, so per-message failures are tolerated
// and only the successful deletions are counted.
func (b *Bot) cmdPurge(ctx context.Context, msg *telegram.Message, cmd Command) {
	if !b.authorize(ctx, msg) {
		return
	}
	if !b.requireGroup(ctx, msg) {
		return
	}
	if !b.botCanDelete(ctx, msg.Chat.ID) {
		b.reply(ctx, msg.Chat.ID, replyNeedDelete, nil)
		return
	}

	count := defaultPurgeCount
	if len(cmd.Args) > 0 {
		if n, err := strconv.Atoi(cmd.Args[0]); err == nil && n > 0 {
			count = n
		}
	}
	if count > maxPurgeCount {
		count = maxPurgeCount
	}

	if msg.ReplyTo == nil {
		b.reply(ctx, msg.Chat.ID, "Reply to a message, then use: /purge 10", nil)
		return
	}
	anchor := msg.ReplyTo.MessageID

	deleted := 0
	for i := 0; i < count; i++ {
		if err := b.api.DeleteMessage(ctx, msg.Chat.ID, anchor-int64(i)); err != nil {
			continue
		}
		deleted++
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Purge done.\nDeleted: %d", deleted), nil)
	b.logToChannel(ctx, fmt.Sprintf("Purged %d messages in chat %d", deleted, msg.Chat.ID))
}

// handleCallback answers inline-keyboard callbacks; only SUPPORT exists.
func (b *Bot) handleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	if err := b.api.AnswerCallbackQuery(ctx, q.ID); err != nil {
		b.logger.Warn("answer_callback_error", "error", err.Error())
	}
	if q.Data != "SUPPORT" || q.Message == nil || q.Message.Chat == nil {
		return
	}
	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "Contact Owner", URL: fmt.Sprintf("tg://user?id=%d", b.policy.OwnerID())},
		}},
	}
	b.reply(ctx, q.Message.Chat.ID,
		fmt.Sprintf("%s\nOwner: %d", b.cfg.SupportText, b.policy.OwnerID()),
		&telegram.SendOptions{ReplyMarkup: markup})
}
