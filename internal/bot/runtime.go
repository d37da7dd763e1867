package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harryxc515/AikoBot/internal/telegram"
	"github.com/harryxc515/AikoBot/internal/worker"
)

// chatJob is one conversational message bound for the model.
type chatJob struct {
	ChatID       int64
	UserID       int64
	ChatType     string
	Text         string
	IsReplyToBot bool
}

// Run long-polls for updates until ctx is cancelled. Commands are handled
// inline on the poll loop; conversational messages go to per-chat workers
// so one slow model call never stalls other chats.
func (b *Bot) Run(ctx context.Context) error {
	// getMe retry loop: the bot is useless without its own identity.
	for {
		me, err := b.api.GetMe(ctx)
		if err == nil {
			b.botUser = me.Username
			b.botID = me.ID
			break
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			b.logger.Info("bot_stop", "reason", "context_canceled")
			return nil
		}
		b.logger.Warn("telegram_get_me_error", "error", err.Error())
		select {
		case <-ctx.Done():
			b.logger.Info("bot_stop", "reason", "context_canceled")
			return nil
		case <-time.After(2 * time.Second):
		}
	}

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	pool := worker.NewPool[chatJob](workersCtx, b.cfg.MaxConcurrency)

	var (
		mu      sync.Mutex
		workers = make(map[int64]chan chatJob)
	)
	jobsFor := func(chatID int64) chan chatJob {
		mu.Lock()
		defer mu.Unlock()
		if jobs, ok := workers[chatID]; ok {
			return jobs
		}
		jobs := make(chan chatJob, 16)
		workers[chatID] = jobs
		pool.Run(jobs, func(workerCtx context.Context, job chatJob) {
			taskCtx, cancel := context.WithTimeout(workerCtx, b.cfg.TaskTimeout)
			defer cancel()
			b.handleChat(taskCtx, job.ChatID, job.UserID, job.ChatType, job.Text, job.IsReplyToBot)
		})
		return jobs
	}

	b.logger.Info("bot_start",
		"bot_username", b.botUser,
		"bot_id", b.botID,
		"poll_timeout", b.cfg.PollTimeout.String(),
		"task_timeout", b.cfg.TaskTimeout.String(),
		"max_concurrency", b.cfg.MaxConcurrency,
		"memory_limit", b.cfg.MemoryLimit,
		"group_reply_only_tag", b.cfg.GroupReplyOnlyTag,
	)

	var offset int64
	for {
		updates, nextOffset, err := b.api.GetUpdates(ctx, offset, b.cfg.PollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				b.logger.Info("bot_stop", "reason", "context_canceled")
				return nil
			}
			if telegram.IsPollTimeout(err) {
				b.logger.Debug("telegram_get_updates_timeout", "error", err.Error())
			} else {
				b.logger.Warn("telegram_get_updates_error", "error", err.Error())
			}
			time.Sleep(1 * time.Second)
			continue
		}
		offset = nextOffset

		for i := range updates {
			b.handleUpdate(ctx, pool, jobsFor, &updates[i])
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, pool *worker.Pool[chatJob], jobsFor func(int64) chan chatJob, u *telegram.Update) {
	if u.CallbackQuery != nil {
		b.handleCallback(ctx, u.CallbackQuery)
		return
	}

	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg == nil || msg.Chat == nil {
		return
	}

	// Every observed chat is registered so /broadcast can reach it.
	if err := b.store.SaveChat(ctx, msg.Chat.ID, msg.Chat.Title); err != nil {
		b.logger.Warn("save_chat_error", "chat_id", msg.Chat.ID, "error", err.Error())
	}

	if len(msg.NewChatMembers) > 0 {
		b.handleNewMembers(ctx, msg)
		return
	}

	if msg.Text == "" || msg.From == nil || msg.From.IsBot {
		return
	}

	if cmd, ok := ParseCommand(msg.Text, b.botUser); ok {
		if b.handleCommand(ctx, msg, cmd) {
			return
		}
		// Unknown command falls through to the conversational handler.
	}

	job := chatJob{
		ChatID:       msg.Chat.ID,
		UserID:       msg.From.ID,
		ChatType:     msg.Chat.Type,
		Text:         msg.Text,
		IsReplyToBot: msg.ReplyTo != nil && msg.ReplyTo.From != nil && msg.ReplyTo.From.ID == b.botID,
	}
	if err := pool.Enqueue(ctx, jobsFor(msg.Chat.ID), job); err != nil {
		b.logger.Warn("chat_enqueue_error", "chat_id", msg.Chat.ID, "error", err.Error())
	}
}
