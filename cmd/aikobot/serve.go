package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harryxc515/AikoBot/internal/antispam"
	"github.com/harryxc515/AikoBot/internal/authz"
	"github.com/harryxc515/AikoBot/internal/bot"
	"github.com/harryxc515/AikoBot/internal/healthz"
	"github.com/harryxc515/AikoBot/internal/logutil"
	"github.com/harryxc515/AikoBot/internal/session"
	"github.com/harryxc515/AikoBot/internal/store"
	"github.com/harryxc515/AikoBot/internal/telegram"
	"github.com/harryxc515/AikoBot/providers/openai"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (long-polls Telegram until interrupted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token (or AIKOBOT_TELEGRAM_BOT_TOKEN).")
	cmd.Flags().String("openai-api-key", "", "Completion service API key (or AIKOBOT_OPENAI_API_KEY).")
	cmd.Flags().Int64("owner-id", 0, "Owner user id.")
	cmd.Flags().Int64Slice("sudo-id", nil, "Sudo user id (repeatable).")
	cmd.Flags().String("db-path", "", "SQLite database path.")
	cmd.Flags().String("health-listen", "", "Health endpoint listen address (empty = off).")
	_ = viper.BindPFlag("telegram.bot_token", cmd.Flags().Lookup("telegram-bot-token"))
	_ = viper.BindPFlag("openai.api_key", cmd.Flags().Lookup("openai-api-key"))
	_ = viper.BindPFlag("owner_id", cmd.Flags().Lookup("owner-id"))
	_ = viper.BindPFlag("sudo_ids", cmd.Flags().Lookup("sudo-id"))
	_ = viper.BindPFlag("db.path", cmd.Flags().Lookup("db-path"))
	_ = viper.BindPFlag("health.listen", cmd.Flags().Lookup("health-listen"))

	return cmd
}

func runServe(parent context.Context) error {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	botToken := strings.TrimSpace(viper.GetString("telegram.bot_token"))
	if botToken == "" {
		return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or %s_TELEGRAM_BOT_TOKEN)", envPrefix)
	}
	apiKey := strings.TrimSpace(viper.GetString("openai.api_key"))
	if apiKey == "" {
		return fmt.Errorf("missing openai.api_key (set via --openai-api-key or %s_OPENAI_API_KEY)", envPrefix)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(viper.GetString("db.path"))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("store_close_error", "error", err.Error())
		}
	}()

	var gate antispam.Gate = antispam.Nop{}
	if viper.GetBool("antispam.enabled") {
		gate = antispam.NewFlood(
			viper.GetDuration("antispam.window"),
			viper.GetInt("antispam.max_messages"),
			st,
		)
	}

	if listen := healthz.NormalizeListen(viper.GetString("health.listen")); listen != "" {
		if _, err := healthz.Start(ctx, logger, listen, "aikobot"); err != nil {
			logger.Warn("health_server_start_error", "addr", listen, "error", err.Error())
		}
	}

	b := bot.New(bot.Deps{
		Logger:   logger,
		API:      telegram.NewClient(nil, viper.GetString("telegram.base_url"), botToken),
		LLM:      openai.New(viper.GetString("openai.base_url"), apiKey),
		Store:    st,
		Policy:   authz.New(viper.GetInt64("owner_id"), viperInt64Slice("sudo_ids")),
		Memory:   session.NewMemory(),
		SpamGate: gate,
	}, bot.Config{
		Model:             viper.GetString("llm.model"),
		Temperature:       viper.GetFloat64("llm.temperature"),
		MaxTokens:         viper.GetInt("llm.max_tokens"),
		MemoryLimit:       viper.GetInt("chat.memory_limit"),
		GroupReplyOnlyTag: viper.GetBool("chat.group_reply_only_tag"),
		SupportText:       viper.GetString("chat.support_text"),
		LogChannelID:      viper.GetInt64("log_channel_id"),
		PollTimeout:       viper.GetDuration("poll.timeout"),
		TaskTimeout:       viper.GetDuration("task.timeout"),
		MaxConcurrency:    viper.GetInt("max_concurrency"),
	})

	return b.Run(ctx)
}

// viperInt64Slice reads an int64 list; viper has no GetInt64Slice.
func viperInt64Slice(key string) []int64 {
	raw := viper.GetIntSlice(key)
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		out = append(out, int64(v))
	}
	return out
}
