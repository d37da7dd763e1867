package main

import "github.com/spf13/viper"

func initViperDefaults() {
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)

	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("openai.base_url", "https://api.openai.com")

	viper.SetDefault("owner_id", int64(0))
	viper.SetDefault("sudo_ids", []int64{})

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 400)

	viper.SetDefault("chat.memory_limit", 12)
	viper.SetDefault("chat.group_reply_only_tag", true)
	viper.SetDefault("chat.support_text", "Need help? Contact the owner.")

	viper.SetDefault("log_channel_id", int64(0))
	viper.SetDefault("db.path", "aikobot.db")
	viper.SetDefault("health.listen", "")

	viper.SetDefault("poll.timeout", "30s")
	viper.SetDefault("task.timeout", "90s")
	viper.SetDefault("max_concurrency", 8)

	viper.SetDefault("antispam.enabled", true)
	viper.SetDefault("antispam.window", "10s")
	viper.SetDefault("antispam.max_messages", 5)
}
