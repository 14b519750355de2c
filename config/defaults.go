package config

import (
	"github.com/spf13/viper"
)

func initDefaults() {
	// Original environment names are bound explicitly since they do not
	// follow the dotted key layout.
	_ = viper.BindEnv("telegram.api.id", "API_ID")
	_ = viper.BindEnv("telegram.api.hash", "API_HASH")
	_ = viper.BindEnv("telegram.bot.token", "BOT_TOKEN")
	_ = viper.BindEnv("telegram.string.session", "STRING_SESSION")
	_ = viper.BindEnv("telegram.api.endpoint", "TELEGRAM_API_ENDPOINT")
	_ = viper.BindEnv("secret.key", "SECRET_KEY")

	viper.SetDefault("telegram.api.id", 0)
	viper.SetDefault("telegram.api.hash", "")
	viper.SetDefault("telegram.bot.token", "")
	viper.SetDefault("telegram.string.session", "")
	viper.SetDefault("telegram.api.endpoint", "")

	viper.SetDefault("api.key", "YOUR_OWN_API_KEY")
	viper.SetDefault("api.url", "https://deadlinetech.site")
	viper.SetDefault("secret.key", "your-secret-key-here")

	viper.SetDefault("http.address", ":5000")
	viper.SetDefault("chat.transport", "telegram")
	viper.SetDefault("chat.add_url", "https://t.me/your_bot_username?startgroup=true")
	viper.SetDefault("chat.support_url", "https://t.me/your_support_chat")
	viper.SetDefault("discord.token", "")
	viper.SetDefault("prefix", "/")

	viper.SetDefault("redis.address", "")
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("database.dsn", "")

	viper.SetDefault("download.dir", "cache")
	viper.SetDefault("cache.youtube", 3600)
	viper.SetDefault("search.limit", 10)
}
