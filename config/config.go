package config

import (
	"errors"
	"strings"

	"github.com/Strum355/log"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitConfig loads .env, defaults, environment and an optional config.yaml.
func InitConfig() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, proceeding with defaults.")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	initDefaults()
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.WithError(err).Error("Unable to read config.yaml")
		}
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Config file changed: " + e.Name)
	})
	viper.WatchConfig()
}

// AuthMode is how the telegram transport logs in.
type AuthMode string

const (
	AuthNone    AuthMode = ""
	AuthSession AuthMode = "session"
	AuthBot     AuthMode = "bot"
)

// Auth picks the telegram credential to use. A session string takes
// precedence over a bot token when both are set.
func Auth() (AuthMode, string) {
	if session := viper.GetString("telegram.string.session"); session != "" {
		return AuthSession, session
	}
	if token := viper.GetString("telegram.bot.token"); token != "" {
		return AuthBot, token
	}
	return AuthNone, ""
}
