package telegram

import (
	"context"
	"errors"
	"strconv"

	"Cadence/commands"
	"Cadence/config"

	"github.com/Strum355/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	ErrNoCredentials      = errors.New("no BOT_TOKEN or STRING_SESSION configured")
	ErrSessionUnsupported = errors.New("STRING_SESSION needs a user client, the Bot API only accepts BOT_TOKEN")
)

// Client is a long polling Bot API connection
type Client struct {
	*Messenger
	bot *tgbotapi.BotAPI
}

// BotToken picks the token to log in with. A session string wins over a bot
// token in configuration, but the Bot API can only use the token.
func BotToken(mode config.AuthMode, credential, botToken string) (string, error) {
	switch mode {
	case config.AuthBot:
		return credential, nil
	case config.AuthSession:
		if botToken == "" {
			return "", ErrSessionUnsupported
		}
		log.Info("STRING_SESSION is set but cannot be used with the Bot API, logging in with BOT_TOKEN")
		return botToken, nil
	}
	return "", ErrNoCredentials
}

// New logs in with token. An empty endpoint uses the public Bot API.
func New(token, endpoint string) (*Client, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, err
	}
	log.Info("Authorized on telegram account " + bot.Self.UserName)
	return &Client{Messenger: NewMessenger(bot), bot: bot}, nil
}

// Events streams incoming messages and button presses until ctx is done
func (c *Client) Events(ctx context.Context) <-chan commands.Event {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	events := make(chan commands.Event)
	go func() {
		defer close(events)
		defer c.bot.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := translate(update)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events
}

// translate maps an update to a chat event, skipping anything without a sender
func translate(update tgbotapi.Update) (commands.Event, bool) {
	if q := update.CallbackQuery; q != nil {
		if q.Message == nil || q.Message.Chat == nil || q.From == nil {
			return commands.Event{}, false
		}
		return commands.Event{
			ChatID:       strconv.FormatInt(q.Message.Chat.ID, 10),
			MessageID:    strconv.Itoa(q.Message.MessageID),
			UserID:       strconv.FormatInt(q.From.ID, 10),
			UserName:     q.From.FirstName,
			CallbackID:   q.ID,
			CallbackData: q.Data,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.From == nil || msg.From.IsBot {
		return commands.Event{}, false
	}
	ev := commands.Event{
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		MessageID: strconv.Itoa(msg.MessageID),
		UserID:    strconv.FormatInt(msg.From.ID, 10),
		UserName:  msg.From.FirstName,
		Text:      textOf(msg),
	}
	if msg.ReplyToMessage != nil {
		ev.ReplyText = textOf(msg.ReplyToMessage)
	}
	if ev.Text == "" {
		return commands.Event{}, false
	}
	return ev, true
}

func textOf(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}
