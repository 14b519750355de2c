package telegram

import (
	"context"
	"fmt"
	"strconv"

	"Cadence/commands"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// callbackLimit is the Bot API limit on callback_data in bytes
const callbackLimit = 64

type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger sends chat output through the Bot API
type Messenger struct {
	api api
}

func NewMessenger(a api) *Messenger {
	return &Messenger{api: a}
}

func (m *Messenger) Reply(_ context.Context, chatID, replyTo, text string, keyboard commands.Keyboard) (commands.MessageRef, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return commands.MessageRef{}, err
	}
	msg := tgbotapi.NewMessage(id, render(text))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = parseMessageID(replyTo)
	msg.DisableWebPagePreview = true
	if markup := inlineKeyboard(keyboard); markup != nil {
		msg.ReplyMarkup = *markup
	}

	sent, err := m.api.Send(msg)
	if err != nil {
		return commands.MessageRef{}, fmt.Errorf("sending message to %s: %w", chatID, err)
	}
	return commands.MessageRef{ChatID: chatID, MessageID: strconv.Itoa(sent.MessageID)}, nil
}

func (m *Messenger) Edit(_ context.Context, ref commands.MessageRef, text string, keyboard commands.Keyboard) error {
	id, err := parseChatID(ref.ChatID)
	if err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(id, parseMessageID(ref.MessageID), render(text))
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = inlineKeyboard(keyboard)

	if _, err := m.api.Send(edit); err != nil {
		return fmt.Errorf("editing message %s: %w", ref.MessageID, err)
	}
	return nil
}

func (m *Messenger) Delete(_ context.Context, ref commands.MessageRef) error {
	id, err := parseChatID(ref.ChatID)
	if err != nil {
		return err
	}
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(id, parseMessageID(ref.MessageID))); err != nil {
		return fmt.Errorf("deleting message %s: %w", ref.MessageID, err)
	}
	return nil
}

func (m *Messenger) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answering callback: %w", err)
	}
	return nil
}

func (m *Messenger) SendAudio(_ context.Context, chatID, replyTo string, media commands.Media) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	audio := tgbotapi.NewAudio(id, tgbotapi.FilePath(media.Path))
	audio.Caption = render(media.Caption)
	audio.ParseMode = tgbotapi.ModeHTML
	audio.Title = media.Title
	audio.Duration = media.Duration
	audio.ReplyToMessageID = parseMessageID(replyTo)

	if _, err := m.api.Send(audio); err != nil {
		return fmt.Errorf("uploading audio: %w", err)
	}
	return nil
}

func (m *Messenger) SendVideo(_ context.Context, chatID, replyTo string, media commands.Media) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	video := tgbotapi.NewVideo(id, tgbotapi.FilePath(media.Path))
	video.Caption = render(media.Caption)
	video.ParseMode = tgbotapi.ModeHTML
	video.Duration = media.Duration
	video.SupportsStreaming = true
	video.ReplyToMessageID = parseMessageID(replyTo)

	if _, err := m.api.Send(video); err != nil {
		return fmt.Errorf("uploading video: %w", err)
	}
	return nil
}

func (m *Messenger) CallbackLimit() int {
	return callbackLimit
}

func inlineKeyboard(keyboard commands.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return id, nil
}

// parseMessageID returns 0, meaning no message, for empty or invalid ids
func parseMessageID(messageID string) int {
	id, _ := strconv.Atoi(messageID)
	return id
}
