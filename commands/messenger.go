package commands

import (
	"context"
	"strings"
)

// Button is an inline keyboard button. Exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is a grid of buttons, one slice per row
type Keyboard [][]Button

// MessageRef identifies a sent message so it can be edited or deleted later
type MessageRef struct {
	ChatID    string
	MessageID string
}

// Media describes a local file to upload
type Media struct {
	Path      string
	Title     string
	Caption   string
	Duration  int
	Thumbnail string
}

// Messenger is the transport a Bot talks back through.
// Text may carry **bold** and `code` markup which the transport renders natively.
type Messenger interface {
	Reply(ctx context.Context, chatID, replyTo, text string, keyboard Keyboard) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string, keyboard Keyboard) error
	Delete(ctx context.Context, ref MessageRef) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SendAudio(ctx context.Context, chatID, replyTo string, media Media) error
	SendVideo(ctx context.Context, chatID, replyTo string, media Media) error
	// CallbackLimit is the largest button payload in bytes the transport accepts
	CallbackLimit() int
}

// Event is an incoming chat message or button press
type Event struct {
	ChatID    string
	MessageID string
	UserID    string
	UserName  string
	Text      string
	// ReplyText is the text or caption of the message being replied to
	ReplyText string

	CallbackID   string
	CallbackData string
}

// IsCallback reports whether the event is a button press
func (e Event) IsCallback() bool {
	return e.CallbackID != ""
}

// Command splits "/name@bot args" into a lowercase name and the trimmed args.
// Name is empty when the text is not a command.
func (e Event) Command() (string, string) {
	text := strings.TrimSpace(e.Text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	name, args, _ := strings.Cut(text[1:], " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), strings.TrimSpace(args)
}

func (e Event) ref() MessageRef {
	return MessageRef{ChatID: e.ChatID, MessageID: e.MessageID}
}

var markupEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "`", "\\`", "_", `\_`, "~", `\~`, "|", `\|`)

// escape makes text from users or YouTube show literally outside code spans
func escape(text string) string {
	return markupEscaper.Replace(text)
}

// codeText makes text safe inside a `code` span, where backslashes are literal
func codeText(text string) string {
	return strings.ReplaceAll(text, "`", "'")
}
