package discord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"Cadence/commands"

	"github.com/bwmarrin/discordgo"
)

// customIDLimit is the Discord limit on a component custom_id
const customIDLimit = 100

type session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Messenger sends chat output to Discord channels
type Messenger struct {
	s session

	mu      sync.Mutex
	pending map[string]*discordgo.Interaction // Component presses waiting for an acknowledgement
}

func NewMessenger(s session) *Messenger {
	return &Messenger{s: s, pending: make(map[string]*discordgo.Interaction)}
}

// track remembers an interaction until AnswerCallback acknowledges it
func (m *Messenger) track(i *discordgo.Interaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[i.ID] = i
}

func (m *Messenger) Reply(_ context.Context, chatID, replyTo, text string, keyboard commands.Keyboard) (commands.MessageRef, error) {
	send := &discordgo.MessageSend{
		Content:    text,
		Components: components(keyboard),
		Reference:  reference(chatID, replyTo),
	}
	msg, err := m.s.ChannelMessageSendComplex(chatID, send)
	if err != nil {
		return commands.MessageRef{}, fmt.Errorf("sending message to %s: %w", chatID, err)
	}
	return commands.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

func (m *Messenger) Edit(_ context.Context, ref commands.MessageRef, text string, keyboard commands.Keyboard) error {
	comps := components(keyboard)
	if comps == nil {
		comps = []discordgo.MessageComponent{}
	}
	edit := discordgo.NewMessageEdit(ref.ChatID, ref.MessageID)
	edit.Content = &text
	edit.Components = &comps
	if _, err := m.s.ChannelMessageEditComplex(edit); err != nil {
		return fmt.Errorf("editing message %s: %w", ref.MessageID, err)
	}
	return nil
}

func (m *Messenger) Delete(_ context.Context, ref commands.MessageRef) error {
	if err := m.s.ChannelMessageDelete(ref.ChatID, ref.MessageID); err != nil {
		return fmt.Errorf("deleting message %s: %w", ref.MessageID, err)
	}
	return nil
}

// AnswerCallback acknowledges a button press. Discord has no toast text so
// text is dropped.
func (m *Messenger) AnswerCallback(_ context.Context, callbackID, _ string) error {
	m.mu.Lock()
	i, ok := m.pending[callbackID]
	delete(m.pending, callbackID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown interaction %s", callbackID)
	}

	err := m.s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return fmt.Errorf("acknowledging interaction %s: %w", callbackID, err)
	}
	return nil
}

func (m *Messenger) SendAudio(_ context.Context, chatID, replyTo string, media commands.Media) error {
	return m.sendFile(chatID, replyTo, media)
}

func (m *Messenger) SendVideo(_ context.Context, chatID, replyTo string, media commands.Media) error {
	return m.sendFile(chatID, replyTo, media)
}

func (m *Messenger) sendFile(chatID, replyTo string, media commands.Media) error {
	f, err := os.Open(media.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", media.Path, err)
	}
	defer f.Close()

	send := &discordgo.MessageSend{
		Content:   media.Caption,
		Files:     []*discordgo.File{{Name: filepath.Base(media.Path), Reader: f}},
		Reference: reference(chatID, replyTo),
	}
	if _, err := m.s.ChannelMessageSendComplex(chatID, send); err != nil {
		return fmt.Errorf("uploading %s: %w", filepath.Base(media.Path), err)
	}
	return nil
}

func (m *Messenger) CallbackLimit() int {
	return customIDLimit
}

func reference(chatID, messageID string) *discordgo.MessageReference {
	if messageID == "" {
		return nil
	}
	return &discordgo.MessageReference{ChannelID: chatID, MessageID: messageID}
}

func components(keyboard commands.Keyboard) []discordgo.MessageComponent {
	if len(keyboard) == 0 {
		return nil
	}
	rows := make([]discordgo.MessageComponent, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, discordgo.Button{Label: b.Text, Style: discordgo.LinkButton, URL: b.URL})
			} else {
				buttons = append(buttons, discordgo.Button{Label: b.Text, Style: discordgo.PrimaryButton, CustomID: b.Data})
			}
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}
