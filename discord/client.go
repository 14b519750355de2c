package discord

import (
	"context"
	"strings"

	"Cadence/commands"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// Client is a Discord gateway connection feeding chat events
type Client struct {
	*Messenger
	session *discordgo.Session
	prefix  string
}

func New(token, prefix string) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuilds |
		discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("Logged in to discord as " + r.User.Username)
	})
	return &Client{Messenger: NewMessenger(s), session: s, prefix: prefix}, nil
}

// Events registers the gateway handlers and streams their events until ctx
// is done. Call before Open. The channel is never closed.
func (c *Client) Events(ctx context.Context) <-chan commands.Event {
	events := make(chan commands.Event)
	push := func(ev commands.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		selfID := ""
		if s.State != nil && s.State.User != nil {
			selfID = s.State.User.ID
		}
		ev, hint := messageEvent(selfID, c.prefix, m)
		if hint {
			if _, err := s.ChannelMessageSend(m.ChannelID, "type `"+c.prefix+"help` to open help menu."); err != nil {
				log.WithError(err).Error("Failed to send help hint")
			}
			return
		}
		if ev.Text != "" {
			push(ev)
		}
	})

	c.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}
		ev, ok := componentEvent(i)
		if !ok {
			return
		}
		c.track(i.Interaction)
		push(ev)
	})
	return events
}

// Open connects to the gateway
func (c *Client) Open() error {
	return c.session.Open()
}

func (c *Client) Close() error {
	return c.session.Close()
}

// messageEvent converts a message, rewriting the command prefix to "/".
// hint is set when the message is the bare prefix.
func messageEvent(selfID, prefix string, m *discordgo.MessageCreate) (commands.Event, bool) {
	if m.Author == nil || m.Author.ID == selfID || m.Author.Bot || m.Content == "" {
		return commands.Event{}, false
	}

	text := m.Content
	if prefix != "" && strings.HasPrefix(text, prefix) {
		firstWord, _, _ := strings.Cut(text, " ")
		if firstWord == prefix {
			return commands.Event{}, true
		}
		text = "/" + strings.TrimPrefix(text, prefix)
	}

	ev := commands.Event{
		ChatID:    m.ChannelID,
		MessageID: m.ID,
		UserID:    m.Author.ID,
		UserName:  displayName(m.Author),
		Text:      text,
	}
	if m.ReferencedMessage != nil {
		ev.ReplyText = m.ReferencedMessage.Content
	}
	return ev, false
}

func componentEvent(i *discordgo.InteractionCreate) (commands.Event, bool) {
	if i.Message == nil {
		return commands.Event{}, false
	}
	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return commands.Event{}, false
	}
	customID := i.MessageComponentData().CustomID
	if customID == "" {
		return commands.Event{}, false
	}
	return commands.Event{
		ChatID:       i.ChannelID,
		MessageID:    i.Message.ID,
		UserID:       user.ID,
		UserName:     displayName(user),
		CallbackID:   i.ID,
		CallbackData: customID,
	}, true
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
