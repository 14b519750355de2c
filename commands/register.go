package commands

import (
	"context"
	"strings"

	"Cadence/db_client"
	"Cadence/queue"
	"Cadence/yt"

	"github.com/Strum355/log"
)

// Lookup finds, describes and downloads media
type Lookup interface {
	Search(ctx context.Context, query string, limit int) ([]yt.Track, error)
	Resolve(ctx context.Context, link string) (yt.Track, bool, error)
	Formats(ctx context.Context, link string) ([]yt.Format, error)
	Download(ctx context.Context, link string, wantVideo bool) (string, bool, error)
}

type CommandHandler func(ctx context.Context, ev Event) *chatError

type Commands struct {
	handlers         map[string]CommandHandler
	callbackHandlers map[string]CommandHandler
	linkHandler      CommandHandler
}

// Add registers a handler under one or more command names
func (c *Commands) Add(handler CommandHandler, names ...string) {
	if c.handlers == nil {
		c.handlers = map[string]CommandHandler{}
	}
	for _, name := range names {
		c.handlers[name] = handler
	}
}

// AddCallback registers a handler for button payloads starting with prefix
func (c *Commands) AddCallback(prefix string, handler CommandHandler) {
	if c.callbackHandlers == nil {
		c.callbackHandlers = map[string]CommandHandler{}
	}
	c.callbackHandlers[prefix] = handler
}

// callback finds the handler with the longest matching prefix
func (c *Commands) callback(data string) (string, CommandHandler) {
	var (
		label   string
		handler CommandHandler
	)
	for prefix, h := range c.callbackHandlers {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(label) {
			label, handler = prefix, h
		}
	}
	return label, handler
}

// Options tune the chat front door
type Options struct {
	SearchLimit   int
	AddToGroupURL string
	SupportURL    string
}

// Bot routes chat events to command handlers
type Bot struct {
	messenger Messenger
	lookup    Lookup
	store     db_client.Store
	downloads *queue.Queue
	opts      Options
	commands  *Commands
}

func NewBot(m Messenger, lookup Lookup, store db_client.Store, downloads *queue.Queue, opts Options) *Bot {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 10
	}
	b := &Bot{
		messenger: m,
		lookup:    lookup,
		store:     store,
		downloads: downloads,
		opts:      opts,
		commands:  &Commands{},
	}

	b.commands.Add(b.start, "start")
	b.commands.Add(b.help, "help")
	b.commands.Add(b.playMusic, "play", "audio")
	b.commands.Add(b.playVideo, "video", "mp4")
	b.commands.Add(b.search, "search")
	b.commands.Add(b.showQueue, "queue")
	b.commands.Add(b.formats, "formats")
	b.commands.Add(b.settings, "settings")
	b.commands.Add(b.stats, "stats")

	b.commands.AddCallback(audioPrefix, b.downloadCallback)
	b.commands.AddCallback(videoPrefix, b.downloadCallback)
	b.commands.AddCallback(quickAudioPrefix, b.quickCallback)
	b.commands.AddCallback(quickVideoPrefix, b.quickCallback)

	b.commands.linkHandler = b.detectLink
	return b
}

// Run handles events one at a time until ctx is done or events is closed
func (b *Bot) Run(ctx context.Context, events <-chan Event) {
	log.Info("Chat dispatcher started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Chat dispatcher stopped")
			return
		case ev, ok := <-events:
			if !ok {
				log.Info("Chat event stream closed")
				return
			}
			b.Handle(ctx, ev)
		}
	}
}

// Handle routes a single event
func (b *Bot) Handle(ctx context.Context, ev Event) {
	if ev.IsCallback() {
		b.callCallbackHandler(ctx, ev)
		return
	}
	if name, _ := ev.Command(); name != "" {
		b.callCommandHandler(ctx, ev, name)
		return
	}
	if b.commands.linkHandler != nil && yt.FindLink(ev.Text) != "" {
		b.invoke(ctx, ev, "link", "message", b.commands.linkHandler)
	}
}

// Button presses
func (b *Bot) callCallbackHandler(ctx context.Context, ev Event) {
	label, handler := b.commands.callback(ev.CallbackData)
	if handler == nil {
		log.WithContext(ctx).Info("Ignoring unknown callback " + ev.CallbackData)
		if err := b.messenger.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to answer callback")
		}
		return
	}
	b.invoke(ctx, ev, label, "callback", handler)
}

// Text commands
func (b *Bot) callCommandHandler(ctx context.Context, ev Event, name string) {
	if handler, ok := b.commands.handlers[name]; ok {
		b.invoke(ctx, ev, name, "command", handler)
	}
}

func (b *Bot) invoke(ctx context.Context, ev Event, command, kind string, handler CommandHandler) {
	ctx = context.WithValue(ctx, log.Key, log.Fields{
		"user_id":          ev.UserID,
		"user":             ev.UserName,
		"chat_id":          ev.ChatID,
		"interaction_type": kind,
		"command":          command,
	})
	log.WithContext(ctx).Info("Invoking chat " + kind)
	if cErr := handler(ctx, ev); cErr != nil {
		cErr.Handle(ctx, b.messenger, ev)
	}
}
