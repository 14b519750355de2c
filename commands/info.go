package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Cadence/db_client"
	"Cadence/utils"
)

const welcomeText = `🎵 **Welcome to Music Bot!**

I can download and share music from YouTube! Here are my commands:

📻 **Music Commands:**
• ` + "`/play`" + ` - Download and send a song from YouTube
• ` + "`/video`" + ` - Download and send video from YouTube
• ` + "`/search`" + ` - Search for music on YouTube
• ` + "`/queue`" + ` - Show download queue

🎧 **Download Commands:**
• ` + "`/audio`" + ` - Download audio only
• ` + "`/mp4`" + ` - Download video in MP4 format
• ` + "`/formats`" + ` - Show available download formats

⚙️ **Other Commands:**
• ` + "`/settings`" + ` - Show or change chat settings
• ` + "`/stats`" + ` - Show your listening stats
• ` + "`/help`" + ` - Show this help message

**Usage:** Just type ` + "`/play [song name]`" + ` or ` + "`/play [YouTube URL]`"

const helpText = `🎵 **Music Bot Help**

**Download Commands:**
• ` + "`/play [song name]`" + ` - Download and send audio
• ` + "`/play [YouTube URL]`" + ` - Download from YouTube link
• ` + "`/video [YouTube URL]`" + ` - Download and send video
• ` + "`/search [query]`" + ` - Search YouTube and download

**Queue Management:**
• ` + "`/queue`" + ` - Show download queue status
• ` + "`/formats [URL]`" + ` - Show available download formats

**Settings:**
• ` + "`/settings`" + ` - Show chat settings
• ` + "`/settings [name] [value]`" + ` - Change a setting
• ` + "`/stats`" + ` - Show your listening stats

**How to use:**
1. Add me to your group
2. Use ` + "`/play [song name]`" + ` to download music
3. Use ` + "`/video [URL]`" + ` for video downloads
4. Use ` + "`/search [query]`" + ` to find and download music

**Note:** I download and send files directly to the chat.`

func (b *Bot) start(ctx context.Context, ev Event) *chatError {
	var keyboard Keyboard
	if b.opts.AddToGroupURL != "" {
		keyboard = append(keyboard, []Button{{Text: "Add to Group", URL: b.opts.AddToGroupURL}})
	}
	if b.opts.SupportURL != "" {
		keyboard = append(keyboard, []Button{{Text: "Support", URL: b.opts.SupportURL}})
	}
	b.reply(ctx, ev, welcomeText, keyboard)
	return nil
}

func (b *Bot) help(ctx context.Context, ev Event) *chatError {
	b.reply(ctx, ev, helpText, nil)
	return nil
}

func (b *Bot) showQueue(ctx context.Context, ev Event) *chatError {
	var text strings.Builder
	text.WriteString("📋 **Download Queue Status:**\n\n")

	entries := b.downloads.List(ev.ChatID)
	if len(entries) == 0 {
		text.WriteString("📭 **No downloads in queue**")
	}
	for i, entry := range entries {
		fmt.Fprintf(&text, "%d. %s\n", i+1, escape(utils.Truncate(entry.Title, 30)))
		fmt.Fprintf(&text, "   Status: %s\n\n", entry.Status)
	}
	b.reply(ctx, ev, text.String(), nil)
	return nil
}

// /settings shows the chat settings, /settings <name> <value> changes one
func (b *Bot) settings(ctx context.Context, ev Event) *chatError {
	_, args := ev.Command()
	fields := strings.Fields(args)

	var (
		current db_client.ChatSettings
		err     error
	)
	switch len(fields) {
	case 0:
		current, err = b.store.GetChatSettings(ctx, ev.ChatID)
	case 2:
		update, parseErr := db_client.ParseUpdate(strings.ToLower(fields[0]), fields[1])
		if errors.Is(parseErr, db_client.ErrUnknownSetting) {
			b.reply(ctx, ev, "❌ Unknown setting. Available: `volume`, `repeat_mode`, `shuffle_mode`, `auto_leave`", nil)
			return nil
		}
		if parseErr != nil {
			b.reply(ctx, ev, "❌ "+escape(parseErr.Error()), nil)
			return nil
		}
		current, err = b.store.SetChatSettings(ctx, ev.ChatID, update)
	default:
		b.reply(ctx, ev, "❌ Usage: `/settings [name] [value]`\n\nExample: `/settings volume 80`", nil)
		return nil
	}
	if err != nil {
		return &chatError{err, "❌ **Error:** couldn't load chat settings", nil}
	}

	b.reply(ctx, ev, fmt.Sprintf("⚙️ **Chat Settings**\n\n🔊 Volume: %d\n🔁 Repeat: %s\n🔀 Shuffle: %s\n🚪 Auto leave: %s",
		current.Volume, onOff(current.RepeatMode), onOff(current.ShuffleMode), onOff(current.AutoLeave)), nil)
	return nil
}

func (b *Bot) stats(ctx context.Context, ev Event) *chatError {
	stats, err := b.store.GetUserStats(ctx, ev.UserID)
	if err != nil {
		return &chatError{err, "❌ **Error:** couldn't load your stats", nil}
	}
	listened := utils.FormatDuration(time.Duration(stats.TimeListened) * time.Second)
	b.reply(ctx, ev, fmt.Sprintf("📊 **Stats for %s**\n\n🎵 Songs played: %d\n⏱ Time listened: %s",
		escape(ev.UserName), stats.SongsPlayed, listened), nil)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
