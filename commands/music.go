package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"Cadence/db_client"
	"Cadence/utils"
	"Cadence/yt"

	"github.com/Strum355/log"
)

const pickLimit = 5

// queryOf returns the command arguments, or the replied-to text when there are none
func queryOf(ev Event) string {
	if _, args := ev.Command(); args != "" {
		return args
	}
	return strings.TrimSpace(ev.ReplyText)
}

func (b *Bot) reply(ctx context.Context, ev Event, text string, keyboard Keyboard) {
	if _, err := b.messenger.Reply(ctx, ev.ChatID, ev.MessageID, text, keyboard); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to reply")
	}
}

func (b *Bot) placeholder(ctx context.Context, ev Event, text string) (MessageRef, *chatError) {
	status, err := b.messenger.Reply(ctx, ev.ChatID, ev.MessageID, text, nil)
	if err != nil {
		return MessageRef{}, &chatError{err, "❌ **Error:** couldn't send status message", nil}
	}
	return status, nil
}

// /play sends audio, or video when video mode is on. /audio is always audio.
func (b *Bot) playMusic(ctx context.Context, ev Event) *chatError {
	name, _ := ev.Command()
	wantVideo := name == "play" && b.store.IsOnOff(db_client.VideoMode)
	return b.play(ctx, ev, wantVideo)
}

func (b *Bot) play(ctx context.Context, ev Event, wantVideo bool) *chatError {
	query := queryOf(ev)
	if query == "" {
		b.reply(ctx, ev, "❌ Please provide a song name or YouTube URL!\n\nExample: `/play Despacito`", nil)
		return nil
	}

	status, cErr := b.placeholder(ctx, ev, "🔍 **Searching for music...**")
	if cErr != nil {
		return cErr
	}

	if yt.Exists(query) {
		link := yt.FindLink(query)
		if !b.store.IsOnOff(db_client.DirectDownload) {
			return b.show(ctx, status, "🎵 **YouTube link detected!**\n\nWhat would you like to download?", b.quickKeyboard(link))
		}
		return b.deliver(ctx, ev, link, wantVideo, status)
	}

	results, err := b.lookup.Search(ctx, query, pickLimit)
	if err != nil {
		return &chatError{err, "❌ **Error:** " + escape(err.Error()), &status}
	}
	if len(results) == 0 {
		return b.show(ctx, status, "❌ No results found for your search.", nil)
	}

	prefix, icon := audioPrefix, "🎵 "
	if wantVideo {
		prefix, icon = videoPrefix, "📹 "
	}
	var keyboard Keyboard
	for _, track := range results[:min(pickLimit, len(results))] {
		keyboard = append(keyboard, []Button{{
			Text: icon + utils.Truncate(track.Title, 50) + " [" + track.Duration + "]",
			Data: prefix + track.ID,
		}})
	}
	return b.show(ctx, status, "🎵 **Search Results for:** `"+codeText(query)+"`\n\nSelect a song to download:", keyboard)
}

// /video and /mp4 download the video of a link
func (b *Bot) playVideo(ctx context.Context, ev Event) *chatError {
	query := queryOf(ev)
	if query == "" {
		b.reply(ctx, ev, "❌ Please provide a YouTube URL!\n\nExample: `/video https://youtube.com/watch?v=...`", nil)
		return nil
	}
	if !yt.Exists(query) {
		b.reply(ctx, ev, "❌ Please provide a valid YouTube URL!", nil)
		return nil
	}

	status, cErr := b.placeholder(ctx, ev, "📹 **Downloading video...**")
	if cErr != nil {
		return cErr
	}
	return b.deliver(ctx, ev, yt.FindLink(query), true, status)
}

func (b *Bot) search(ctx context.Context, ev Event) *chatError {
	_, query := ev.Command()
	if query == "" {
		b.reply(ctx, ev, "❌ Please provide a search query!\n\nExample: `/search Despacito`", nil)
		return nil
	}

	status, cErr := b.placeholder(ctx, ev, "🔍 **Searching YouTube...**")
	if cErr != nil {
		return cErr
	}

	results, err := b.lookup.Search(ctx, query, b.opts.SearchLimit)
	if err != nil {
		return &chatError{err, "❌ **Search failed:** " + escape(err.Error()), &status}
	}
	if len(results) == 0 {
		return b.show(ctx, status, "❌ No results found for your search.", nil)
	}

	var (
		text     strings.Builder
		keyboard Keyboard
	)
	text.WriteString("🎵 **Search Results for:** `" + codeText(query) + "`\n\n")
	for i, track := range results[:min(pickLimit, len(results))] {
		n := strconv.Itoa(i + 1)
		fmt.Fprintf(&text, "%s. **%s**\n", n, escape(utils.Truncate(track.Title, 40)))
		fmt.Fprintf(&text, "   ⏱ %s | 👁 %d\n", track.Duration, track.Views)
		fmt.Fprintf(&text, "   📺 %s\n\n", escape(track.Channel))
		keyboard = append(keyboard, []Button{
			{Text: "🎵 Download Audio #" + n, Data: audioPrefix + track.ID},
			{Text: "📹 Download Video #" + n, Data: videoPrefix + track.ID},
		})
	}
	return b.show(ctx, status, text.String(), keyboard)
}

func (b *Bot) formats(ctx context.Context, ev Event) *chatError {
	_, args := ev.Command()
	link, _, _ := strings.Cut(args, " ")
	if link == "" {
		b.reply(ctx, ev, "❌ Please provide a YouTube URL!\n\nExample: `/formats https://youtube.com/watch?v=...`", nil)
		return nil
	}
	if !yt.Exists(link) {
		b.reply(ctx, ev, "❌ Please provide a valid YouTube URL!", nil)
		return nil
	}

	status, cErr := b.placeholder(ctx, ev, "🔍 **Getting available formats...**")
	if cErr != nil {
		return cErr
	}

	formats, err := b.lookup.Formats(ctx, link)
	if err != nil {
		return &chatError{err, "❌ **Error:** " + escape(err.Error()), &status}
	}
	if len(formats) == 0 {
		return b.show(ctx, status, "❌ No formats available for this video.", nil)
	}

	var text strings.Builder
	text.WriteString("📋 **Available Formats:**\n\n")
	for i, f := range formats[:min(10, len(formats))] {
		fmt.Fprintf(&text, "%d. **%s** (%s)\n", i+1, escape(f.Note), escape(f.Ext))
		fmt.Fprintf(&text, "   📊 Size: %.1f MB\n\n", float64(f.Filesize)/(1024*1024))
	}
	return b.show(ctx, status, text.String(), nil)
}

// detectLink offers quick download buttons for a plain message with a YouTube link
func (b *Bot) detectLink(ctx context.Context, ev Event) *chatError {
	link := yt.FindLink(ev.Text)
	if !yt.Exists(link) {
		return nil
	}
	b.reply(ctx, ev, "🎵 **YouTube link detected!**\n\nWhat would you like to download?", b.quickKeyboard(link))
	return nil
}

// show replaces the placeholder with the outcome of a command. A failed edit
// is reported to the user.
func (b *Bot) show(ctx context.Context, status MessageRef, text string, keyboard Keyboard) *chatError {
	if err := b.messenger.Edit(ctx, status, text, keyboard); err != nil {
		return &chatError{err, "❌ **Error:** couldn't display the result", &status}
	}
	return nil
}
