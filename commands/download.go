package commands

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"Cadence/db_client"
	"Cadence/utils"
	"Cadence/yt"

	"github.com/Strum355/log"
	"github.com/google/uuid"
)

const (
	audioPrefix      = "download_audio_"
	videoPrefix      = "download_video_"
	quickAudioPrefix = "quick_audio_"
	quickVideoPrefix = "quick_video_"
)

// Queue statuses shown by /queue while a download is in flight, matching
// the placeholder text
const (
	statusDownloading = "Downloading"
	statusUploading   = "Uploading"
)

func kindName(wantVideo bool) string {
	if wantVideo {
		return "video"
	}
	return "audio"
}

// deliver resolves, downloads and uploads link, editing status as it goes.
// The placeholder is deleted once the upload succeeds.
func (b *Bot) deliver(ctx context.Context, ev Event, link string, wantVideo bool, status MessageRef) *chatError {
	kind := kindName(wantVideo)
	failed := "❌ **Download failed:** "
	if wantVideo {
		failed = "❌ **Video download failed:** "
	}

	var entryID uuid.UUID
	tracked := b.store.IsOnOff(db_client.QueueEnabled)
	if tracked {
		entryID = b.downloads.Enqueue(ev.ChatID, link, statusDownloading)
		defer b.downloads.Remove(ev.ChatID, entryID)
	}
	setStatus := func(title, s string) {
		if tracked {
			b.downloads.Update(ev.ChatID, entryID, title, s)
		}
	}

	b.editStatus(ctx, status, "⬇️ **Downloading "+kind+"...**")

	track, _, err := b.lookup.Resolve(ctx, link)
	if err != nil {
		return &chatError{err, failed + escape(err.Error()), &status}
	}
	setStatus(track.Title, "")

	path, temporary, err := b.lookup.Download(ctx, link, wantVideo)
	if err != nil {
		return &chatError{err, failed + escape(err.Error()), &status}
	}
	if temporary {
		defer removeFile(ctx, path)
	}

	setStatus("", statusUploading)
	b.editStatus(ctx, status, "📤 **Uploading "+kind+"...**")

	icon, send := "🎵", b.messenger.SendAudio
	if wantVideo {
		icon, send = "📹", b.messenger.SendVideo
	}
	media := Media{
		Path:      path,
		Title:     track.Title,
		Caption:   icon + " **" + escape(track.Title) + "**\n⏱ Duration: " + track.Duration + "\n👤 Requested by: " + escape(ev.UserName),
		Duration:  utils.DurationToSeconds(track.Duration),
		Thumbnail: track.Thumbnail,
	}
	if err := send(ctx, ev.ChatID, ev.MessageID, media); err != nil {
		return &chatError{err, failed + escape(err.Error()), &status}
	}

	if err := b.messenger.Delete(ctx, status); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to delete status message")
	}

	entry := db_client.HistoryEntry{
		ChatID:   ev.ChatID,
		UserID:   ev.UserID,
		Track:    track,
		PlayedAt: time.Now(),
	}
	if err := b.store.AddToHistory(ctx, entry); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to record play history")
	}
	log.WithContext(ctx).Info("Delivered " + kind + " " + track.ID)
	return nil
}

func (b *Bot) editStatus(ctx context.Context, status MessageRef, text string) {
	if err := b.messenger.Edit(ctx, status, text, nil); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to update status message")
	}
}

// removeFile deletes a delivered temporary file, ignoring failures
func removeFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithContext(ctx).Info("Could not remove " + path + ": " + err.Error())
	}
}

// download_audio_<id> and download_video_<id>
func (b *Bot) downloadCallback(ctx context.Context, ev Event) *chatError {
	wantVideo := strings.HasPrefix(ev.CallbackData, videoPrefix)
	prefix := audioPrefix
	if wantVideo {
		prefix = videoPrefix
	}
	videoID := strings.TrimPrefix(ev.CallbackData, prefix)
	if videoID == "" {
		b.answer(ctx, ev, "")
		return &chatError{errors.New("empty video id in callback"), "❌ **Error:** invalid button", nil}
	}
	b.answer(ctx, ev, "Downloading...")
	return b.deliver(ctx, ev, yt.WatchURL(videoID), wantVideo, ev.ref())
}

// quick_audio_<url> and quick_video_<url>
func (b *Bot) quickCallback(ctx context.Context, ev Event) *chatError {
	wantVideo := strings.HasPrefix(ev.CallbackData, quickVideoPrefix)
	prefix := quickAudioPrefix
	if wantVideo {
		prefix = quickVideoPrefix
	}
	link := strings.TrimPrefix(ev.CallbackData, prefix)
	if link == "" {
		b.answer(ctx, ev, "")
		return &chatError{errors.New("empty link in callback"), "❌ **Error:** invalid button", nil}
	}
	b.answer(ctx, ev, "Downloading "+kindName(wantVideo)+"...")
	return b.deliver(ctx, ev, link, wantVideo, ev.ref())
}

func (b *Bot) answer(ctx context.Context, ev Event, text string) {
	if err := b.messenger.AnswerCallback(ctx, ev.CallbackID, text); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to answer callback")
	}
}

// linkButton offers a quick download of link, falling back to the video id
// when the link does not fit in a callback payload
func (b *Bot) linkButton(text, link string, wantVideo bool) Button {
	prefix, fallback := quickAudioPrefix, audioPrefix
	if wantVideo {
		prefix, fallback = quickVideoPrefix, videoPrefix
	}
	data := prefix + link
	if limit := b.messenger.CallbackLimit(); limit > 0 && len(data) > limit {
		if videoID, err := yt.VideoID(link); err == nil {
			data = fallback + videoID
		}
	}
	return Button{Text: text, Data: data}
}

func (b *Bot) quickKeyboard(link string) Keyboard {
	return Keyboard{{
		b.linkButton("🎵 Download Audio", link, false),
		b.linkButton("📹 Download Video", link, true),
	}}
}
