package yt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"Cadence/utils"

	"github.com/kkdai/youtube/v2"
)

var (
	ErrInvalidLink    = errors.New("not a valid YouTube link")
	ErrLookupFailed   = errors.New("lookup failed")
	ErrDownloadFailed = errors.New("download failed")
)

var linkPattern = regexp.MustCompile(`(?i)(https?://)?(www\.|m\.|music\.)?(youtube\.com|youtu\.be)/\S+`)

// videoClient is the part of youtube.Client used here
type videoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// FindLink returns the first YouTube link in text, or "" if there is none
func FindLink(text string) string {
	link := linkPattern.FindString(text)
	if link == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(link), "http") {
		link = "https://" + link
	}
	return link
}

// Exists reports whether link is a YouTube link that names a video
func Exists(link string) bool {
	if !linkPattern.MatchString(link) {
		return false
	}
	_, err := youtube.ExtractVideoID(FindLink(link))
	return err == nil
}

// VideoID extracts the video ID from a YouTube link
func VideoID(link string) (string, error) {
	if !Exists(link) {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}
	videoID, err := youtube.ExtractVideoID(FindLink(link))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}
	return videoID, nil
}

// WatchURL returns the canonical watch URL for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func thumbnailURL(videoID string, thumbs youtube.Thumbnails) string {
	if len(thumbs) > 0 {
		return thumbs[len(thumbs)-1].URL
	}
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}

// trackFromVideo converts video metadata into a Track
func trackFromVideo(video *youtube.Video) Track {
	return Track{
		ID:        video.ID,
		Title:     video.Title,
		Duration:  utils.FormatDuration(video.Duration),
		Thumbnail: thumbnailURL(video.ID, video.Thumbnails),
		URL:       WatchURL(video.ID),
		Channel:   video.Author,
		Views:     int64(video.Views),
	}
}

// searchEntry is one line of yt-dlp flat playlist JSON output
type searchEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	ViewCount  int64   `json:"view_count"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// parseSearchResults turns newline separated yt-dlp JSON into tracks,
// skipping lines that are not entries
func parseSearchResults(out []byte) []Track {
	tracks := []Track{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry searchEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.ID == "" {
			continue
		}

		thumb := fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", entry.ID)
		if n := len(entry.Thumbnails); n > 0 {
			thumb = entry.Thumbnails[n-1].URL
		}
		channel := entry.Channel
		if channel == "" {
			channel = entry.Uploader
		}

		tracks = append(tracks, Track{
			ID:        entry.ID,
			Title:     entry.Title,
			Duration:  utils.FormatDuration(secondsToDuration(entry.Duration)),
			Thumbnail: thumb,
			URL:       WatchURL(entry.ID),
			Channel:   channel,
			Views:     entry.ViewCount,
		})
	}
	return tracks
}

// mimeExt maps a mime type such as `audio/mp4; codecs="mp4a.40.2"` to a file extension
func mimeExt(mime string) string {
	base := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	switch base {
	case "audio/mp4":
		return "m4a"
	case "audio/webm", "video/webm":
		return "webm"
	case "video/mp4":
		return "mp4"
	case "video/3gpp":
		return "3gp"
	}
	if idx := strings.Index(base, "/"); idx >= 0 {
		return base[idx+1:]
	}
	return "bin"
}

func isVideoFormat(f youtube.Format) bool {
	return strings.HasPrefix(f.MimeType, "video/")
}

// pickFormat chooses the stream to download. Audio prefers m4a audio-only
// streams, video prefers mp4 streams muxed with audio.
func pickFormat(formats youtube.FormatList, wantVideo bool) (*youtube.Format, bool) {
	var fallback *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 {
			continue
		}
		if wantVideo != isVideoFormat(*f) {
			continue
		}
		if mimeExt(f.MimeType) == "m4a" || mimeExt(f.MimeType) == "mp4" {
			return f, true
		}
		if fallback == nil {
			fallback = f
		}
	}
	return fallback, fallback != nil
}

// formatsFromVideo lists a video's streams for display
func formatsFromVideo(video *youtube.Video) []Format {
	formats := make([]Format, 0, len(video.Formats))
	for _, f := range video.Formats {
		note := f.QualityLabel
		if note == "" {
			note = strings.TrimPrefix(strings.ToLower(f.AudioQuality), "audio_quality_")
		}
		if note == "" {
			note = f.Quality
		}
		formats = append(formats, Format{
			Itag:     f.ItagNo,
			Note:     note,
			Ext:      mimeExt(f.MimeType),
			Filesize: f.ContentLength,
		})
	}
	return formats
}

// downloadStream copies a format's stream to path, removing partial files
func downloadStream(ctx context.Context, client videoClient, video *youtube.Video, format *youtube.Format, path string) error {
	stream, _, err := client.GetStreamContext(ctx, video, format)
	if err != nil {
		return err
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, stream); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}
