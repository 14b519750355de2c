package yt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"Cadence/utils"

	"github.com/Strum355/log"
	"github.com/kkdai/youtube/v2"
	"github.com/lrstanley/go-ytdlp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// searchFunc runs a text search and returns yt-dlp flat JSON lines
type searchFunc func(ctx context.Context, query string, limit int) ([]byte, error)

// fetchFunc downloads url to path with yt-dlp
type fetchFunc func(ctx context.Context, url, path string, wantVideo bool) error

// YouTubeManager searches, resolves and downloads YouTube media. Metadata is
// cached in redis when a client is configured.
type YouTubeManager struct {
	client       videoClient
	redis        *redis.Client
	cacheYoutube time.Duration
	dir          string
	search       searchFunc
	fetch        fetchFunc
}

// NewYouTubeManager creates a YouTubeManager. rdb may be nil to disable caching.
func NewYouTubeManager(rdb *redis.Client, dir string) *YouTubeManager {
	return &YouTubeManager{
		client:       &youtube.Client{},
		redis:        rdb,
		cacheYoutube: time.Duration(viper.GetInt("cache.youtube")) * time.Second,
		dir:          dir,
		search:       ytdlpSearch,
		fetch:        ytdlpFetch,
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// Search returns up to limit tracks for a free text query
func (ym *YouTubeManager) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	out, err := ym.search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: searching %q: %v", ErrLookupFailed, query, err)
	}
	tracks := parseSearchResults(out)
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// Resolve looks up a link's metadata. downloadReady reports whether the
// video exposes a stream with audio.
func (ym *YouTubeManager) Resolve(ctx context.Context, link string) (Track, bool, error) {
	videoID, err := VideoID(link)
	if err != nil {
		return Track{}, false, err
	}

	if track, ok := ym.cachedTrack(ctx, videoID); ok {
		return track, true, nil
	}

	video, err := ym.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return Track{}, false, fmt.Errorf("%w: fetching %s: %v", ErrLookupFailed, videoID, err)
	}

	track := trackFromVideo(video)
	ready := len(video.Formats.WithAudioChannels()) > 0
	if ready {
		ym.cacheTrack(ctx, track)
	}
	return track, ready, nil
}

// Formats lists the downloadable streams of a link
func (ym *YouTubeManager) Formats(ctx context.Context, link string) ([]Format, error) {
	videoID, err := VideoID(link)
	if err != nil {
		return nil, err
	}
	video, err := ym.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrLookupFailed, videoID, err)
	}
	return formatsFromVideo(video), nil
}

// Download saves the audio, or the video when wantVideo is set, of a link
// into the download directory. The returned file is the caller's to remove.
func (ym *YouTubeManager) Download(ctx context.Context, link string, wantVideo bool) (string, bool, error) {
	videoID, err := VideoID(link)
	if err != nil {
		return "", false, err
	}
	if err := os.MkdirAll(ym.dir, 0o755); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	path, err := ym.downloadDirect(ctx, videoID, wantVideo)
	if err == nil {
		return path, true, nil
	}
	log.WithError(err).Error("Direct download failed, falling back to yt-dlp")

	ext := "m4a"
	if wantVideo {
		ext = "mp4"
	}
	path = utils.GetMediaFile(ym.dir, videoID, ext)
	if err := ym.fetch(ctx, WatchURL(videoID), path, wantVideo); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return path, true, nil
}

func (ym *YouTubeManager) downloadDirect(ctx context.Context, videoID string, wantVideo bool) (string, error) {
	video, err := ym.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", err
	}
	format, ok := pickFormat(video.Formats, wantVideo)
	if !ok {
		return "", fmt.Errorf("no suitable format for %s", videoID)
	}
	path := utils.GetMediaFile(ym.dir, videoID, mimeExt(format.MimeType))
	if err := downloadStream(ctx, ym.client, video, format, path); err != nil {
		return "", err
	}
	return path, nil
}

func (ym *YouTubeManager) cachedTrack(ctx context.Context, videoID string) (Track, bool) {
	if ym.redis == nil {
		return Track{}, false
	}
	cached, err := ym.redis.Get(ctx, "ytmeta:"+videoID).Result()
	if err != nil || cached == "" {
		return Track{}, false
	}
	var track Track
	if err := json.Unmarshal([]byte(cached), &track); err != nil {
		return Track{}, false
	}
	return track, true
}

func (ym *YouTubeManager) cacheTrack(ctx context.Context, track Track) {
	if ym.redis == nil {
		return
	}
	data, _ := json.Marshal(track)
	if err := ym.redis.Set(ctx, "ytmeta:"+track.ID, data, ym.cacheYoutube).Err(); err != nil {
		log.WithError(err).Error("Unable to cache video metadata")
	}
}

// ytdlpSearch runs "ytsearchN:query" as a flat playlist dump
func ytdlpSearch(ctx context.Context, query string, limit int) ([]byte, error) {
	res, err := ytdlp.New().
		FlatPlaylist().
		DumpJSON().
		Run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, err
	}
	return []byte(res.Stdout), nil
}

// ytdlpFetch downloads url to path with yt-dlp
func ytdlpFetch(ctx context.Context, url, path string, wantVideo bool) error {
	format := "bestaudio[ext=m4a]/bestaudio"
	if wantVideo {
		format = "best[ext=mp4]/best"
	}
	_, err := ytdlp.New().
		Format(format).
		NoPlaylist().
		Output(filepath.Clean(path)).
		Run(ctx, url)
	return err
}
