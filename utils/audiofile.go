package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// mediaFilePattern matches "{videoID}.{ext}" plus the partial files yt-dlp leaves behind
var mediaFilePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}\.[A-Za-z0-9]+(\.part|\.ytdl)?$`)

// GetMediaFile returns the cache path of a downloaded video or audio stream
func GetMediaFile(dir, videoID, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s", videoID, ext))
}

// IsMediaFile reports whether name follows the GetMediaFile naming
func IsMediaFile(name string) bool {
	return mediaFilePattern.MatchString(name)
}

// GetMediaID recovers the video ID from a cache path
func GetMediaID(path string) string {
	id, _, _ := strings.Cut(filepath.Base(path), ".")
	return id
}

// Truncate shortens s to max runes, appending an ellipsis when cut
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
