package db_client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"Cadence/yt"
)

var ErrUnknownSetting = errors.New("unknown setting")

// Toggle is a global feature switch
type Toggle int

const (
	DirectDownload Toggle = iota + 1 // /play with a link downloads straight away
	VideoMode                        // /play sends video instead of audio
	QueueEnabled                     // in-flight downloads are listed by /queue
)

// ChatSettings are the per chat preferences
type ChatSettings struct {
	Volume      int  `json:"volume"`
	RepeatMode  bool `json:"repeat_mode"`
	ShuffleMode bool `json:"shuffle_mode"`
	AutoLeave   bool `json:"auto_leave"`
}

// DefaultChatSettings is what a chat gets before it changes anything
func DefaultChatSettings() ChatSettings {
	return ChatSettings{
		Volume:      100,
		RepeatMode:  false,
		ShuffleMode: false,
		AutoLeave:   true,
	}
}

// SettingsUpdate changes only the fields that are set
type SettingsUpdate struct {
	Volume      *int
	RepeatMode  *bool
	ShuffleMode *bool
	AutoLeave   *bool
}

func (u SettingsUpdate) apply(s ChatSettings) ChatSettings {
	if u.Volume != nil {
		s.Volume = *u.Volume
	}
	if u.RepeatMode != nil {
		s.RepeatMode = *u.RepeatMode
	}
	if u.ShuffleMode != nil {
		s.ShuffleMode = *u.ShuffleMode
	}
	if u.AutoLeave != nil {
		s.AutoLeave = *u.AutoLeave
	}
	return s
}

// UserStats summarises a user's play history
type UserStats struct {
	SongsPlayed  int `json:"songs_played"`
	TimeListened int `json:"time_listened"`
}

// HistoryEntry is one delivered track
type HistoryEntry struct {
	ChatID   string
	UserID   string
	Track    yt.Track
	PlayedAt time.Time
}

// Store keeps chat settings and play history
type Store interface {
	IsOnOff(toggle Toggle) bool
	GetChatSettings(ctx context.Context, chatID string) (ChatSettings, error)
	SetChatSettings(ctx context.Context, chatID string, update SettingsUpdate) (ChatSettings, error)
	AddToHistory(ctx context.Context, entry HistoryEntry) error
	GetUserStats(ctx context.Context, userID string) (UserStats, error)
	Close() error
}

// isOnOff holds the toggle defaults shared by every store
func isOnOff(toggle Toggle) bool {
	switch toggle {
	case DirectDownload, QueueEnabled:
		return true
	default:
		return false
	}
}

// ParseUpdate builds an update from a "key value" pair as typed in chat
func ParseUpdate(key, value string) (SettingsUpdate, error) {
	var update SettingsUpdate
	switch key {
	case "volume":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 200 {
			return update, fmt.Errorf("volume must be a number between 0 and 200")
		}
		update.Volume = &n
	case "repeat_mode", "shuffle_mode", "auto_leave":
		b, err := parseSwitch(value)
		if err != nil {
			return update, err
		}
		switch key {
		case "repeat_mode":
			update.RepeatMode = &b
		case "shuffle_mode":
			update.ShuffleMode = &b
		default:
			update.AutoLeave = &b
		}
	default:
		return update, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return update, nil
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", value)
}
