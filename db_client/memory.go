package db_client

import (
	"context"
	"sync"

	"Cadence/utils"
)

type memory struct {
	mu       sync.Mutex
	settings map[string]ChatSettings
	stats    map[string]UserStats
}

// NewMemoryStore returns a Store that lives only as long as the process
func NewMemoryStore() Store {
	return &memory{
		settings: make(map[string]ChatSettings),
		stats:    make(map[string]UserStats),
	}
}

func (m *memory) IsOnOff(toggle Toggle) bool {
	return isOnOff(toggle)
}

func (m *memory) GetChatSettings(_ context.Context, chatID string) (ChatSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.settings[chatID]; ok {
		return s, nil
	}
	return DefaultChatSettings(), nil
}

func (m *memory) SetChatSettings(_ context.Context, chatID string, update SettingsUpdate) (ChatSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.settings[chatID]
	if !ok {
		s = DefaultChatSettings()
	}
	s = update.apply(s)
	m.settings[chatID] = s
	return s, nil
}

func (m *memory) AddToHistory(_ context.Context, entry HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats[entry.UserID]
	stats.SongsPlayed++
	stats.TimeListened += utils.DurationToSeconds(entry.Track.Duration)
	m.stats[entry.UserID] = stats
	return nil
}

func (m *memory) GetUserStats(_ context.Context, userID string) (UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats[userID], nil
}

func (m *memory) Close() error {
	return nil
}
