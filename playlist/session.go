package playlist

import (
	"errors"
	"sync"

	"Cadence/yt"
)

var (
	ErrOutOfRange    = errors.New("invalid track index")
	ErrEmptyPlaylist = errors.New("no tracks in playlist")
)

// Direction selects which neighbour Advance moves to
type Direction int

const (
	Next Direction = iota
	Previous
)

// Snapshot is a consistent copy of the session state
type Snapshot struct {
	Playlist     []yt.Track `json:"playlist"`
	CurrentTrack *yt.Track  `json:"current_track"`
	IsPlaying    bool       `json:"is_playing"`
	CurrentIndex int        `json:"current_index"`
}

// Session is the process wide playlist and playback cursor. Every operation
// holds the same lock so readers never see current and index out of sync.
type Session struct {
	mu           sync.Mutex
	tracks       []yt.Track
	currentIndex int
	current      *yt.Track
	isPlaying    bool
}

// NewSession returns an empty, stopped session
func NewSession() *Session {
	return &Session{tracks: []yt.Track{}}
}

// Append adds a track to the end of the playlist and returns the new length.
// The cursor is left alone; the first track of an empty playlist becomes the
// current track so current is only ever absent for an empty playlist.
func (s *Session) Append(track yt.Track) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks = append(s.tracks, track)
	if len(s.tracks) == 1 {
		s.currentIndex = 0
		s.sync()
	}
	return len(s.tracks)
}

// List returns a snapshot of the session
func (s *Session) List() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := make([]yt.Track, len(s.tracks))
	copy(tracks, s.tracks)

	return Snapshot{
		Playlist:     tracks,
		CurrentTrack: s.currentCopy(),
		IsPlaying:    s.isPlaying,
		CurrentIndex: s.currentIndex,
	}
}

// SelectAndPlay moves the cursor to index and marks the session playing
func (s *Session) SelectAndPlay(index int) (yt.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.tracks) {
		return yt.Track{}, ErrOutOfRange
	}
	s.currentIndex = index
	s.sync()
	s.isPlaying = true
	return *s.current, nil
}

// Advance moves the cursor one step in dir, wrapping at both ends
func (s *Session) Advance(dir Direction) (yt.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tracks)
	if n == 0 {
		return yt.Track{}, ErrEmptyPlaylist
	}
	step := 1
	if dir == Previous {
		step = -1
	}
	s.currentIndex = ((s.currentIndex+step)%n + n) % n
	s.sync()
	return *s.current, nil
}

// Remove deletes the track at index. A cursor at or after index moves back
// one place, never below zero.
func (s *Session) Remove(index int) (yt.Track, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.tracks) {
		return yt.Track{}, len(s.tracks), ErrOutOfRange
	}
	removed := s.tracks[index]
	s.tracks = append(s.tracks[:index], s.tracks[index+1:]...)

	if s.currentIndex >= index {
		s.currentIndex = max(0, s.currentIndex-1)
	}
	if len(s.tracks) == 0 {
		s.current = nil
		s.isPlaying = false
	} else {
		s.sync()
	}
	return removed, len(s.tracks), nil
}

// sync points current at the track under the cursor. Caller holds mu and
// guarantees the playlist is non-empty.
func (s *Session) sync() {
	t := s.tracks[s.currentIndex]
	s.current = &t
}

func (s *Session) currentCopy() *yt.Track {
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}
