package queue

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is the display state of one in-flight download
type Entry struct {
	ID     uuid.UUID // Identifies the entry for later updates
	Title  string    // Title of the media being fetched
	Status string    // Free-form progress text
}

// Queue tracks in-flight downloads per chat. It is display state only.
type Queue struct {
	chats map[string][]*Entry // Maps chat ID to its in-flight downloads
	mu    sync.Mutex          // Mutex to protect concurrent access
}

// New returns an empty download queue
func New() *Queue {
	return &Queue{chats: make(map[string][]*Entry)}
}

// Enqueue adds an entry for a chat and returns its ID
func (q *Queue) Enqueue(chatID, title, status string) uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := &Entry{
		ID:     uuid.New(),
		Title:  title,
		Status: status,
	}
	q.chats[chatID] = append(q.chats[chatID], entry)
	return entry.ID
}

// Update changes the title and status of an entry. Empty values leave the
// field as it was. Unknown entries are ignored.
func (q *Queue) Update(chatID string, id uuid.UUID, title, status string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entry := range q.chats[chatID] {
		if entry.ID != id {
			continue
		}
		if title != "" {
			entry.Title = title
		}
		if status != "" {
			entry.Status = status
		}
		return
	}
}

// Remove drops an entry, deleting the chat once it has none left
func (q *Queue) Remove(chatID string, id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.chats[chatID]
	for idx, entry := range entries {
		if entry.ID == id {
			entries = append(entries[:idx], entries[idx+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(q.chats, chatID)
		return
	}
	q.chats[chatID] = entries
}

// List returns a copy of a chat's entries in enqueue order
func (q *Queue) List(chatID string) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]Entry, 0, len(q.chats[chatID]))
	for _, entry := range q.chats[chatID] {
		entries = append(entries, *entry)
	}
	return entries
}

// Clear forgets every chat's entries
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for chatID := range q.chats {
		delete(q.chats, chatID)
	}
}
