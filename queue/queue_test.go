package queue

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEnqueue(t *testing.T) {
	q := New()

	id := q.Enqueue("chat-1", "Song", "Searching")

	entries := q.List("chat-1")
	assert.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, "Song", entries[0].Title)
	assert.Equal(t, "Searching", entries[0].Status)
}

func TestEnqueue_MultipleEntries(t *testing.T) {
	q := New()

	q.Enqueue("chat-1", "song1", "a")
	q.Enqueue("chat-1", "song2", "b")
	q.Enqueue("chat-2", "song3", "c")

	entries := q.List("chat-1")
	assert.Len(t, entries, 2)
	assert.Equal(t, "song1", entries[0].Title)
	assert.Equal(t, "song2", entries[1].Title)
	assert.Len(t, q.List("chat-2"), 1)
}

func TestUpdate(t *testing.T) {
	q := New()
	id := q.Enqueue("chat-1", "", "Searching")

	q.Update("chat-1", id, "Real title", "")
	q.Update("chat-1", id, "", "Downloading")

	entries := q.List("chat-1")
	assert.Equal(t, "Real title", entries[0].Title)
	assert.Equal(t, "Downloading", entries[0].Status)
}

func TestUpdate_UnknownEntry(t *testing.T) {
	q := New()
	q.Enqueue("chat-1", "song", "a")

	q.Update("chat-1", uuid.New(), "other", "b")
	q.Update("chat-9", uuid.New(), "other", "b")

	assert.Equal(t, "song", q.List("chat-1")[0].Title)
	assert.Empty(t, q.List("chat-9"))
}

func TestRemove(t *testing.T) {
	q := New()
	first := q.Enqueue("chat-1", "song1", "a")
	second := q.Enqueue("chat-1", "song2", "b")

	q.Remove("chat-1", first)
	entries := q.List("chat-1")
	assert.Len(t, entries, 1)
	assert.Equal(t, second, entries[0].ID)

	q.Remove("chat-1", second)
	assert.Empty(t, q.List("chat-1"))
	_, exists := q.chats["chat-1"]
	assert.False(t, exists)
}

func TestList_ReturnsCopy(t *testing.T) {
	q := New()
	q.Enqueue("chat-1", "song", "a")

	entries := q.List("chat-1")
	entries[0].Title = "mutated"

	assert.Equal(t, "song", q.List("chat-1")[0].Title)
}

func TestClear(t *testing.T) {
	q := New()
	q.Enqueue("chat-1", "song1", "a")
	q.Enqueue("chat-2", "song2", "b")

	q.Clear()

	assert.Empty(t, q.List("chat-1"))
	assert.Empty(t, q.List("chat-2"))
}

func TestConcurrentAccess(t *testing.T) {
	q := New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := q.Enqueue("chat-1", "song", "a")
			q.Update("chat-1", id, "", "b")
			_ = q.List("chat-1")
			q.Remove("chat-1", id)
		}()
	}
	wg.Wait()

	assert.Empty(t, q.List("chat-1"))
}
