package commands

import (
	"context"

	"github.com/Strum355/log"
)

type chatError struct {
	err     error
	message string
	// status is the placeholder to edit, nil replies to the event instead
	status *MessageRef
}

// Handle logs the error and shows its message in the chat
func (e *chatError) Handle(ctx context.Context, m Messenger, ev Event) {
	log.WithContext(ctx).WithError(e.err).Error(e.message)
	if e.status != nil {
		if err := m.Edit(ctx, *e.status, e.message, nil); err == nil {
			return
		}
	}
	if _, err := m.Reply(ctx, ev.ChatID, ev.MessageID, e.message, nil); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to report error to chat")
	}
}
