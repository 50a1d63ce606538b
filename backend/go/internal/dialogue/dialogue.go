// Package dialogue keeps the per-conversation state of the multi-turn
// teaching flow and serializes requests that share a conversation.
package dialogue

import (
	"context"
	"time"

	"jarvis/backend/go/internal/models"
)

// StateStore persists the dialogue state of each conversation. A missing or
// expired entry reads as models.StateNone.
type StateStore interface {
	Get(ctx context.Context, conversationID string) (models.DialogueState, error)
	Set(ctx context.Context, conversationID string, state models.DialogueState, ttl time.Duration) error
	Clear(ctx context.Context, conversationID string) error
}

// Locker grants exclusive access to a conversation. release must be called
// exactly once after a successful Acquire.
type Locker interface {
	Acquire(ctx context.Context, conversationID string) (release func(), err error)
}
