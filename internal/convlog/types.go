// Package convlog persists the conversation as an append-only log of turns.
package convlog

import (
	"context"
	"time"
)

// DefaultRecentLimit is used when a caller passes a non-positive limit.
const DefaultRecentLimit = 20

// Turn is one persisted (user message, assistant response) exchange. Turns
// are immutable once appended; ids are assigned by the store and strictly
// increase in insertion order.
type Turn struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserText  string    `json:"user_text"`
	AIText    string    `json:"ai_text"`
}

// Store is an append-only conversation log. There is deliberately no update
// or delete: history recall depends on the log never being rewritten.
//
// Recent returns up to limit of the most recently appended turns in
// chronological (oldest-first) order. Within one process a Recent call
// issued after Append observes the appended turn.
type Store interface {
	Append(ctx context.Context, userText, aiText string) (Turn, error)
	Recent(ctx context.Context, limit int) ([]Turn, error)
	Close() error
}
