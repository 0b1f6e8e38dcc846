package contract

import (
	"context"
	"errors"

	"lessonplan-bot-be/pkg/store"
)

// ErrVersionConflict is returned by CompareAndSwap when another writer got there first.
var ErrVersionConflict = errors.New("session version conflict")

// SessionRepository stores per-chat conversation state.
type SessionRepository interface {
	// Get returns the stored session, or found=false for an unseen chat.
	Get(ctx context.Context, chatID string) (session *store.Session, found bool, err error)

	// Put writes unconditionally and bumps the version.
	Put(ctx context.Context, session *store.Session) error

	// CompareAndSwap writes next only if the stored version still equals
	// expectedVersion (0 meaning "not stored yet"). On success next.Version is
	// updated; on a lost race it returns ErrVersionConflict.
	CompareAndSwap(ctx context.Context, next *store.Session, expectedVersion uint64) error
}
