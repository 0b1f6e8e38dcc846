package memory

import (
	"context"
	"sync"
	"time"

	"lessonplan-bot-be/internal/repository/contract"
	"lessonplan-bot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewSessionRepository keeps sessions in process memory. A ttl of zero keeps
// them until restart.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl / 6
	}
	return &SessionRepository{
		cache: cache.New(expiration, cleanup),
	}
}

func (r *SessionRepository) Get(_ context.Context, chatID string) (*store.Session, bool, error) {
	if x, found := r.cache.Get(chatID); found {
		return x.(*store.Session).Clone(), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Put(_ context.Context, session *store.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.Version = r.versionLocked(session.ChatID) + 1
	r.cache.Set(session.ChatID, session.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) CompareAndSwap(_ context.Context, next *store.Session, expectedVersion uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.versionLocked(next.ChatID) != expectedVersion {
		return contract.ErrVersionConflict
	}
	next.Version = expectedVersion + 1
	r.cache.Set(next.ChatID, next.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) versionLocked(chatID string) uint64 {
	if x, found := r.cache.Get(chatID); found {
		return x.(*store.Session).Version
	}
	return 0
}

// Count reports how many sessions are held.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
