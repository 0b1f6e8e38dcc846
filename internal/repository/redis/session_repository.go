package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lessonplan-bot-be/internal/repository/contract"
	"lessonplan-bot-be/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "lessonplan:session:"

// SessionRepository shares sessions between instances through Redis.
// CompareAndSwap uses WATCH/MULTI so concurrent writers cannot interleave.
type SessionRepository struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionRepository(rdb *goredis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

// Key returns the Redis key holding a chat's session.
func Key(chatID string) string {
	return keyPrefix + chatID
}

func (r *SessionRepository) Get(ctx context.Context, chatID string) (*store.Session, bool, error) {
	raw, err := r.rdb.Get(ctx, Key(chatID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading session %s: %w", chatID, err)
	}
	session, err := decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decoding session %s: %w", chatID, err)
	}
	return session, true, nil
}

func (r *SessionRepository) Put(ctx context.Context, session *store.Session) error {
	key := Key(session.ChatID)
	return r.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := versionOf(ctx, tx, key)
		if err != nil {
			return err
		}
		return r.write(ctx, tx, key, session, current+1)
	}, key)
}

func (r *SessionRepository) CompareAndSwap(ctx context.Context, next *store.Session, expectedVersion uint64) error {
	key := Key(next.ChatID)
	err := r.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := versionOf(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return contract.ErrVersionConflict
		}
		return r.write(ctx, tx, key, next, expectedVersion+1)
	}, key)
	if errors.Is(err, goredis.TxFailedErr) {
		return contract.ErrVersionConflict
	}
	return err
}

func (r *SessionRepository) write(ctx context.Context, tx *goredis.Tx, key string, session *store.Session, version uint64) error {
	stored := session.Clone()
	stored.Version = version
	raw, err := encode(stored)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.ChatID, err)
	}
	_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, key, raw, r.ttl)
		return nil
	})
	if err != nil {
		return err
	}
	session.Version = version
	return nil
}

func versionOf(ctx context.Context, tx *goredis.Tx, key string) (uint64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", key, err)
	}
	session, err := decode(raw)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", key, err)
	}
	return session.Version, nil
}

func encode(s *store.Session) ([]byte, error) {
	return json.Marshal(s)
}

func decode(raw []byte) (*store.Session, error) {
	var s store.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
