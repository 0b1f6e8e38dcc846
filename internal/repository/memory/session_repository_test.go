package memory

import (
	"context"
	"sync"
	"testing"

	"lessonplan-bot-be/internal/repository/contract"
	"lessonplan-bot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_GetMissing(t *testing.T) {
	repo := NewSessionRepository(0)

	s, found, err := repo.Get(context.Background(), "nope")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, s)
}

func TestSessionRepository_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)

	first := store.NewSession("1")
	require.NoError(t, repo.CompareAndSwap(ctx, first, 0))
	assert.Equal(t, uint64(1), first.Version)

	stale := store.NewSession("1")
	assert.ErrorIs(t, repo.CompareAndSwap(ctx, stale, 0), contract.ErrVersionConflict)

	loaded, found, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	loaded.State = store.StateAwaitText
	require.NoError(t, repo.CompareAndSwap(ctx, loaded, 1))
	assert.Equal(t, uint64(2), loaded.Version)

	assert.Equal(t, 1, repo.Count())
}

func TestSessionRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)
	require.NoError(t, repo.Put(ctx, &store.Session{ChatID: "1", State: store.StateAwaitGrade, Pending: &store.LessonQuery{}}))

	s, _, _ := repo.Get(ctx, "1")
	s.Pending.Grade = "mutated"

	again, _, _ := repo.Get(ctx, "1")
	assert.Equal(t, "", again.Pending.Grade)
}

func TestSessionRepository_ConcurrentCASOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)
	require.NoError(t, repo.Put(ctx, store.NewSession("1")))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := &store.Session{ChatID: "1", State: store.StateIdle}
			if repo.CompareAndSwap(ctx, next, 1) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}
