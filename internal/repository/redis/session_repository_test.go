package redis

import (
	"context"
	"os"
	"testing"

	"lessonplan-bot-be/internal/repository/contract"
	"lessonplan-bot-be/pkg/store"

	goredis "github.com/redis/go-redis/v9"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "lessonplan:session:123", Key("123"))
}

func TestEncodeDecode_KeepsPendingAndVersion(t *testing.T) {
	in := &store.Session{
		ChatID:       "9",
		State:        store.StateAwaitChapter,
		TemplatePath: "/t/9.docx",
		Pending:      &store.LessonQuery{Grade: "Grade 6", Subject: "Math"},
		Version:      4,
	}

	raw, err := encode(in)
	require.NoError(t, err)
	out, err := decode(raw)
	require.NoError(t, err)

	assert.Equal(t, in, out)
	assert.NotContains(t, string(raw), `"chapter":`, "empty answers are omitted")
}

func TestDecode_Invalid(t *testing.T) {
	_, err := decode([]byte("{"))
	assert.Error(t, err)
}

func newIntegrationRepo(t *testing.T) *SessionRepository {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opt, err := goredis.ParseURL(url)
	require.NoError(t, err)
	rdb := goredis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return NewSessionRepository(rdb, 0)
}

func TestCompareAndSwap_Integration(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	chatID := "it-" + t.Name()
	t.Cleanup(func() { repo.rdb.Del(ctx, Key(chatID)) })

	first := store.NewSession(chatID)
	require.NoError(t, repo.CompareAndSwap(ctx, first, 0))
	assert.Equal(t, uint64(1), first.Version)

	stale := store.NewSession(chatID)
	assert.ErrorIs(t, repo.CompareAndSwap(ctx, stale, 0), contract.ErrVersionConflict)

	next := first.Clone()
	next.State = store.StateAwaitGrade
	next.Pending = &store.LessonQuery{}
	require.NoError(t, repo.CompareAndSwap(ctx, next, 1))

	got, found, err := repo.Get(ctx, chatID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, store.StateAwaitGrade, got.State)
	assert.Equal(t, uint64(2), got.Version)

	require.NoError(t, repo.Put(ctx, store.NewSession(chatID)))
	got, _, err = repo.Get(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Version)
}
