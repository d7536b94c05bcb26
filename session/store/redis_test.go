package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/session"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "test:thread:", ttl)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Hour)
	require.NoError(t, store.Ping(ctx))

	record := session.NewRecord("thread-1")
	record.Append(
		message.NewMessage(message.RoleUser, "Why was CLM-2026-022 rejected?"),
		message.NewToolCallMessage("", []message.ToolCall{{ID: "c1", Name: "search_claim", Args: map[string]any{"claim_id": "CLM-2026-022"}}}),
	)
	require.NoError(t, store.Save(ctx, record))

	assert.True(t, mr.Exists("test:thread:thread-1"))
	assert.Equal(t, time.Hour, mr.TTL("test:thread:thread-1"))

	loaded, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "Why was CLM-2026-022 rejected?", loaded.Messages[0].Content)
	assert.Equal(t, "CLM-2026-022", loaded.Messages[1].ToolCalls[0].Args["claim_id"])

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-1"}, ids)
}

func TestRedisStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, 0)

	_, err := store.Load(ctx, "nope")
	assert.ErrorIs(t, err, errorskg.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "nope"), errorskg.ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, nil), errorskg.ErrInvalidInput)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Minute)

	require.NoError(t, store.Save(ctx, session.NewRecord("a")))
	require.NoError(t, store.Save(ctx, session.NewRecord("b")))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mr.FastForward(2 * time.Minute)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	members, err := mr.Members("test:thread:index")
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestRedisStoreWithManager(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, time.Hour)
	m := session.NewManager(store)

	for _, text := range []string{"one", "two"} {
		err := m.Update(ctx, session.DefaultThreadID, func(r *session.Record) error {
			r.Append(message.NewMessage(message.RoleUser, text))
			return nil
		})
		require.NoError(t, err)
	}

	history, err := m.History(ctx, session.DefaultThreadID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[1].Content)
}
