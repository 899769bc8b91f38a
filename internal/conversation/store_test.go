package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession(id string) *Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Session{
		ID:        id,
		Step:      StepQuoteForm,
		Messages:  []Message{{ID: "m1", Text: "hi", Timestamp: now, Type: MessageText}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleSession("s1")))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StepQuoteForm, got.Step)
	require.Len(t, got.Messages, 1)

	// mutating the returned copy must not leak into the store
	got.Step = StepCompleted
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StepQuoteForm, again.Step)
}

func TestMemoryStore_Expires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession("old")))
	now = now.Add(2 * time.Minute)

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleSession("new")))
	store.mu.RLock()
	_, stillThere := store.sessions["old"]
	store.mu.RUnlock()
	assert.False(t, stillThere, "expired session should be swept on save")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, 30*time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleSession("abc")))
	assert.True(t, mr.Exists("chat:session:abc"))
	assert.Equal(t, 30*time.Minute, mr.TTL("chat:session:abc"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, StepQuoteForm, got.Step)

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("chat:session:bad", "{not json"))

	_, err := NewRedisStore(client, 0).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestEngineWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine := NewEngine(Config{Store: NewRedisStore(client, 0), Dispatcher: &spyDispatcher{}})
	ctx := context.Background()
	start, err := engine.Start(ctx)
	require.NoError(t, err)

	_, err = engine.SelectOption(ctx, start.Session.ID, OptionEmergency)
	require.NoError(t, err)

	session, err := engine.Get(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, StepEmergencyForm, session.Step)
	assert.Len(t, session.Messages, 3)
}
