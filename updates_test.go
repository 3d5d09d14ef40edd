package chatseal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatseal/client-go/persist"
)

func newQueueFixture(t *testing.T) (*updateQueue, MessageStore) {
	t.Helper()
	store := persist.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	msgStore := NewMessageStore(store)
	q := newUpdateQueue(msgStore, testLogger())
	t.Cleanup(q.close)
	return q, msgStore
}

// waitForUpdate posts through the queue and blocks until the update with
// the given message ID has been applied and notified.
func waitForUpdate(t *testing.T, applied <-chan MessageUpdate, messageID string) MessageUpdate {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-applied:
			if u.MessageID == messageID {
				return u
			}
		case <-deadline:
			t.Fatalf("timed out waiting for update of %s", messageID)
		}
	}
}

func TestUpdateQueue_AppliesUpdates(t *testing.T) {
	ctx := context.Background()
	q, store := newQueueFixture(t)

	require.NoError(t, store.SaveMessage(ctx, &ChatMessage{
		ID: "m1", ChatID: "chat-1", IsEncrypted: true, CreatedAt: time.Now().UTC(),
	}))

	applied := make(chan MessageUpdate, 8)
	unsubscribe := q.subscribe(func(u MessageUpdate) { applied <- u })
	defer unsubscribe()

	q.post(MessageUpdate{MessageID: "m1", ChatID: "chat-1", Text: "decrypted!"})
	waitForUpdate(t, applied, "m1")

	m, err := store.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "decrypted!", m.Text)
	assert.False(t, m.TextIsPlaceholder)
}

func TestUpdateQueue_PlaceholderNeverClobbersPlaintext(t *testing.T) {
	ctx := context.Background()
	q, store := newQueueFixture(t)

	require.NoError(t, store.SaveMessage(ctx, &ChatMessage{
		ID: "m1", ChatID: "chat-1", IsEncrypted: true, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.SaveMessage(ctx, &ChatMessage{
		ID: "marker", ChatID: "chat-1", IsEncrypted: true, CreatedAt: time.Now().UTC(),
	}))

	applied := make(chan MessageUpdate, 8)
	unsubscribe := q.subscribe(func(u MessageUpdate) { applied <- u })
	defer unsubscribe()

	q.post(MessageUpdate{MessageID: "m1", Text: "the real text"})
	waitForUpdate(t, applied, "m1")

	// A straggling placeholder from a slower decrypt attempt.
	q.post(MessageUpdate{MessageID: "m1", Text: PlaceholderUnrecoverable, Placeholder: true, Err: ErrUnrecoverable})

	// The queue is single-writer and ordered: once the marker update has
	// been applied, the placeholder before it has been processed too.
	q.post(MessageUpdate{MessageID: "marker", Text: "done"})
	waitForUpdate(t, applied, "marker")

	m, err := store.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "the real text", m.Text)
	assert.False(t, m.TextIsPlaceholder)
}

func TestUpdateQueue_PlaceholderProgression(t *testing.T) {
	ctx := context.Background()
	q, store := newQueueFixture(t)

	require.NoError(t, store.SaveMessage(ctx, &ChatMessage{
		ID: "m1", ChatID: "chat-1", IsEncrypted: true, CreatedAt: time.Now().UTC(),
	}))

	applied := make(chan MessageUpdate, 8)
	unsubscribe := q.subscribe(func(u MessageUpdate) { applied <- u })
	defer unsubscribe()

	q.post(MessageUpdate{MessageID: "m1", Text: PlaceholderDecrypting, Placeholder: true})
	waitForUpdate(t, applied, "m1")

	m, err := store.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderDecrypting, m.Text)
	assert.True(t, m.TextIsPlaceholder)

	// Resolution replaces the placeholder.
	q.post(MessageUpdate{MessageID: "m1", Text: "resolved"})
	waitForUpdate(t, applied, "m1")

	m, err = store.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "resolved", m.Text)
	assert.False(t, m.TextIsPlaceholder)
}

func TestUpdateQueue_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	q, store := newQueueFixture(t)

	require.NoError(t, store.SaveMessage(ctx, &ChatMessage{
		ID: "m1", ChatID: "chat-1", IsEncrypted: true, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.SaveMessage(ctx, &ChatMessage{
		ID: "m2", ChatID: "chat-1", IsEncrypted: true, CreatedAt: time.Now().UTC(),
	}))

	first := make(chan MessageUpdate, 8)
	unsubscribe := q.subscribe(func(u MessageUpdate) { first <- u })

	second := make(chan MessageUpdate, 8)
	keep := q.subscribe(func(u MessageUpdate) { second <- u })
	defer keep()

	q.post(MessageUpdate{MessageID: "m1", Text: "one"})
	waitForUpdate(t, first, "m1")
	waitForUpdate(t, second, "m1")

	unsubscribe()
	unsubscribe() // safe to call twice

	q.post(MessageUpdate{MessageID: "m2", Text: "two"})
	waitForUpdate(t, second, "m2")

	select {
	case u := <-first:
		t.Fatalf("unsubscribed callback received %+v", u)
	default:
	}
}

func TestUpdateQueue_CloseIsIdempotent(t *testing.T) {
	store := persist.NewMemoryStore()
	defer store.Close()

	q := newUpdateQueue(NewMessageStore(store), testLogger())
	q.close()
	q.close()

	// Posting after close is a silent drop, not a panic.
	q.post(MessageUpdate{MessageID: "m1", Text: "late"})
}
