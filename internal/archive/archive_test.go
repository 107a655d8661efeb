package archive

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestStore_RecordAndRecentEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := models.NewEvent(models.EventProfileCreated, time.Now().UTC(), map[string]interface{}{
		"identity": "alice",
		"username": "Alice",
		"bio":      "hello",
	})
	second := models.NewEvent(models.EventPostCreated, time.Now().UTC(), map[string]interface{}{
		"post_id": 1,
		"author":  "alice",
	})

	require.NoError(t, store.Record(ctx, first, 0))
	require.NoError(t, store.Record(ctx, second, 0))

	events, err := store.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, second.ID, events[0].EventID)
	assert.Equal(t, string(models.EventPostCreated), events[0].Type)
	assert.Contains(t, events[0].Payload, "alice")
	assert.Equal(t, first.ID, events[1].EventID)
}

func TestStore_LikeProducesCreditRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	like := models.NewEvent(models.EventReactionAdded, time.Now().UTC(), map[string]interface{}{
		"post_id": 1,
		"reactor": "bob",
		"liked":   true,
		"author":  "alice",
	})
	require.NoError(t, store.Record(ctx, like, 1_000_000_000))

	credits, err := store.CreditsFor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, like.ID, credits[0].EventID)
	assert.Equal(t, int64(1_000_000_000), credits[0].Amount)
}

func TestStore_DislikeProducesNoCredit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	dislike := models.NewEvent(models.EventReactionAdded, time.Now().UTC(), map[string]interface{}{
		"post_id": 1,
		"reactor": "bob",
		"liked":   false,
		"author":  "alice",
	})
	require.NoError(t, store.Record(ctx, dislike, 1_000_000_000))

	credits, err := store.CreditsFor(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, credits)
}

func TestStore_DuplicateEventIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev := models.NewEvent(models.EventFollowed, time.Now().UTC(), map[string]interface{}{
		"follower": "bob",
		"target":   "alice",
	})
	require.NoError(t, store.Record(ctx, ev, 0))
	assert.Error(t, store.Record(ctx, ev, 0))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.Error(t, err)
}
