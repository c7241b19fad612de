package community

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(now time.Time) *Board {
	b := New(cache.NewMemory())
	b.now = func() time.Time { return now }
	return b
}

func TestPublish_NewestFirst(t *testing.T) {
	now := time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)
	b := newTestBoard(now)
	ctx := context.Background()

	first, err := b.Publish(ctx, "alice", "@alice", "Day 30 of my morning run!")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	_, err = b.Publish(ctx, "bob", "@bob", "  Meditation works  ")
	require.NoError(t, err)

	posts, err := b.Posts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Meditation works", posts[0].Content)
	assert.Equal(t, "@alice", posts[1].Author)
	assert.Equal(t, "now", posts[1].Time)

	page, err := b.Posts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestPublish_Rejections(t *testing.T) {
	b := newTestBoard(time.Now())
	ctx := context.Background()

	_, err := b.Publish(ctx, "alice", "@alice", "   \n\t")
	assert.ErrorIs(t, err, ErrEmptyPost)
	_, err = b.Publish(ctx, "alice", "@alice", strings.Repeat("x", maxPostLength+1))
	assert.ErrorIs(t, err, ErrPostTooLong)

	posts, err := b.Posts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPublish_KeepsNewest(t *testing.T) {
	b := newTestBoard(time.Now())
	ctx := context.Background()
	for range maxPostsKept + 5 {
		_, err := b.Publish(ctx, "alice", "@alice", "hi")
		require.NoError(t, err)
	}
	posts, err := b.Posts(ctx, maxPostsKept+10)
	require.NoError(t, err)
	assert.Len(t, posts, maxPostsKept)
}

func TestPublish_Concurrent(t *testing.T) {
	b := newTestBoard(time.Now())
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Publish(ctx, "alice", "@alice", "streak!")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	posts, err := b.Posts(ctx, maxPostsKept)
	require.NoError(t, err)
	assert.Len(t, posts, 100)
}

func TestDelete_AuthorOnly(t *testing.T) {
	b := newTestBoard(time.Now())
	ctx := context.Background()

	p, err := b.Publish(ctx, "alice", "@alice", "hello")
	require.NoError(t, err)

	assert.ErrorIs(t, b.Delete(ctx, "bob", p.ID), ErrNotAuthor)
	assert.ErrorIs(t, b.Delete(ctx, "alice", "missing"), ErrNotFound)
	require.NoError(t, b.Delete(ctx, "alice", p.ID))

	posts, err := b.Posts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
