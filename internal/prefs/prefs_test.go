package prefs

import (
	"context"
	"testing"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_DefaultsAndToggle(t *testing.T) {
	s := New(cache.NewMemory())
	ctx := context.Background()

	p, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)

	p, err = s.ToggleDarkMode(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, p.DarkMode)
	assert.Equal(t, "home", p.LastTab)

	p, err = s.ToggleDarkMode(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, p.DarkMode)

	_, err = s.ToggleDarkMode(ctx, "alice")
	require.NoError(t, err)
	other, err := s.Get(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, other.DarkMode)
}

func TestPreferences_LastTab(t *testing.T) {
	s := New(cache.NewMemory())
	ctx := context.Background()

	p, err := s.SetLastTab(ctx, "alice", "community")
	require.NoError(t, err)
	assert.Equal(t, "community", p.LastTab)

	_, err = s.SetLastTab(ctx, "alice", "settings-modal")
	assert.ErrorIs(t, err, ErrUnknownTab)

	p, err = s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "community", p.LastTab)
}

func TestPreferences_PutDefaultsTab(t *testing.T) {
	s := New(cache.NewMemory())
	ctx := context.Background()

	p, err := s.Put(ctx, "alice", Preferences{DarkMode: true})
	require.NoError(t, err)
	assert.Equal(t, Preferences{DarkMode: true, LastTab: "home"}, p)
}

func TestPreferences_ResetClearsEveryUserKey(t *testing.T) {
	mem := cache.NewMemory()
	s := New(mem)
	ctx := context.Background()

	_, err := s.ToggleDarkMode(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, mem.Set(ctx, cache.UserKey("alice", "notifications"), []string{"x"}))
	require.NoError(t, mem.Set(ctx, cache.UserKey("alice", "userData"), map[string]string{"username": "al"}))
	require.NoError(t, mem.Set(ctx, cache.UserKey("alice", "something-new"), 1))
	require.NoError(t, mem.Set(ctx, cache.UserKey("bob", "prefs"), Preferences{DarkMode: true}))
	require.NoError(t, mem.Set(ctx, "community:posts", []string{"shared"}))

	require.NoError(t, s.Reset(ctx, "alice"))

	keys, err := mem.Keys(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cache.UserKey("bob", "prefs"), "community:posts"}, keys)

	p, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}
