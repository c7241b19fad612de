// Package prefs stores per-user UI state such as the theme and the last tab
// viewed. None of it is authoritative data; it can be reset at any time.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/brk3/habitkeeper/internal/logger"
)

var ErrUnknownTab = errors.New("unknown tab")

var tabs = map[string]bool{
	"home":      true,
	"habits":    true,
	"community": true,
	"profile":   true,
}

type Preferences struct {
	DarkMode bool   `json:"dark_mode"`
	LastTab  string `json:"last_tab"`
}

// validTab reports whether tab names a known screen. Empty means the default.
func validTab(tab string) bool {
	return tab == "" || tabs[tab]
}

func Defaults() Preferences {
	return Preferences{LastTab: "home"}
}

type Service struct {
	cache cache.Store
}

func New(c cache.Store) *Service {
	return &Service{cache: c}
}

func key(userID string) string {
	return cache.UserKey(userID, "prefs")
}

func (s *Service) Get(ctx context.Context, userID string) (Preferences, error) {
	p := Defaults()
	if _, err := s.cache.Get(ctx, key(userID), &p); err != nil {
		return Preferences{}, fmt.Errorf("loading preferences: %w", err)
	}
	return p, nil
}

func (s *Service) Put(ctx context.Context, userID string, p Preferences) (Preferences, error) {
	return s.update(ctx, userID, func(cur *Preferences) { *cur = p })
}

func (s *Service) update(ctx context.Context, userID string, fn func(*Preferences)) (Preferences, error) {
	p, err := cache.Update(ctx, s.cache, key(userID), func(p *Preferences, found bool) error {
		if !found {
			*p = Defaults()
		}
		fn(p)
		if p.LastTab == "" {
			p.LastTab = Defaults().LastTab
		}
		if !validTab(p.LastTab) {
			return fmt.Errorf("%w %q", ErrUnknownTab, p.LastTab)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnknownTab) {
			return Preferences{}, err
		}
		return Preferences{}, fmt.Errorf("saving preferences: %w", err)
	}
	return p, nil
}

func (s *Service) ToggleDarkMode(ctx context.Context, userID string) (Preferences, error) {
	return s.update(ctx, userID, func(p *Preferences) { p.DarkMode = !p.DarkMode })
}

func (s *Service) SetLastTab(ctx context.Context, userID, tab string) (Preferences, error) {
	return s.update(ctx, userID, func(p *Preferences) { p.LastTab = tab })
}

// Reset removes every cached key of the user: preferences, notifications,
// profile data and anything stored later under the same prefix.
func (s *Service) Reset(ctx context.Context, userID string) error {
	keys, err := s.cache.Keys(ctx, cache.UserPrefix(userID))
	if err != nil {
		return fmt.Errorf("listing cached keys: %w", err)
	}
	for _, k := range keys {
		if err := s.cache.Remove(ctx, k); err != nil {
			return fmt.Errorf("removing %s: %w", k, err)
		}
	}
	logger.Info("Cleared cached user state", "user_id", userID, "keys", len(keys))
	return nil
}
