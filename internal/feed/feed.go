// Package feed keeps each user's in-app notification list in the cache store.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const (
	TypeHabitCreated    = "habit_created"
	TypeStreakMilestone = "streak_milestone"
)

type Notification struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Type        string `json:"type"`
	Read        bool   `json:"read"`
	Icon        string `json:"icon"`
	IconColor   string `json:"icon_color"`
	IconBgColor string `json:"icon_bg_color"`
	CreatedAt   int64  `json:"created_at"`
	// Time is a relative label such as "2 hours ago", filled in by List.
	Time string `json:"time,omitempty"`
}

type Feed struct {
	cache cache.Store
	now   func() time.Time
}

func New(c cache.Store) *Feed {
	return &Feed{cache: c, now: time.Now}
}

func key(userID string) string {
	return cache.UserKey(userID, "notifications")
}

func (f *Feed) load(ctx context.Context, userID string) ([]Notification, error) {
	var list []Notification
	if _, err := f.cache.Get(ctx, key(userID), &list); err != nil {
		return nil, fmt.Errorf("loading notifications: %w", err)
	}
	if list == nil {
		list = []Notification{}
	}
	return list, nil
}

// update applies fn to the stored list in one cache transaction.
func (f *Feed) update(ctx context.Context, userID string, fn func(list *[]Notification) error) error {
	_, err := cache.Update(ctx, f.cache, key(userID), func(list *[]Notification, _ bool) error {
		if *list == nil {
			*list = []Notification{}
		}
		return fn(list)
	})
	if err != nil && !errors.Is(err, cache.ErrUnchanged) {
		return fmt.Errorf("saving notifications: %w", err)
	}
	return err
}

// List returns the user's notifications, newest first.
func (f *Feed) List(ctx context.Context, userID string) ([]Notification, error) {
	list, err := f.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := f.now()
	for i := range list {
		list[i].Time = humanize.RelTime(time.Unix(list[i].CreatedAt, 0), now, "ago", "from now")
	}
	return list, nil
}

// Add prepends n, assigning an id, default icon and timestamp when unset.
func (f *Feed) Add(ctx context.Context, userID string, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = f.now().Unix()
	}
	if n.Icon == "" {
		n.Icon, n.IconColor, n.IconBgColor = "star", "#FFC107", "#FFF9E6"
	}
	n.Time = ""

	err := f.update(ctx, userID, func(list *[]Notification) error {
		*list = append([]Notification{n}, *list...)
		return nil
	})
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

// MarkRead reports whether a notification with id existed.
func (f *Feed) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	err := f.update(ctx, userID, func(list *[]Notification) error {
		for i := range *list {
			if (*list)[i].ID == id {
				(*list)[i].Read = true
				return nil
			}
		}
		return cache.ErrUnchanged
	})
	switch {
	case errors.Is(err, cache.ErrUnchanged):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (f *Feed) MarkAllRead(ctx context.Context, userID string) error {
	return f.update(ctx, userID, func(list *[]Notification) error {
		for i := range *list {
			(*list)[i].Read = true
		}
		return nil
	})
}

func (f *Feed) Clear(ctx context.Context, userID string) error {
	if err := f.cache.Remove(ctx, key(userID)); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}

func (f *Feed) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := f.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n, nil
}
