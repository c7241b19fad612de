// Package profile keeps the user's display details in the cache store and
// derives the profile screen's habit statistics.
package profile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/brk3/habitkeeper/pkg/habit"
)

const maxFieldLength = 60

var ErrTooLong = fmt.Errorf("profile fields are limited to %d characters", maxFieldLength)

type Profile struct {
	Username     string `json:"username"`
	Location     string `json:"location"`
	ProfileImage string `json:"profile_image,omitempty"`
}

func Defaults() Profile {
	return Profile{Username: "Username", Location: "Location"}
}

// Stats summarises the user's habits as of today.
type Stats struct {
	TotalHabits    int `json:"total_habits"`
	CompletedToday int `json:"completed_today"`
	// CompletionRate is the rounded percentage of habits completed today.
	CompletionRate int `json:"completion_rate"`
}

// HabitLister is satisfied by the tracker; habits come back with
// CompletedToday set for the current day.
type HabitLister interface {
	ListHabits(ctx context.Context, userID string) ([]habit.Habit, error)
}

type Service struct {
	cache  cache.Store
	habits HabitLister
}

func New(c cache.Store, habits HabitLister) *Service {
	return &Service{cache: c, habits: habits}
}

func key(userID string) string {
	return cache.UserKey(userID, "userData")
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	p := Defaults()
	if _, err := s.cache.Get(ctx, key(userID), &p); err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	return p, nil
}

// Update merges in. Blank fields keep their current value, so a client can
// change the username without resending the location.
func (s *Service) Update(ctx context.Context, userID string, in Profile) (Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Location = strings.TrimSpace(in.Location)
	in.ProfileImage = strings.TrimSpace(in.ProfileImage)
	if utf8.RuneCountInString(in.Username) > maxFieldLength || utf8.RuneCountInString(in.Location) > maxFieldLength {
		return Profile{}, ErrTooLong
	}

	p, err := cache.Update(ctx, s.cache, key(userID), func(p *Profile, found bool) error {
		if !found {
			*p = Defaults()
		}
		if in.Username != "" {
			p.Username = in.Username
		}
		if in.Location != "" {
			p.Location = in.Location
		}
		if in.ProfileImage != "" {
			p.ProfileImage = in.ProfileImage
		}
		return nil
	})
	if err != nil {
		return Profile{}, fmt.Errorf("saving profile: %w", err)
	}
	return p, nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	if s.habits == nil {
		return Stats{}, errors.New("profile stats need a habit source")
	}
	habits, err := s.habits.ListHabits(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{TotalHabits: len(habits)}
	for _, h := range habits {
		if h.CompletedToday {
			st.CompletedToday++
		}
	}
	if st.TotalHabits > 0 {
		st.CompletionRate = int(math.Round(float64(st.CompletedToday) * 100 / float64(st.TotalHabits)))
	}
	return st, nil
}
