package storage

import (
	"errors"

	"github.com/brk3/habitkeeper/pkg/habit"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// API key scopes. A read key may only call read-only endpoints.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// APIKey is the record kept under the sha256 hex of a key; the key itself
// is never stored.
type APIKey struct {
	Hash      string `json:"-"`
	UserID    string `json:"user_id"`
	Scope     string `json:"scope"`
	CreatedAt int64  `json:"created_at"`
}

// UpdateFunc mutates a habit in place and returns the progress record to
// store with it. prev is nil when no progress record exists yet. Returning
// an error aborts the whole update.
type UpdateFunc func(h *habit.Habit, prev *habit.HabitProgress) (habit.HabitProgress, error)

type Store interface {
	// CreateHabit stores a new habit together with the progress returned by
	// fn in one transaction. It returns ErrExists if the id is taken.
	CreateHabit(userID string, h habit.Habit, fn UpdateFunc) (habit.Habit, habit.HabitProgress, error)
	GetHabit(userID, habitID string) (habit.Habit, error)
	ListHabits(userID string) ([]habit.Habit, error)
	DeleteHabit(userID, habitID string) error

	GetProgress(userID, habitID string) (habit.HabitProgress, bool, error)
	// UpdateHabit reads the habit and its progress, applies fn and writes
	// both back atomically. It returns ErrNotFound for unknown habits.
	UpdateHabit(userID, habitID string, fn UpdateFunc) (habit.Habit, habit.HabitProgress, error)

	PutAPIKey(k APIKey) error
	GetAPIKey(keyHash string) (APIKey, bool, error)
	// ListAPIKeys returns the user's keys ordered by hash.
	ListAPIKeys(userID string) ([]APIKey, error)
	DeleteAPIKey(keyHash string) error

	Close() error
}
