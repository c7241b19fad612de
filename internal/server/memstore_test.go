package server

import (
	"maps"
	"sort"
	"sync"

	"github.com/brk3/habitkeeper/internal/storage"
	"github.com/brk3/habitkeeper/pkg/habit"
)

type memStore struct {
	mu       sync.RWMutex
	habits   map[string]map[string]habit.Habit
	progress map[string]map[string]habit.HabitProgress
	apiKeys  map[string]storage.APIKey
}

func newMemStore() *memStore {
	return &memStore{
		habits:   map[string]map[string]habit.Habit{},
		progress: map[string]map[string]habit.HabitProgress{},
		apiKeys:  map[string]storage.APIKey{},
	}
}

func cloneHabit(h habit.Habit) habit.Habit {
	h.Completions = maps.Clone(h.Completions)
	if h.Completions == nil {
		h.Completions = map[string]bool{}
	}
	return h
}

func (m *memStore) CreateHabit(userID string, h habit.Habit, fn storage.UpdateFunc) (habit.Habit, habit.HabitProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.habits[userID][h.ID]; ok {
		return habit.Habit{}, habit.HabitProgress{}, storage.ErrExists
	}
	h = cloneHabit(h)
	p, err := fn(&h, nil)
	if err != nil {
		return habit.Habit{}, habit.HabitProgress{}, err
	}
	if m.habits[userID] == nil {
		m.habits[userID] = map[string]habit.Habit{}
		m.progress[userID] = map[string]habit.HabitProgress{}
	}
	m.habits[userID][h.ID] = h
	m.progress[userID][h.ID] = p
	return cloneHabit(h), p, nil
}

func (m *memStore) GetHabit(userID, habitID string) (habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.habits[userID][habitID]
	if !ok {
		return habit.Habit{}, storage.ErrNotFound
	}
	return cloneHabit(h), nil
}

func (m *memStore) ListHabits(userID string) ([]habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []habit.Habit{}
	for _, h := range m.habits[userID] {
		out = append(out, cloneHabit(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteHabit(userID, habitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.habits[userID][habitID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.habits[userID], habitID)
	delete(m.progress[userID], habitID)
	return nil
}

func (m *memStore) GetProgress(userID, habitID string) (habit.HabitProgress, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.progress[userID][habitID]
	return p, ok, nil
}

func (m *memStore) UpdateHabit(userID, habitID string, fn storage.UpdateFunc) (habit.Habit, habit.HabitProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.habits[userID][habitID]
	if !ok {
		return habit.Habit{}, habit.HabitProgress{}, storage.ErrNotFound
	}
	h = cloneHabit(h)
	var prev *habit.HabitProgress
	if p, ok := m.progress[userID][habitID]; ok {
		prev = &p
	}
	p, err := fn(&h, prev)
	if err != nil {
		return habit.Habit{}, habit.HabitProgress{}, err
	}
	m.habits[userID][habitID] = h
	if m.progress[userID] == nil {
		m.progress[userID] = map[string]habit.HabitProgress{}
	}
	m.progress[userID][habitID] = p
	return cloneHabit(h), p, nil
}

func (m *memStore) PutAPIKey(k storage.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if k.Scope == "" {
		k.Scope = storage.ScopeWrite
	}
	m.apiKeys[k.Hash] = k
	return nil
}

func (m *memStore) GetAPIKey(keyHash string) (storage.APIKey, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k, ok := m.apiKeys[keyHash]
	return k, ok, nil
}

func (m *memStore) ListAPIKeys(userID string) ([]storage.APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []storage.APIKey{}
	for _, k := range m.apiKeys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	return out, nil
}

func (m *memStore) DeleteAPIKey(keyHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.apiKeys, keyHash)
	return nil
}

func (m *memStore) Close() error {
	return nil
}

var _ storage.Store = (*memStore)(nil)
