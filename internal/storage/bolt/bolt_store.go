package bolt

import (
	"encoding/json"
	"fmt"

	"github.com/brk3/habitkeeper/internal/storage"
	"github.com/brk3/habitkeeper/pkg/habit"
	"go.etcd.io/bbolt"
)

const (
	rootBucket     = "users"
	habitsBucket   = "habits"
	progressBucket = "habitProgress"
	apiKeysBucket  = "api_keys"
	defaultUserID  = "default"
)

// Store keeps one bucket per user:
//
//	users/{userID}/habits/{habitID}        -> habit.Habit
//	users/{userID}/habitProgress/{habitID} -> habit.HabitProgress
//	api_keys/{sha256 hex}                  -> userID
type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{rootBucket, apiKeysBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// DB exposes the handle so other components can share the file; bbolt
// allows a single opener per process.
func (s *Store) DB() *bbolt.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func userBucket(tx *bbolt.Tx, userID, name string) (*bbolt.Bucket, error) {
	if userID == "" {
		userID = defaultUserID
	}
	users := tx.Bucket([]byte(rootBucket))
	if !tx.Writable() {
		u := users.Bucket([]byte(userID))
		if u == nil {
			return nil, nil
		}
		return u.Bucket([]byte(name)), nil
	}
	u, err := users.CreateBucketIfNotExists([]byte(userID))
	if err != nil {
		return nil, err
	}
	return u.CreateBucketIfNotExists([]byte(name))
}

func get[T any](b *bbolt.Bucket, key string) (T, bool, error) {
	var out T
	if b == nil {
		return out, false, nil
	}
	v := b.Get([]byte(key))
	if v == nil {
		return out, false, nil
	}
	if err := json.Unmarshal(v, &out); err != nil {
		return out, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return out, true, nil
}

func put(b *bbolt.Bucket, key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), val)
}

func (s *Store) CreateHabit(userID string, h habit.Habit, fn storage.UpdateFunc) (habit.Habit, habit.HabitProgress, error) {
	var p habit.HabitProgress
	err := s.db.Update(func(tx *bbolt.Tx) error {
		habits, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		progress, err := userBucket(tx, userID, progressBucket)
		if err != nil {
			return err
		}
		if habits.Get([]byte(h.ID)) != nil {
			return fmt.Errorf("habit %q: %w", h.ID, storage.ErrExists)
		}

		id := h.ID
		if p, err = fn(&h, nil); err != nil {
			return err
		}
		if h.ID != id {
			return fmt.Errorf("habit id changed from %q to %q", id, h.ID)
		}
		if err := put(habits, h.ID, h); err != nil {
			return err
		}
		return put(progress, h.ID, p)
	})
	if err != nil {
		return habit.Habit{}, habit.HabitProgress{}, err
	}
	return h, p, nil
}

func (s *Store) GetHabit(userID, habitID string) (habit.Habit, error) {
	var h habit.Habit
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		var found bool
		h, found, err = get[habit.Habit](bucket, habitID)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		return nil
	})
	return h, err
}

func (s *Store) ListHabits(userID string) ([]habit.Habit, error) {
	out := []habit.Habit{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, habitsBucket)
		if err != nil || bucket == nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			var h habit.Habit
			if err := json.Unmarshal(v, &h); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			out = append(out, h)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteHabit(userID, habitID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		habits, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		if habits.Get([]byte(habitID)) == nil {
			return storage.ErrNotFound
		}
		if err := habits.Delete([]byte(habitID)); err != nil {
			return err
		}
		progress, err := userBucket(tx, userID, progressBucket)
		if err != nil {
			return err
		}
		return progress.Delete([]byte(habitID))
	})
}

func (s *Store) GetProgress(userID, habitID string) (habit.HabitProgress, bool, error) {
	var (
		p     habit.HabitProgress
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, progressBucket)
		if err != nil {
			return err
		}
		p, found, err = get[habit.HabitProgress](bucket, habitID)
		return err
	})
	return p, found, err
}

func (s *Store) UpdateHabit(userID, habitID string, fn storage.UpdateFunc) (habit.Habit, habit.HabitProgress, error) {
	var (
		h habit.Habit
		p habit.HabitProgress
	)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		habits, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		progress, err := userBucket(tx, userID, progressBucket)
		if err != nil {
			return err
		}

		var found bool
		if h, found, err = get[habit.Habit](habits, habitID); err != nil {
			return err
		} else if !found {
			return storage.ErrNotFound
		}

		var prev *habit.HabitProgress
		if old, ok, err := get[habit.HabitProgress](progress, habitID); err != nil {
			return err
		} else if ok {
			prev = &old
		}

		if p, err = fn(&h, prev); err != nil {
			return err
		}
		if h.ID != habitID {
			return fmt.Errorf("habit id changed from %q to %q", habitID, h.ID)
		}
		if err := put(habits, habitID, h); err != nil {
			return err
		}
		return put(progress, habitID, p)
	})
	if err != nil {
		return habit.Habit{}, habit.HabitProgress{}, err
	}
	return h, p, nil
}

func (s *Store) PutAPIKey(k storage.APIKey) error {
	if k.Hash == "" || k.UserID == "" {
		return fmt.Errorf("api key needs a hash and a user")
	}
	if k.Scope == "" {
		k.Scope = storage.ScopeWrite
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return put(tx.Bucket([]byte(apiKeysBucket)), k.Hash, k)
	})
}

// decodeAPIKey also accepts the older layout where the value was the bare
// user id; such keys carry write scope.
func decodeAPIKey(hash string, v []byte) (storage.APIKey, error) {
	if len(v) == 0 || v[0] != '{' {
		return storage.APIKey{Hash: hash, UserID: string(v), Scope: storage.ScopeWrite}, nil
	}
	var k storage.APIKey
	if err := json.Unmarshal(v, &k); err != nil {
		return storage.APIKey{}, fmt.Errorf("decoding api key %.16s: %w", hash, err)
	}
	k.Hash = hash
	return k, nil
}

func (s *Store) GetAPIKey(keyHash string) (storage.APIKey, bool, error) {
	var (
		k     storage.APIKey
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(apiKeysBucket)).Get([]byte(keyHash))
		if v == nil {
			return nil
		}
		var err error
		k, err = decodeAPIKey(keyHash, v)
		found = err == nil
		return err
	})
	return k, found, err
}

func (s *Store) ListAPIKeys(userID string) ([]storage.APIKey, error) {
	keys := []storage.APIKey{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).ForEach(func(h, v []byte) error {
			k, err := decodeAPIKey(string(h), v)
			if err != nil {
				return err
			}
			if k.UserID == userID {
				keys = append(keys, k)
			}
			return nil
		})
	})
	return keys, err
}

func (s *Store) DeleteAPIKey(keyHash string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).Delete([]byte(keyHash))
	})
}

var _ storage.Store = (*Store)(nil)
