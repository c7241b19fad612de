package server

import (
	"github.com/brk3/habitkeeper/internal/community"
	"github.com/brk3/habitkeeper/internal/feed"
	"github.com/brk3/habitkeeper/pkg/habit"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
}

type ToggleResponse struct {
	Habit    habit.Habit         `json:"habit"`
	Progress habit.HabitProgress `json:"progress"`
}

type NotificationListResponse struct {
	Notifications []feed.Notification `json:"notifications"`
	Unread        int                 `json:"unread"`
}

type APIKeyRequest struct {
	Scope string `json:"scope"`
}

// APIKeyInfo identifies a stored key by a prefix of its hash; the key
// itself is never kept.
type APIKeyInfo struct {
	ID        string `json:"id"`
	Scope     string `json:"scope"`
	CreatedAt int64  `json:"created_at"`
}

// APIKeyResponse carries the new key. It is only ever shown once.
type APIKeyResponse struct {
	APIKey string `json:"api_key"`
	APIKeyInfo
}

type APIKeyListResponse struct {
	Keys []APIKeyInfo `json:"keys"`
}

type PostRequest struct {
	Content string `json:"content"`
}

type PostListResponse struct {
	Posts []community.Post `json:"posts"`
}
