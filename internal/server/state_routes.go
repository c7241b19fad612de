package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/prefs"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "list_notifications")
	if !ok {
		return
	}
	list, err := s.feed.List(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list notifications", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	unread, err := s.feed.UnreadCount(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to count unread notifications", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	resp := NotificationListResponse{Notifications: list, Unread: unread}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize notifications response", "user_id", userID, "error", err)
	}
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "mark_notification_read")
	if !ok {
		return
	}
	id := chi.URLParam(r, "notification_id")
	found, err := s.feed.MarkRead(r.Context(), userID, id)
	if err != nil {
		logger.Error("Failed to mark notification read", "user_id", userID, "notification_id", id, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"notification not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "mark_all_notifications_read")
	if !ok {
		return
	}
	if err := s.feed.MarkAllRead(r.Context(), userID); err != nil {
		logger.Error("Failed to mark notifications read", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "clear_notifications")
	if !ok {
		return
	}
	if err := s.feed.Clear(r.Context(), userID); err != nil {
		logger.Error("Failed to clear notifications", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "get_settings")
	if !ok {
		return
	}
	p, err := s.prefs.Get(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to load preferences", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	_ = writeJSON(w, http.StatusOK, p)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "put_settings")
	if !ok {
		return
	}
	var p prefs.Preferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	saved, err := s.prefs.Put(r.Context(), userID, p)
	writePrefs(w, userID, saved, err)
}

// setLastTab records the screen the client is on, so it can reopen there.
func (s *Server) setLastTab(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "set_last_tab")
	if !ok {
		return
	}
	saved, err := s.prefs.SetLastTab(r.Context(), userID, chi.URLParam(r, "tab"))
	writePrefs(w, userID, saved, err)
}

func writePrefs(w http.ResponseWriter, userID string, p prefs.Preferences, err error) {
	switch {
	case errors.Is(err, prefs.ErrUnknownTab):
		_ = writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case err != nil:
		logger.Error("Failed to save preferences", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
	default:
		_ = writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) toggleDarkMode(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "toggle_dark_mode")
	if !ok {
		return
	}
	p, err := s.prefs.ToggleDarkMode(r.Context(), userID)
	writePrefs(w, userID, p, err)
}

// resetSettings clears every cached key of the user: preferences,
// notifications and profile. Habits are untouched.
func (s *Server) resetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "reset_settings")
	if !ok {
		return
	}
	if err := s.prefs.Reset(r.Context(), userID); err != nil {
		logger.Error("Failed to reset preferences", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
