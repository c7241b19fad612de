package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/storage"
	"github.com/brk3/habitkeeper/internal/tracker"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/brk3/habitkeeper/pkg/versioninfo"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// writeError maps tracker and storage errors onto status codes. Validation
// messages are returned to the caller; anything else is logged and hidden.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrValidation):
		_ = writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, `{"error":"habit not found"}`, http.StatusNotFound)
	case errors.Is(err, tracker.ErrConflict):
		_ = writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
	}
}

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	info := versioninfo.VersionInfo{
		Version:   versioninfo.Version,
		BuildDate: versioninfo.BuildDate,
	}
	if err := writeJSON(w, http.StatusOK, info); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
		http.Error(w, `{"error":"failed to serialize version info"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireUser returns the id the request acts for and counts the call under
// op. It writes a 401 and returns false when no principal was resolved.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	p, ok := principalFrom(r.Context())
	if !ok || p.UserID == "" {
		logger.Warn("Missing principal", "path", r.URL.Path)
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return "", false
	}
	trackerCalls.WithLabelValues(op, string(p.Method)).Inc()
	return p.UserID, true
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "list_habits")
	if !ok {
		return
	}
	logger.Debug("Listing habits", "user_id", userID)
	habits, err := s.tracker.ListHabits(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list habits", "user_id", userID, "error", err)
		writeError(w, err)
		return
	}
	UpdateActiveHabitsForUser(userID, len(habits))
	if err := writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits}); err != nil {
		logger.Error("Failed to serialize habit list response", "user_id", userID, "error", err)
	}
}

func (s *Server) todayHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "today_habits")
	if !ok {
		return
	}
	habits, err := s.tracker.TodayHabits(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list today's habits", "user_id", userID, "error", err)
		writeError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits}); err != nil {
		logger.Error("Failed to serialize habit list response", "user_id", userID, "error", err)
	}
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "create_habit")
	if !ok {
		return
	}
	var in tracker.HabitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("Invalid JSON in create habit request", "error", err)
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	h, err := s.tracker.CreateHabit(r.Context(), userID, in)
	if err != nil {
		logger.Warn("Failed to create habit", "user_id", userID, "error", err)
		writeError(w, err)
		return
	}
	progressRecomputes.Inc()
	s.refreshActiveHabits(r, userID)
	if err := writeJSON(w, http.StatusCreated, h); err != nil {
		logger.Error("Failed to serialize create habit response", "user_id", userID, "habit_id", h.ID, "error", err)
	}
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "get_habit")
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	h, err := s.tracker.GetHabit(r.Context(), userID, habitID)
	if err != nil {
		logger.Debug("Failed to get habit", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize get habit response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "update_habit")
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	var in tracker.HabitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	h, err := s.tracker.UpdateHabit(r.Context(), userID, habitID, in)
	if err != nil {
		logger.Warn("Failed to update habit", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, err)
		return
	}
	progressRecomputes.Inc()
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize update habit response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "delete_habit")
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	if err := s.tracker.DeleteHabit(r.Context(), userID, habitID); err != nil {
		logger.Error("Failed to delete habit", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, err)
		return
	}
	s.refreshActiveHabits(r, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getHabitProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "get_habit_progress")
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	p, err := s.tracker.GetProgress(r.Context(), userID, habitID)
	if err != nil {
		logger.Debug("Failed to get habit progress", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, p); err != nil {
		logger.Error("Failed to serialize progress response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

func (s *Server) getHabitSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "get_habit_summary")
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	logger.Debug("Getting habit summary", "habit_id", habitID, "user_id", userID)
	summary, err := s.tracker.HabitSummary(r.Context(), userID, habitID)
	if err != nil {
		logger.Debug("Failed to build habit summary", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, summary); err != nil {
		logger.Error("Failed to serialize habit summary response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

// toggleCompletion flips one date. The date segment also accepts "today",
// resolved in the server's configured timezone.
func (s *Server) toggleCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "toggle_completion")
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	date := chi.URLParam(r, "date")
	if date == "today" {
		date = habit.FormatDate(s.tracker.Today())
	}

	h, p, err := s.tracker.ToggleCompletion(r.Context(), userID, habitID, date)
	if err != nil {
		result := "error"
		if errors.Is(err, tracker.ErrValidation) || errors.Is(err, storage.ErrNotFound) {
			result = "rejected"
		}
		habitToggles.WithLabelValues(result).Inc()
		logger.Warn("Failed to toggle completion", "user_id", userID, "habit_id", habitID, "date", date, "error", err)
		writeError(w, err)
		return
	}

	result := "uncompleted"
	if h.Completions[date] {
		result = "completed"
	}
	habitToggles.WithLabelValues(result).Inc()
	progressRecomputes.Inc()

	if err := writeJSON(w, http.StatusOK, ToggleResponse{Habit: h, Progress: p}); err != nil {
		logger.Error("Failed to serialize toggle response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

func (s *Server) refreshActiveHabits(r *http.Request, userID string) {
	habits, err := s.tracker.ListHabits(r.Context(), userID)
	if err != nil {
		logger.Warn("Failed to update active habits metric", "user_id", userID, "error", err)
		return
	}
	UpdateActiveHabitsForUser(userID, len(habits))
}
