package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/brk3/habitkeeper/internal/community"
	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/profile"
	"github.com/go-chi/chi/v5"
)

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "get_profile")
	if !ok {
		return
	}
	p, err := s.profile.Get(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to load profile", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	_ = writeJSON(w, http.StatusOK, p)
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "update_profile")
	if !ok {
		return
	}
	var in profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	p, err := s.profile.Update(r.Context(), userID, in)
	switch {
	case errors.Is(err, profile.ErrTooLong):
		_ = writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case err != nil:
		logger.Error("Failed to save profile", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
	default:
		_ = writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) getProfileStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "profile_stats")
	if !ok {
		return
	}
	st, err := s.profile.Stats(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to compute profile stats", "user_id", userID, "error", err)
		writeError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, st)
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r, "list_posts"); !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"limit must be a positive integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}
	posts, err := s.community.Posts(r.Context(), limit)
	if err != nil {
		logger.Error("Failed to list posts", "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	_ = writeJSON(w, http.StatusOK, PostListResponse{Posts: posts})
}

// createPost publishes under the author's current profile username.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "create_post")
	if !ok {
		return
	}
	var in PostRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	p, err := s.profile.Get(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to load profile", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
		return
	}
	post, err := s.community.Publish(r.Context(), userID, "@"+p.Username, in.Content)
	switch {
	case errors.Is(err, community.ErrEmptyPost), errors.Is(err, community.ErrPostTooLong):
		_ = writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case err != nil:
		logger.Error("Failed to publish post", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
	default:
		logger.Info("Post published", "user_id", userID, "post_id", post.ID)
		_ = writeJSON(w, http.StatusCreated, post)
	}
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r, "delete_post")
	if !ok {
		return
	}
	err := s.community.Delete(r.Context(), userID, chi.URLParam(r, "post_id"))
	switch {
	case errors.Is(err, community.ErrNotFound):
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
	case errors.Is(err, community.ErrNotAuthor):
		_ = writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case err != nil:
		logger.Error("Failed to delete post", "user_id", userID, "error", err)
		http.Error(w, `{"error":"cache error"}`, http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
