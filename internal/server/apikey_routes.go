package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/storage"
	"github.com/go-chi/chi/v5"
)

const (
	apiKeyPrefix = "hab_" // only hab_live_ keys are issued
	keyIDLength  = 16
)

// NewAPIKey returns a fresh hab_live_ key and the hash it is stored under.
func NewAPIKey() (key, hash string, err error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	key = apiKeyPrefix + "live_" + hex.EncodeToString(b)
	return key, hashAPIKey(key), nil
}

func hashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// KeyID is the public handle of a key: a prefix of its hash.
func KeyID(hash string) string {
	return hash[:min(keyIDLength, len(hash))]
}

// ValidScope reports whether scope may be requested for a new key.
func ValidScope(scope string) bool {
	return scope == storage.ScopeRead || scope == storage.ScopeWrite
}

func apiKeyInfo(k storage.APIKey) APIKeyInfo {
	return APIKeyInfo{ID: KeyID(k.Hash), Scope: k.Scope, CreatedAt: k.CreatedAt}
}

// keyOwner only trusts a logged-in principal; API key management is never
// anonymous.
func keyOwner(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p, ok := principalFrom(r.Context())
	if !ok || p.Method == MethodAnonymous || p.UserID == "" {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return Principal{}, false
	}
	return p, true
}

func (s *Server) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	p, ok := keyOwner(w, r)
	if !ok {
		return
	}

	req := APIKeyRequest{Scope: storage.ScopeWrite}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if !ValidScope(req.Scope) {
		_ = writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "scope must be read or write"})
		return
	}

	key, hash, err := NewAPIKey()
	if err != nil {
		logger.Error("Failed to generate API key", "error", err)
		http.Error(w, `{"error":"key generation failed"}`, http.StatusInternalServerError)
		return
	}
	rec := storage.APIKey{Hash: hash, UserID: p.UserID, Scope: req.Scope, CreatedAt: s.now().Unix()}
	if err := s.store.PutAPIKey(rec); err != nil {
		logger.Error("Failed to store API key", "user_id", p.UserID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}
	logger.Info("API key created", "user_id", p.UserID, "key_id", KeyID(hash), "scope", req.Scope, "via", p.Method)
	RecordAuthEvent("apikey", "created", p.source())

	resp := APIKeyResponse{APIKey: key, APIKeyInfo: apiKeyInfo(rec)}
	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		logger.Error("Failed to serialize API key response", "user_id", p.UserID, "error", err)
	}
}

func (s *Server) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	p, ok := keyOwner(w, r)
	if !ok {
		return
	}

	keys, err := s.store.ListAPIKeys(p.UserID)
	if err != nil {
		logger.Error("Failed to list API keys", "user_id", p.UserID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	resp := APIKeyListResponse{Keys: make([]APIKeyInfo, 0, len(keys))}
	for _, k := range keys {
		resp.Keys = append(resp.Keys, apiKeyInfo(k))
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize API key list", "user_id", p.UserID, "error", err)
	}
}

// revokeAPIKey deletes the caller's key whose hash starts with key_id.
func (s *Server) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	p, ok := keyOwner(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "key_id")
	if len(id) < 8 {
		http.Error(w, `{"error":"key id too short"}`, http.StatusBadRequest)
		return
	}

	keys, err := s.store.ListAPIKeys(p.UserID)
	if err != nil {
		logger.Error("Failed to list API keys", "user_id", p.UserID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	var matches []string
	for _, k := range keys {
		if strings.HasPrefix(k.Hash, id) {
			matches = append(matches, k.Hash)
		}
	}
	switch len(matches) {
	case 0:
		http.Error(w, `{"error":"api key not found"}`, http.StatusNotFound)
		return
	case 1:
	default:
		http.Error(w, `{"error":"key id is ambiguous"}`, http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteAPIKey(matches[0]); err != nil {
		logger.Error("Failed to delete API key", "user_id", p.UserID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	logger.Info("API key revoked", "user_id", p.UserID, "key_id", KeyID(matches[0]))
	RecordAuthEvent("apikey", "revoked", p.source())
	w.WriteHeader(http.StatusNoContent)
}
