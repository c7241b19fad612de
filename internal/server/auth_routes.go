package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"slices"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
)

// safeReturn keeps post-login redirects on this host.
func safeReturn(ret string) string {
	if ret == "" {
		return "/"
	}
	if u, err := url.Parse(ret); err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return ret
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// login starts a PKCE authorization code flow with provider {id}.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	prov, ok := s.authProviders[id]
	if !ok {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}

	verifier, err := randomToken(48)
	if err != nil {
		http.Error(w, "pkce gen failed", http.StatusInternalServerError)
		return
	}
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		http.Error(w, "state gen failed", http.StatusInternalServerError)
		return
	}
	st := hex.EncodeToString(stateBytes)
	sum := sha256.Sum256([]byte(verifier))

	prov.state.put(st, verifier, safeReturn(r.URL.Query().Get("return")))
	authURL := prov.oauth2.AuthCodeURL(st,
		oauth2.SetAuthURLParam("code_challenge", base64.RawURLEncoding.EncodeToString(sum[:])),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	prov, ok := s.authProviders[id]
	if !ok {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	st, code := q.Get("state"), q.Get("code")
	if st == "" || code == "" {
		http.Error(w, "missing state or code", http.StatusBadRequest)
		return
	}
	saved, ok := prov.state.take(st)
	if !ok {
		RecordAuthEvent("login", "bad_state", id)
		http.Error(w, "invalid or expired state", http.StatusBadRequest)
		return
	}

	tok, err := prov.oauth2.Exchange(r.Context(), code, oauth2.SetAuthURLParam("code_verifier", saved.Verifier))
	if err != nil {
		logger.Warn("Code exchange failed", "provider", id, "error", err)
		http.Error(w, "code exchange failed", http.StatusBadGateway)
		return
	}
	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		http.Error(w, "no id_token in response", http.StatusBadGateway)
		return
	}

	// The session holds the same provider:jwt form a bearer client sends,
	// so both resolve to the same user.
	session := id + ":" + rawIDToken
	p, err := s.verifyProviderToken(r.Context(), session, MethodSession)
	if err != nil {
		RecordAuthEvent("login", "failed", id)
		http.Error(w, "id_token invalid", http.StatusUnauthorized)
		return
	}
	val, err := s.sessionCookie.Encode(sessionCookieName, session)
	if err != nil {
		logger.Error("Failed to encode session cookie", "error", err)
		http.Error(w, "session encoding failed", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
	logger.Info("User logged in", "provider", id, "user_id", p.UserID)
	RecordAuthEvent("login", "success", id)
	http.Redirect(w, r, saved.Return, http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, expiredSessionCookie())
	RecordAuthEvent("logout", "success", "session")
	w.WriteHeader(http.StatusNoContent)
}

// simpleLogin lists one button per provider, carrying ?return along.
func (s *Server) simpleLogin(w http.ResponseWriter, r *http.Request) {
	ret := safeReturn(r.URL.Query().Get("return"))
	ids := make([]string, 0, len(s.authProviders))
	for id := range s.authProviders {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<h1>Habits</h1><style>button{display:block;margin:10px 0;padding:10px 20px;}</style>`)
	for _, id := range ids {
		fmt.Fprintf(w, `<form action="/auth/login/%s"><input type="hidden" name="return" value="%s"><button>Sign in with %s</button></form>`,
			url.PathEscape(id), html.EscapeString(ret), html.EscapeString(s.authProviders[id].name))
	}
}

// getAPIToken hands a logged-in browser its provider:jwt token for use as a
// bearer token by the CLI.
func (s *Server) getAPIToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}
	var token string
	if err := s.sessionCookie.Decode(sessionCookieName, cookie.Value, &token); err != nil {
		http.Error(w, "invalid session cookie", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(token))
}
