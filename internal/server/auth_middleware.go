package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/storage"
)

type AuthMethod string

const (
	MethodAnonymous AuthMethod = "anonymous"
	MethodSession   AuthMethod = "session"
	MethodBearer    AuthMethod = "bearer"
	MethodAPIKey    AuthMethod = "api_key"
)

const anonymousUserID = "anonymous"

var (
	errNoCredentials  = errors.New("no credentials")
	errBadCredentials = errors.New("invalid credentials")
)

// Principal is the caller a request acts for. Its UserID keys every
// per-user service: habits, notifications, preferences and profile.
type Principal struct {
	UserID   string
	Method   AuthMethod
	Provider string // OIDC provider id for session and bearer logins
	Email    string
	Scope    string // storage.ScopeRead or storage.ScopeWrite
	KeyID    string // set for API keys
}

func (p Principal) CanWrite() bool {
	return p.Scope != storage.ScopeRead
}

// source labels auth metrics: the provider id, or the method when there is
// no provider.
func (p Principal) source() string {
	if p.Provider != "" {
		return p.Provider
	}
	if p.Method == "" {
		return "unknown"
	}
	return string(p.Method)
}

type principalKey struct{}

func withPrincipal(r *http.Request, p Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey{}, p))
}

func principalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// anonymousMiddleware stands in for authMiddleware when auth is disabled:
// every request acts for one shared user with full access.
func anonymousMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := Principal{UserID: anonymousUserID, Method: MethodAnonymous, Scope: storage.ScopeWrite}
		next.ServeHTTP(w, withPrincipal(r, p))
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.authenticate(r)
		switch {
		case err == nil:
			RecordAuthEvent("verification", "success", p.source())
			next.ServeHTTP(w, withPrincipal(r, p))
		case errors.Is(err, errNoCredentials):
			RecordAuthEvent("verification", "missing_token", "unknown")
			s.handleAuthFailure(w, r, false)
		case errors.Is(err, errBadCredentials):
			logger.Debug("Authentication failed", "method", p.Method, "provider", p.Provider, "error", err)
			RecordAuthEvent("verification", "failed", p.source())
			s.handleAuthFailure(w, r, p.Method == MethodSession)
		default:
			logger.Error("Authentication lookup failed", "path", r.URL.Path, "error", err)
			http.Error(w, `{"error":"authentication unavailable"}`, http.StatusInternalServerError)
		}
	})
}

// authenticate resolves the caller from, in order, the session cookie, an
// API key bearer token or a provider:jwt bearer token. On failure the
// returned Principal still names the method that was tried.
func (s *Server) authenticate(r *http.Request) (Principal, error) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		var token string
		if err := s.sessionCookie.Decode(sessionCookieName, c.Value, &token); err == nil {
			return s.verifyProviderToken(r.Context(), token, MethodSession)
		}
		logger.Debug("Ignoring undecodable session cookie")
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return Principal{}, errNoCredentials
	}
	if strings.HasPrefix(token, apiKeyPrefix) {
		return s.authenticateAPIKey(token)
	}
	return s.verifyProviderToken(r.Context(), token, MethodBearer)
}

func (s *Server) verifyProviderToken(ctx context.Context, token string, method AuthMethod) (Principal, error) {
	p := Principal{Method: method, Scope: storage.ScopeWrite}
	providerID, raw, err := parseProviderToken(token)
	if err != nil {
		return p, fmt.Errorf("%w: %v", errBadCredentials, err)
	}
	p.Provider = providerID
	prov, ok := s.authProviders[providerID]
	if !ok {
		return p, fmt.Errorf("%w: unknown provider %q", errBadCredentials, providerID)
	}
	idTok, err := prov.idVerifier.Verify(ctx, raw)
	if err != nil {
		return p, fmt.Errorf("%w: %v", errBadCredentials, err)
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := idTok.Claims(&claims); err != nil {
		return p, fmt.Errorf("%w: reading claims: %v", errBadCredentials, err)
	}
	p.UserID = userIDFor(idTok.Issuer, idTok.Subject)
	p.Email = claims.Email
	return p, nil
}

func (s *Server) authenticateAPIKey(key string) (Principal, error) {
	p := Principal{Method: MethodAPIKey}
	hash := hashAPIKey(key)
	k, found, err := s.store.GetAPIKey(hash)
	if err != nil {
		return p, fmt.Errorf("looking up api key: %w", err)
	}
	if !found {
		return p, fmt.Errorf("%w: unknown api key %s", errBadCredentials, KeyID(hash))
	}
	p.UserID, p.Scope, p.KeyID = k.UserID, k.Scope, KeyID(hash)
	return p, nil
}

// requireWriteScope refuses anything but reads to read-only API keys.
func requireWriteScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if p, ok := principalFrom(r.Context()); ok && !p.CanWrite() {
				RecordAuthEvent("scope", "denied", p.source())
				logger.Warn("Read-only key used for a write", "user_id", p.UserID, "key_id", p.KeyID, "path", r.URL.Path)
				http.Error(w, `{"error":"api key is read-only"}`, http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func expiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// handleAuthFailure sends browsers to the login page and API clients a 401.
func (s *Server) handleAuthFailure(w http.ResponseWriter, r *http.Request, clearSession bool) {
	if clearSession {
		http.SetCookie(w, expiredSessionCookie())
	}
	accept := r.Header.Get("Accept")
	if r.Method == http.MethodGet && (accept == "" || strings.Contains(accept, "text/html")) {
		http.Redirect(w, r, "/auth/login?return="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
		return
	}
	if clearSession {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	} else {
		w.Header().Set("WWW-Authenticate", `Bearer realm="habits"`)
	}
	http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
}
