package server

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brk3/habitkeeper/internal/config"
	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 24 * time.Hour
	loginStateTTL     = 5 * time.Minute
)

type AuthProvider struct {
	name       string
	oauth2     *oauth2.Config
	idVerifier *oidc.IDTokenVerifier
	state      *stateStore
}

// authState is kept between /auth/login and /auth/callback.
type authState struct {
	Verifier string
	Return   string
	ExpireAt time.Time
}

// stateStore holds pending logins keyed by the OAuth state parameter.
// Expired entries are dropped whenever a new login starts.
type stateStore struct {
	ttl time.Duration
	now func() time.Time
	mu  sync.Mutex
	m   map[string]authState
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{ttl: ttl, now: time.Now, m: map[string]authState{}}
}

func (s *stateStore) put(key, verifier, ret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.m {
		if now.After(v.ExpireAt) {
			delete(s.m, k)
		}
	}
	s.m[key] = authState{Verifier: verifier, Return: ret, ExpireAt: now.Add(s.ttl)}
}

// take returns and forgets the state for key. States are single use.
func (s *stateStore) take(key string) (authState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	delete(s.m, key)
	if !ok || s.now().After(v.ExpireAt) {
		return authState{}, false
	}
	return v, true
}

// newAuthProviders discovers every configured issuer. Session cookie keys
// are generated per process, so a restart logs everyone out.
func newAuthProviders(ctx context.Context, cfg *config.Config) (map[string]*AuthProvider, *securecookie.SecureCookie, error) {
	hashKey := securecookie.GenerateRandomKey(64)
	blockKey := securecookie.GenerateRandomKey(32)
	if hashKey == nil || blockKey == nil {
		return nil, nil, fmt.Errorf("failed to generate secure cookie keys")
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionMaxAge.Seconds()))

	providers := make(map[string]*AuthProvider, len(cfg.OIDCProviders))
	for _, pc := range cfg.OIDCProviders {
		prov, err := oidc.NewProvider(ctx, pc.IssuerURL)
		if err != nil {
			return nil, nil, fmt.Errorf("discovering OIDC provider %s: %w", pc.Id, err)
		}
		name := pc.Name
		if name == "" {
			name = pc.Id
		}
		providers[pc.Id] = &AuthProvider{
			name: name,
			oauth2: &oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				Endpoint:     prov.Endpoint(),
				RedirectURL:  pc.RedirectURL,
				Scopes:       pc.Scopes,
			},
			idVerifier: prov.Verifier(&oidc.Config{ClientID: pc.ClientID}),
			state:      newStateStore(loginStateTTL),
		}
		logger.Info("OIDC provider configured", "id", pc.Id, "issuer", pc.IssuerURL)
	}
	return providers, sc, nil
}

// parseProviderToken splits "provider:jwt".
func parseProviderToken(token string) (providerID, jwt string, err error) {
	providerID, jwt, ok := strings.Cut(token, ":")
	if !ok || providerID == "" || jwt == "" {
		return "", "", fmt.Errorf("expected provider:jwt")
	}
	return providerID, jwt, nil
}

// userIDFor derives the id habits are stored under from the token issuer
// and subject, so the same account maps to the same habits across logins.
func userIDFor(issuer, subject string) string {
	sum := sha256.Sum256([]byte(issuer + "|" + subject))
	return fmt.Sprintf("user-%x", sum[:8])
}
