package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brk3/habitkeeper/internal/storage"
)

func TestGenerateAPIKey_ReadScopeCanOnlyRead(t *testing.T) {
	st := newMemStore()
	h, srv := newTestServerWithAuth(t, st)

	req := httptest.NewRequest(http.MethodPost, "/auth/api_keys", strings.NewReader(`{"scope":"read"}`))
	req = withPrincipal(req, Principal{UserID: "user-alice", Method: MethodSession, Provider: "test", Scope: storage.ScopeWrite})
	rr := httptest.NewRecorder()
	srv.generateAPIKey(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d want 201, body: %s", rr.Code, rr.Body.String())
	}
	var resp APIKeyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !strings.HasPrefix(resp.APIKey, "hab_live_") || resp.Scope != storage.ScopeRead {
		t.Fatalf("got %+v", resp)
	}
	if resp.CreatedAt != testNow.Unix() {
		t.Fatalf("got created_at %d want %d", resp.CreatedAt, testNow.Unix())
	}

	stored, found, err := st.GetAPIKey(hashAPIKey(resp.APIKey))
	if err != nil || !found {
		t.Fatalf("key not stored: found=%v err=%v", found, err)
	}
	if stored.UserID != "user-alice" {
		t.Fatalf("stored for %q want user-alice", stored.UserID)
	}

	if rr := keyRequest(h, http.MethodGet, "/habits/today", resp.APIKey, nil); rr.Code != http.StatusOK {
		t.Fatalf("read with new key: got %d want 200", rr.Code)
	}
	if rr := keyRequest(h, http.MethodPost, "/habits/", resp.APIKey, map[string]string{"name": "Run"}); rr.Code != http.StatusForbidden {
		t.Fatalf("write with read key: got %d want 403", rr.Code)
	}
}

func TestGenerateAPIKey_Rejections(t *testing.T) {
	_, srv := newTestServerWithAuth(t, newMemStore())
	user := Principal{UserID: "user-alice", Method: MethodSession, Scope: storage.ScopeWrite}

	tests := []struct {
		name string
		p    *Principal
		body string
		want int
	}{
		{"bad scope", &user, `{"scope":"admin"}`, http.StatusBadRequest},
		{"bad json", &user, `{`, http.StatusBadRequest},
		{"anonymous", &Principal{UserID: anonymousUserID, Method: MethodAnonymous}, ``, http.StatusUnauthorized},
		{"no principal", nil, ``, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/api_keys", strings.NewReader(tt.body))
			if tt.p != nil {
				req = withPrincipal(req, *tt.p)
			}
			rr := httptest.NewRecorder()
			srv.generateAPIKey(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("got %d want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAPIKeys_ListAndRevoke(t *testing.T) {
	st := newMemStore()
	seedKey(t, st, aliceKey, "user-alice", storage.ScopeWrite)
	seedKey(t, st, bobKey, "user-bob", storage.ScopeWrite)
	h, _ := newTestServerWithAuth(t, st)

	// no body defaults to a write key
	rr := keyRequest(h, http.MethodPost, "/auth/api_keys", aliceKey, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("generate: got %d want 201, body: %s", rr.Code, rr.Body.String())
	}
	var second APIKeyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if second.Scope != storage.ScopeWrite {
		t.Fatalf("got scope %q want write", second.Scope)
	}
	createHabitAs(t, h, second.APIKey, "Journal")

	list := func(key string) []APIKeyInfo {
		t.Helper()
		rr := keyRequest(h, http.MethodGet, "/auth/api_keys", key, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("list: got %d want 200", rr.Code)
		}
		var resp APIKeyListResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		return resp.Keys
	}
	if got := list(aliceKey); len(got) != 2 {
		t.Fatalf("alice has %d keys want 2", len(got))
	}
	if got := list(bobKey); len(got) != 1 {
		t.Fatalf("bob has %d keys want 1", len(got))
	}

	if rr := keyRequest(h, http.MethodDelete, "/auth/api_keys/"+second.ID, bobKey, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("bob revoking alice's key: got %d want 404", rr.Code)
	}
	if rr := keyRequest(h, http.MethodDelete, "/auth/api_keys/abc", aliceKey, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("short id: got %d want 400", rr.Code)
	}
	if rr := keyRequest(h, http.MethodDelete, "/auth/api_keys/"+second.ID, aliceKey, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("revoke: got %d want 204", rr.Code)
	}
	if got := list(aliceKey); len(got) != 1 {
		t.Fatalf("alice has %d keys after revoke want 1", len(got))
	}

	// the revoked key stops working, the habit it made stays
	if rr := keyRequest(h, http.MethodGet, "/habits/", second.APIKey, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("revoked key: got %d want 401", rr.Code)
	}
	habits, _ := st.ListHabits("user-alice")
	if len(habits) != 1 {
		t.Fatalf("alice has %d habits want 1", len(habits))
	}
}

func TestAuthenticateAPIKey_ReadScope(t *testing.T) {
	st := newMemStore()
	_, srv := newTestServerWithAuth(t, st)
	seedKey(t, st, aliceKey, "user-alice", storage.ScopeRead)

	p, err := srv.authenticateAPIKey(aliceKey)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.UserID != "user-alice" || p.Method != MethodAPIKey || p.CanWrite() {
		t.Fatalf("got %+v", p)
	}
	if p.KeyID != KeyID(hashAPIKey(aliceKey)) {
		t.Fatalf("got key id %q", p.KeyID)
	}
}
