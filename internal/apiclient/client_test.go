package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/brk3/habitkeeper/internal/config"
	"github.com/brk3/habitkeeper/internal/server"
	"github.com/brk3/habitkeeper/internal/storage/bolt"
	"github.com/brk3/habitkeeper/internal/tracker"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC)
	srv, err := server.New(&config.Config{Timezone: "UTC"}, store, server.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return New(ts.URL, "")
}

func TestClient_CreateToggleSummary(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	h, err := c.CreateHabit(ctx, tracker.HabitInput{Name: "Guitar", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := c.ToggleCompletion(ctx, h.ID, "today")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !resp.Habit.CompletedToday || resp.Progress.Streaks.CurrentStreak != 1 {
		t.Fatalf("got %+v after toggling today", resp)
	}

	today, err := c.TodayHabits(ctx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(today) != 1 {
		t.Fatalf("got %d habits today, want 1", len(today))
	}

	s, err := c.GetHabitSummary(ctx, h.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Progress.Metrics.TotalDays != 4 || s.Progress.Metrics.CompletedDays != 1 {
		t.Fatalf("got metrics %+v", s.Progress.Metrics)
	}

	if err := c.DeleteHabit(ctx, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, err := c.ListHabits(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("got %d habits after delete, want 0", len(all))
	}
}

func TestClient_Errors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateHabit(ctx, tracker.HabitInput{Name: "x", StartDate: "2024-02-01", EndDate: "2024-01-01"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message == "" {
		t.Fatalf("got %+v", apiErr)
	}

	_, err = c.ToggleCompletion(ctx, "missing", "2024-01-02")
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("got %v, want 404", err)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"1.2.3","build_date":"today"}`))
	}))
	defer ts.Close()

	v, err := New(ts.URL, "hab_live_abc").Version(context.Background())
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if got != "Bearer hab_live_abc" {
		t.Fatalf("got Authorization %q", got)
	}
	if v.Version != "1.2.3" {
		t.Fatalf("got version %q", v.Version)
	}
}
