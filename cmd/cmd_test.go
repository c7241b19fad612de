package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brk3/habitkeeper/internal/config"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/brk3/habitkeeper/pkg/versioninfo"
	"github.com/spf13/cobra"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		in      string
		want    habit.Weekdays
		wantErr bool
	}{
		{"daily", habit.AllDays(), false},
		{"Weekdays", habit.Weekdays{false, true, true, true, true, true, false}, false},
		{"weekends", habit.Weekdays{true, false, false, false, false, false, true}, false},
		{"mon, wed,Friday", habit.Weekdays{false, true, false, true, false, true, false}, false},
		{"mon,funday", habit.Weekdays{}, true},
		{"m", habit.Weekdays{}, true},
	}
	for _, tt := range tests {
		got, err := parseDays(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseDays(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseDays(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindHabit(t *testing.T) {
	habits := []habit.Habit{
		{ID: "a1", Name: "Guitar"},
		{ID: "b2", Name: "Reading"},
		{ID: "c3", Name: "reading"},
	}

	h, err := findHabit(habits, "guitar")
	if err != nil || h.ID != "a1" {
		t.Fatalf("got %v, %v want a1", h.ID, err)
	}
	h, err = findHabit(habits, "c3")
	if err != nil || h.Name != "reading" {
		t.Fatalf("got %v, %v want c3", h.ID, err)
	}
	if _, err := findHabit(habits, "Reading"); err == nil {
		t.Fatal("expected ambiguity error")
	}
	if _, err := findHabit(habits, "piano"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestVersionCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"9.9.9","build_date":"2024-01-01"}`))
	}))
	defer ts.Close()
	cfg = &config.Config{APIBaseURL: ts.URL}

	var out bytes.Buffer
	c := &cobra.Command{}
	c.SetContext(context.Background())
	c.SetOut(&out)
	version(c)

	if !strings.Contains(out.String(), "Client Version: "+versioninfo.Version) {
		t.Errorf("missing client version in %q", out.String())
	}
	if !strings.Contains(out.String(), "Server Version: 9.9.9") {
		t.Errorf("missing server version in %q", out.String())
	}
}
