package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/brk3/habitkeeper/internal/server"
	"github.com/brk3/habitkeeper/internal/tracker"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/brk3/habitkeeper/pkg/versioninfo"
)

type Client struct {
	BaseURL string
	// Token is sent as a bearer token: an API key or a provider:jwt pair.
	Token string
	HTTP  *http.Client
}

func New(base, token string) *Client {
	return &Client{
		BaseURL: base,
		Token:   token,
		HTTP:    http.DefaultClient,
	}
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
		r = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var e server.ErrorResponse
		if data, _ := io.ReadAll(res.Body); json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) ListHabits(ctx context.Context) ([]habit.Habit, error) {
	var response server.HabitListResponse
	if err := c.do(ctx, http.MethodGet, "/habits/", nil, &response); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return response.Habits, nil
}

func (c *Client) TodayHabits(ctx context.Context) ([]habit.Habit, error) {
	var response server.HabitListResponse
	if err := c.do(ctx, http.MethodGet, "/habits/today", nil, &response); err != nil {
		return nil, fmt.Errorf("today's habits: %w", err)
	}
	return response.Habits, nil
}

func (c *Client) GetHabitSummary(ctx context.Context, habitID string) (*habit.HabitSummary, error) {
	var out habit.HabitSummary
	if err := c.do(ctx, http.MethodGet, "/habits/"+url.PathEscape(habitID)+"/summary", nil, &out); err != nil {
		return nil, fmt.Errorf("summary %s: %w", habitID, err)
	}
	return &out, nil
}

func (c *Client) CreateHabit(ctx context.Context, in tracker.HabitInput) (habit.Habit, error) {
	var out habit.Habit
	if err := c.do(ctx, http.MethodPost, "/habits/", in, &out); err != nil {
		return habit.Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return out, nil
}

func (c *Client) DeleteHabit(ctx context.Context, habitID string) error {
	if err := c.do(ctx, http.MethodDelete, "/habits/"+url.PathEscape(habitID), nil, nil); err != nil {
		return fmt.Errorf("delete habit %s: %w", habitID, err)
	}
	return nil
}

// ToggleCompletion flips date, a YYYY-MM-DD string or "today".
func (c *Client) ToggleCompletion(ctx context.Context, habitID, date string) (server.ToggleResponse, error) {
	var out server.ToggleResponse
	path := "/habits/" + url.PathEscape(habitID) + "/completions/" + url.PathEscape(date)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return server.ToggleResponse{}, fmt.Errorf("toggle %s on %s: %w", habitID, date, err)
	}
	return out, nil
}

func (c *Client) Version(ctx context.Context) (versioninfo.VersionInfo, error) {
	var out versioninfo.VersionInfo
	if err := c.do(ctx, http.MethodGet, "/version", nil, &out); err != nil {
		return versioninfo.VersionInfo{}, fmt.Errorf("server version: %w", err)
	}
	return out, nil
}
