// Package apiclient is a typed HTTP client for the FocusTrack API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deepthireddy246/focustrack/internal/dto"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to the FocusTrack API. Once a token is set it is attached as
// a bearer header to every call.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a Client with a bounded request timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken installs the bearer token for authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, username, email, password string) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Username: username,
		Password: password,
	}, &out)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (dto.ProfileResponse, error) {
	var out dto.ProfileResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &out)
	return out, err
}

// ListTasks returns the user's tasks, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]dto.TaskResponse, error) {
	var out []dto.TaskResponse
	err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out)
	return out, err
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, title, description string) (dto.TaskResponse, error) {
	var out dto.TaskResponse
	err := c.do(ctx, http.MethodPost, "/api/tasks", dto.CreateTaskRequest{
		Title:       title,
		Description: description,
	}, &out)
	return out, err
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch dto.UpdateTaskRequest) (dto.TaskResponse, error) {
	var out dto.TaskResponse
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+strconv.FormatInt(id, 10), patch, &out)
	return out, err
}

// DeleteTask deletes a task and its sessions.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+strconv.FormatInt(id, 10), nil, nil)
}

// RecordSession records a completed timer interval. Satisfies the timer
// package's Recorder interface.
func (c *Client) RecordSession(ctx context.Context, taskID int64, sessionType string, minutes int) error {
	return c.do(ctx, http.MethodPost, "/api/sessions", dto.CreateSessionRequest{
		TaskID:      taskID,
		SessionType: sessionType,
		Duration:    minutes,
	}, nil)
}

// Stats returns today's statistics.
func (c *Client) Stats(ctx context.Context) (dto.StatsResponse, error) {
	var out dto.StatsResponse
	err := c.do(ctx, http.MethodGet, "/api/sessions/stats", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
