// Package client is a Go client for the irontodo-server HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/existflow/irontodo/internal/model"
)

// DefaultServerURL is used when no server URL is given
const DefaultServerURL = "http://localhost:8080"

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Todo is a task as returned by the server
type Todo struct {
	model.Todo
	Deleting bool `json:"deleting,omitempty"`
}

// List is the result of a list request
type List struct {
	Todos  []Todo `json:"todos"`
	Active int    `json:"active"`
	Total  int    `json:"total"`
}

// Client talks to the todo API
type Client struct {
	serverURL  string
	token      string
	httpClient *http.Client
}

// New creates a new client for serverURL
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the bearer token used for protected calls
func (c *Client) SetToken(token string) {
	c.token = token
}

// IsLoggedIn returns true if a token is set
func (c *Client) IsLoggedIn() bool {
	return c.token != ""
}

// do sends a JSON request and decodes a JSON response into out, if non-nil
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(respBody, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(respBody))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type authResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (model.Session, error) {
	var result authResult
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return model.Session{}, err
	}

	expiresAt, _ := time.Parse(time.RFC3339, result.ExpiresAt)
	c.token = result.Token
	return model.Session{Username: result.Username, Token: result.Token, ExpiresAt: expiresAt}, nil
}

// Signup creates a new account and keeps its token
func (c *Client) Signup(ctx context.Context, username, password string) (model.Session, error) {
	return c.authenticate(ctx, "/api/v1/signup", username, password)
}

// Login authenticates with username and password and keeps the token
func (c *Client) Login(ctx context.Context, username, password string) (model.Session, error) {
	return c.authenticate(ctx, "/api/v1/login", username, password)
}

// Logout forgets the token
func (c *Client) Logout() {
	c.token = ""
}

// Me returns the user the token belongs to
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &u)
	return u, err
}

// List returns the filtered, searched view of the user's tasks
func (c *Client) List(ctx context.Context, filter model.Filter, query string) (List, error) {
	q := url.Values{}
	q.Set("filter", filter.String())
	if query != "" {
		q.Set("q", query)
	}
	var l List
	err := c.do(ctx, http.MethodGet, "/api/v1/todos?"+q.Encode(), nil, &l)
	return l, err
}

// Add creates a task
func (c *Client) Add(ctx context.Context, title, description, dueDate string) (Todo, error) {
	var t Todo
	err := c.do(ctx, http.MethodPost, "/api/v1/todos", map[string]string{
		"title":       title,
		"description": description,
		"dueDate":     dueDate,
	}, &t)
	return t, err
}

// Get returns one task by id or unique id prefix
func (c *Client) Get(ctx context.Context, id string) (Todo, error) {
	var t Todo
	err := c.do(ctx, http.MethodGet, "/api/v1/todos/"+url.PathEscape(id), nil, &t)
	return t, err
}

// Update applies a partial update
func (c *Client) Update(ctx context.Context, id string, p model.Patch) (Todo, error) {
	var t Todo
	err := c.do(ctx, http.MethodPatch, "/api/v1/todos/"+url.PathEscape(id), p, &t)
	return t, err
}

// Toggle flips the completed state of a task
func (c *Client) Toggle(ctx context.Context, id string) (Todo, error) {
	var t Todo
	err := c.do(ctx, http.MethodPost, "/api/v1/todos/"+url.PathEscape(id)+"/toggle", nil, &t)
	return t, err
}

// Delete confirms a delete; the server removes the task after its delete delay
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/todos/"+url.PathEscape(id), nil, nil)
}

// Restore aborts a delete that has not been applied yet
func (c *Client) Restore(ctx context.Context, id string) (Todo, error) {
	var t Todo
	err := c.do(ctx, http.MethodPost, "/api/v1/todos/"+url.PathEscape(id)+"/restore", nil, &t)
	return t, err
}

// ClearCompleted removes all completed tasks and returns how many were removed
func (c *Client) ClearCompleted(ctx context.Context) (int, error) {
	var result struct {
		Cleared int `json:"cleared"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/todos/clear-completed", nil, &result)
	return result.Cleared, err
}
