// Package client is the Go API client for the taskhive backend. It mirrors
// the browser client's behavior: the session token lives behind a small
// TokenStore capability and is attached to every outbound request by a
// request decorator, so callers never handle credentials directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/taskhive/apiserver/types"
)

// TokenHeader is the custom request header carrying the session token.
// Must match the backend's contract exactly.
const TokenHeader = "X-Auth-Token"

// TokenStore is the capability interface behind which token storage and
// retrieval are isolated. Implementations must tolerate an empty token.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// Decorate attaches the token to a request. It is a pure step invoked once
// per outbound call; an empty token leaves the request untouched.
func Decorate(req *http.Request, token string) *http.Request {
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	return req
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the taskhive REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// New constructs a Client. baseURL is the versioned base path, e.g.
// "http://localhost:8080/api/v1". A nil httpClient uses http.DefaultClient;
// a nil tokens store defaults to an in-memory one.
func New(baseURL string, httpClient *http.Client, tokens TokenStore) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// AuthResult is the payload of register and login responses.
type AuthResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Register creates an account and persists the returned session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (types.User, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return types.User{}, err
	}
	if err := c.tokens.Set(result.Token); err != nil {
		return types.User{}, fmt.Errorf("storing token: %w", err)
	}
	return result.User, nil
}

// Login verifies credentials and persists the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (types.User, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return types.User{}, err
	}
	if err := c.tokens.Set(result.Token); err != nil {
		return types.User{}, fmt.Errorf("storing token: %w", err)
	}
	return result.User, nil
}

// Logout clears the persisted session token. Purely client-side: the token
// itself stays valid until it expires.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Me returns the current authenticated user.
func (c *Client) Me(ctx context.Context) (types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// ProfileUpdate is a partial profile update; nil fields are left unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UpdateMe applies a partial update to the current user's profile.
func (c *Client) UpdateMe(ctx context.Context, update ProfileUpdate) (types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodPut, "/me", update, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// ListTasks returns the caller's tasks.
func (c *Client) ListTasks(ctx context.Context) ([]types.Task, error) {
	var tasks []types.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask adds a task; the backend assigns id, status, and timestamps.
func (c *Client) CreateTask(ctx context.Context, title, description string) (types.Task, error) {
	var task types.Task
	err := c.do(ctx, http.MethodPost, "/tasks", map[string]string{
		"title":       title,
		"description": description,
	}, &task)
	if err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// TaskUpdate is a partial task update; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// UpdateTask applies a partial update to one of the caller's tasks.
func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (types.Task, error) {
	var task types.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id.String(), update, &task); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// DeleteTask removes one of the caller's tasks.
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Get()
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}
	req = Decorate(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
