// ABOUTME: HTTP client for the session-oriented agent backend API.
// ABOUTME: Issues session creation, run, and reachability calls with per-call timeouts.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carebridge/adk-gateway/internal/config"
)

// Client talks to the agent backend over HTTP. All methods apply their own
// timeout on top of the caller's context and return *Error on failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	createTimeout time.Duration
	runTimeout    time.Duration
	healthTimeout time.Duration
}

// runRequest is the envelope the backend's /run endpoint expects.
type runRequest struct {
	AppName    string     `json:"appName"`
	UserID     string     `json:"userId"`
	SessionID  string     `json:"sessionId"`
	NewMessage newMessage `json:"newMessage"`
}

type newMessage struct {
	Role  string        `json:"role"`
	Parts []messagePart `json:"parts"`
}

type messagePart struct {
	Text string `json:"text"`
}

// sessionState is the initial state payload attached to session creation.
type sessionState struct {
	Initialized bool   `json:"initialized"`
	CreatedAt   string `json:"created_at"`
	AppName     string `json:"app_name"`
	UserID      string `json:"user_id"`
}

type createSessionRequest struct {
	State sessionState `json:"state"`
}

// New creates a backend client from configuration. The base URL's trailing
// slash, if any, is stripped so path joining stays predictable.
func New(cfg config.BackendConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{},
		logger:        logger.With("component", "backend"),
		createTimeout: cfg.CreateSessionTimeout,
		runTimeout:    cfg.RunTimeout,
		healthTimeout: cfg.HealthTimeout,
	}
}

// CreateSession creates a conversation session on the backend, addressed by
// the (app, user, session) triple. On success it returns the backend's
// response body so callers can pass it through to their own clients.
func (c *Client) CreateSession(ctx context.Context, appName, userID, sessionID string) (json.RawMessage, error) {
	const op = "create session"

	ctx, cancel := context.WithTimeout(ctx, c.createTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/apps/%s/users/%s/sessions/%s",
		c.baseURL, url.PathEscape(appName), url.PathEscape(userID), url.PathEscape(sessionID))

	body := createSessionRequest{
		State: sessionState{
			Initialized: true,
			CreatedAt:   time.Now().Format(time.RFC3339),
			AppName:     appName,
			UserID:      userID,
		},
	}

	status, respBody, err := c.postJSON(ctx, op, endpoint, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Error("session creation rejected", "status", status, "session_id", sessionID)
		return nil, rejected(op, status, respBody)
	}

	c.logger.Info("session created", "app", appName, "user", userID, "session_id", sessionID)
	return json.RawMessage(respBody), nil
}

// Run sends one user chat turn to the backend's /run endpoint and returns
// the raw response body: a JSON sequence of event records. Decoding is left
// to the caller so a malformed payload can degrade to a fallback reply
// instead of an error.
func (c *Client) Run(ctx context.Context, appName, userID, sessionID, message string) ([]byte, error) {
	const op = "run turn"

	ctx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	body := runRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
		NewMessage: newMessage{
			Role:  "user",
			Parts: []messagePart{{Text: message}},
		},
	}

	status, respBody, err := c.postJSON(ctx, op, c.baseURL+"/run", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Error("run rejected", "status", status, "session_id", sessionID)
		return nil, rejected(op, status, respBody)
	}

	return respBody, nil
}

// ListApps fetches the backend's app list, the cheapest side-effect-free
// probe the backend offers. Returns the raw status and body for debug
// passthrough.
func (c *Client) ListApps(ctx context.Context) (int, []byte, error) {
	const op = "list apps"

	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list-apps", nil)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, classify(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	return resp.StatusCode, body, nil
}

// Ping reports whether the backend is reachable and healthy.
func (c *Client) Ping(ctx context.Context) bool {
	status, _, err := c.ListApps(ctx)
	return err == nil && status == http.StatusOK
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postJSON encodes body, POSTs it to endpoint, and returns the response
// status and body. Transport failures come back as classified *Error.
func (c *Client) postJSON(ctx context.Context, op, endpoint string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Op: op, Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, classify(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	return resp.StatusCode, respBody, nil
}
