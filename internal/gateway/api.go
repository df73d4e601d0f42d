// ABOUTME: HTTP API handlers bridging chat clients to the agent backend.
// ABOUTME: Validates requests, provisions sessions, runs turns, and maps failures to statuses.

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/adk-gateway/internal/backend"
	"github.com/carebridge/adk-gateway/internal/events"
	"github.com/carebridge/adk-gateway/internal/session"
)

// CreateSessionRequest is the JSON request body for POST /create_session.
// app_name and user_id fall back to the configured defaults when omitted.
type CreateSessionRequest struct {
	AppName   string `json:"app_name,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id"`
}

// CreateSessionResponse is the JSON response for POST /create_session.
type CreateSessionResponse struct {
	Success     bool            `json:"success"`
	SessionID   string          `json:"session_id"`
	Message     string          `json:"message"`
	SessionData json.RawMessage `json:"session_data,omitempty"`
}

// ChatRequest is the JSON request body for POST /chat.
type ChatRequest struct {
	AppName   string `json:"app_name,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the JSON response for POST /chat.
type ChatResponse struct {
	Success     bool   `json:"success"`
	Response    string `json:"response"`
	SessionID   string `json:"session_id"`
	EventsCount int    `json:"events_count"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status           string `json:"status"`
	BackendConnected bool   `json:"backend_connected"`
	Timestamp        string `json:"timestamp"`
}

// failureResponse is the envelope for every terminal failure.
type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// handleHealth handles GET /health. It probes backend reachability without
// side effects.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	connected := g.backend.Ping(r.Context())

	status := "healthy"
	if !connected {
		status = "backend_unavailable"
	}

	g.writeJSON(w, http.StatusOK, HealthResponse{
		Status:           status,
		BackendConnected: connected,
		Timestamp:        time.Now().Format(time.RFC3339),
	})
}

// handleCreateSession handles POST /create_session. Provisioning is
// idempotent: a session key seen before returns success without a backend
// call.
func (g *Gateway) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendFailure(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}
	if req.SessionID == "" {
		g.sendFailure(w, http.StatusBadRequest, "Session ID is required", "")
		return
	}

	key := g.sessionKey(req.AppName, req.UserID, req.SessionID)
	g.logger.Info("creating session", "app", key.AppName, "user", key.UserID, "session_id", key.SessionID)

	result, err := g.provisioner.EnsureSession(r.Context(), key)
	if err != nil {
		g.sendBackendFailure(w, err, createSessionMessages)
		return
	}

	resp := CreateSessionResponse{
		Success:   true,
		SessionID: key.SessionID,
	}
	switch result.Outcome {
	case session.Created:
		resp.Message = "Session created successfully"
		resp.SessionData = result.Info
	default:
		resp.Message = "Session already exists"
	}
	g.writeJSON(w, http.StatusOK, resp)
}

// handleChat handles POST /chat. It provisions the session if needed,
// forwards the turn to the backend, and extracts a single reply from the
// event stream.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendFailure(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		g.sendFailure(w, http.StatusBadRequest, "Message cannot be empty", "")
		return
	}
	if req.SessionID == "" {
		g.sendFailure(w, http.StatusBadRequest, "Session ID is required", "")
		return
	}

	key := g.sessionKey(req.AppName, req.UserID, req.SessionID)
	requestID := uuid.New().String()
	logger := g.logger.With("request_id", requestID, "session_id", key.SessionID)
	logger.Info("chat turn received", "message_len", len(req.Message))

	// Provisioning is an implicit prerequisite of the chat path: the first
	// turn of a session creates it, later turns short-circuit.
	if _, err := g.provisioner.EnsureSession(r.Context(), key); err != nil {
		logger.Error("session provisioning failed", "error", err)
		g.sendBackendFailure(w, err, chatMessages)
		return
	}

	raw, err := g.backend.Run(r.Context(), key.AppName, key.UserID, key.SessionID, req.Message)
	if err != nil {
		logger.Error("run turn failed", "error", err)
		g.sendBackendFailure(w, err, chatMessages)
		return
	}

	reply, count := events.ExtractFromJSON(raw)
	logger.Info("chat turn answered", "events", count, "reply_len", len(reply))

	g.writeJSON(w, http.StatusOK, ChatResponse{
		Success:     true,
		Response:    reply,
		SessionID:   key.SessionID,
		EventsCount: count,
	})
}

// handleBackendStatus handles GET /debug/backend_status: a connectivity
// probe that passes the backend's list-apps response through verbatim.
func (g *Gateway) handleBackendStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result := map[string]any{
		"backend_url": g.backend.BaseURL(),
	}

	status, body, err := g.backend.ListApps(r.Context())
	if err != nil {
		result["error"] = err.Error()
		result["connected"] = false
		g.writeJSON(w, http.StatusOK, result)
		return
	}

	result["status_code"] = status
	result["connected"] = status == http.StatusOK

	var parsed any
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr == nil {
		result["response"] = parsed
	} else {
		result["response"] = string(body)
	}

	g.writeJSON(w, http.StatusOK, result)
}

// handleTestSessionCreation handles GET /debug/test_session_creation. It
// creates a throwaway session directly against the backend, bypassing the
// registry, and reports the raw outcome.
func (g *Gateway) handleTestSessionCreation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sessionID := fmt.Sprintf("debug_session_%d", time.Now().Unix())
	cfg := g.config.Backend

	info, err := g.backend.CreateSession(r.Context(), cfg.AppName, cfg.UserID, sessionID)
	if err != nil {
		g.writeJSON(w, http.StatusOK, map[string]any{
			"success":    false,
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"session_id":   sessionID,
		"session_data": info,
	})
}

// sessionKey builds a session key, filling omitted fields from config.
func (g *Gateway) sessionKey(appName, userID, sessionID string) session.Key {
	if appName == "" {
		appName = g.config.Backend.AppName
	}
	if userID == "" {
		userID = g.config.Backend.UserID
	}
	return session.Key{AppName: appName, UserID: userID, SessionID: sessionID}
}

// backendMessages holds the per-endpoint user-facing messages for each
// backend failure kind.
type backendMessages struct {
	timeout  string
	rejected string // fmt verb for the backend status code
}

var createSessionMessages = backendMessages{
	timeout:  "Request timeout - backend may be slow or unavailable",
	rejected: "Backend returned status %d",
}

var chatMessages = backendMessages{
	timeout:  "Request timeout - the AI is taking too long to respond",
	rejected: "Backend error: %d",
}

// sendBackendFailure maps a backend client error to the gateway's status
// taxonomy: timeout 504, unreachable 503, rejected 400 with the backend body
// as detail, anything else 500.
func (g *Gateway) sendBackendFailure(w http.ResponseWriter, err error, msgs backendMessages) {
	be, ok := backend.AsError(err)
	if !ok {
		g.sendFailure(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	switch be.Kind {
	case backend.KindTimeout:
		g.sendFailure(w, http.StatusGatewayTimeout, msgs.timeout, "")
	case backend.KindConnectionFailed:
		g.sendFailure(w, http.StatusServiceUnavailable, "Cannot connect to backend - ensure it's running and reachable", "")
	case backend.KindBackendRejected:
		g.sendFailure(w, http.StatusBadRequest, fmt.Sprintf(msgs.rejected, be.Status), be.Body)
	default:
		g.sendFailure(w, http.StatusInternalServerError, "Internal server error", be.Error())
	}
}

// sendFailure writes the structured failure envelope.
func (g *Gateway) sendFailure(w http.ResponseWriter, status int, errMsg, detail string) {
	g.writeJSON(w, status, failureResponse{
		Success: false,
		Error:   errMsg,
		Detail:  detail,
	})
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}
