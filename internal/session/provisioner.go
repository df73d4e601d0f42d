// ABOUTME: Idempotent session provisioning against the agent backend.
// ABOUTME: Registry fast path, singleflight collapse of concurrent first calls, mark-on-success.

package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Creator issues the backend session-creation call.
type Creator interface {
	CreateSession(ctx context.Context, appName, userID, sessionID string) (json.RawMessage, error)
}

// Outcome reports what EnsureSession did.
type Outcome int

const (
	// AlreadyExists means no creation call was needed.
	AlreadyExists Outcome = iota

	// Created means this call provisioned the session on the backend.
	Created
)

// Result carries the provisioning outcome. Info holds the backend's creation
// response body and is set only when Outcome is Created.
type Result struct {
	Outcome Outcome
	Info    json.RawMessage
}

// Provisioner creates backend sessions at most once per key. Repeated calls
// for a known key short-circuit on the registry without touching the network;
// concurrent first calls for the same key are collapsed into a single
// backend call via singleflight.
type Provisioner struct {
	registry *Registry
	creator  Creator
	group    singleflight.Group
	logger   *slog.Logger
}

// NewProvisioner creates a Provisioner over the given registry and creator.
func NewProvisioner(registry *Registry, creator Creator, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		registry: registry,
		creator:  creator,
		logger:   logger.With("component", "provisioner"),
	}
}

// EnsureSession makes sure the session identified by key exists on the
// backend. The registry is marked only after a confirmed success, so a
// failed creation leaves the key retryable. Errors from the creator are
// propagated unchanged.
func (p *Provisioner) EnsureSession(ctx context.Context, key Key) (Result, error) {
	if p.registry.Exists(key) {
		p.logger.Debug("session already provisioned", "key", key.String())
		return Result{Outcome: AlreadyExists}, nil
	}

	// created is set only by this caller's closure. When a concurrent call
	// wins the flight, our closure never runs and we report AlreadyExists.
	var created bool
	v, err, _ := p.group.Do(key.String(), func() (any, error) {
		// Re-check under the flight: a racing call may have finished
		// between the fast path and here.
		if p.registry.Exists(key) {
			return json.RawMessage(nil), nil
		}

		info, err := p.creator.CreateSession(ctx, key.AppName, key.UserID, key.SessionID)
		if err != nil {
			return nil, err
		}

		p.registry.MarkCreated(key)
		created = true
		return info, nil
	})
	if err != nil {
		return Result{}, err
	}

	if !created {
		return Result{Outcome: AlreadyExists}, nil
	}

	info, _ := v.(json.RawMessage)
	return Result{Outcome: Created, Info: info}, nil
}
