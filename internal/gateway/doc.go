// Package gateway orchestrates the adk-gateway server.
//
// # Overview
//
// The Gateway struct is the request/response boundary between a chat client
// and the agent backend. Per inbound request it validates the body,
// provisions the backend session exactly once per (app, user, session) key,
// forwards the chat turn to the backend's run endpoint, and normalizes the
// resulting event stream into a single plain-text reply.
//
// # HTTP API
//
//   - GET  /                              embedded chat UI
//   - GET  /health                        backend reachability probe
//   - POST /create_session                idempotent session provisioning
//   - POST /chat                          one chat turn, plain-text reply
//   - GET  /debug/backend_status          raw backend connectivity report
//   - GET  /debug/test_session_creation   throwaway creation probe
//
// # Error Mapping
//
// Backend failures map 1:1 to response statuses: timeout 504, unreachable
// 503, backend rejection 400 (body passed through as detail), anything else
// 500. Validation failures are always local 400s and never reach the
// backend. Reply extraction never fails: a malformed or empty event stream
// degrades to a fixed user-visible message inside a 200 response.
//
// # Lifecycle
//
// Start the gateway:
//
//	gw := gateway.New(cfg, logger)
//	err := gw.Run(ctx)
//
// Run blocks until the context is canceled, then shuts down gracefully.
// The listener is a plain TCP socket, or a tsnet node when
// tailscale.enabled is set (optionally public via Funnel).
package gateway
