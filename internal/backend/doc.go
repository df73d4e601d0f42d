// Package backend implements the HTTP client for the remote agent service.
//
// The agent backend exposes a session-oriented API:
//
//	POST /apps/{app}/users/{user}/sessions/{session}  create a session
//	POST /run                                         run one chat turn
//	GET  /list-apps                                   reachability probe
//
// Every call carries its own timeout: session creation and probes are
// short, run turns are long because generation latency is high. Failures
// are returned as *Error carrying a Kind that the gateway maps 1:1 to a
// client-facing HTTP status. No retries happen here; the caller owns the
// retry decision.
package backend
