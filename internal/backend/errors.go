// ABOUTME: Typed error taxonomy for agent backend call failures.
// ABOUTME: Classifies transport errors into timeout, connection, rejection, and unexpected kinds.

package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// Kind identifies the failure class of a backend call. Each kind maps to
// exactly one gateway-facing HTTP status.
type Kind int

const (
	// KindUnexpected covers failures with no more specific classification,
	// including malformed backend payloads.
	KindUnexpected Kind = iota

	// KindTimeout means the backend did not respond within the allotted time.
	KindTimeout

	// KindConnectionFailed means the backend was unreachable.
	KindConnectionFailed

	// KindBackendRejected means the backend answered with a non-success status.
	KindBackendRejected
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnectionFailed:
		return "connection_failed"
	case KindBackendRejected:
		return "backend_rejected"
	default:
		return "unexpected"
	}
}

// Error is the error type returned by all Client calls. Status and Body are
// populated only for KindBackendRejected.
type Error struct {
	Kind   Kind
	Op     string // the failing operation, e.g. "create session"
	Status int    // backend HTTP status for KindBackendRejected
	Body   string // backend response body for KindBackendRejected
	Err    error  // underlying cause, nil for KindBackendRejected
}

func (e *Error) Error() string {
	if e.Kind == KindBackendRejected {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *backend.Error from an error chain. The second return
// is false if err does not carry one.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// classify converts a transport-level error from an HTTP round trip into a
// typed *Error. Timeouts (including context deadline expiry) become
// KindTimeout, dial and DNS failures become KindConnectionFailed, and
// everything else is KindUnexpected.
func classify(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return &Error{Kind: KindConnectionFailed, Op: op, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindConnectionFailed, Op: op, Err: err}
	}

	// A non-timeout url.Error from Do is a transport failure: the request
	// never produced a response.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{Kind: KindConnectionFailed, Op: op, Err: err}
	}

	return &Error{Kind: KindUnexpected, Op: op, Err: err}
}

// rejected builds a KindBackendRejected error from a non-success response.
func rejected(op string, status int, body []byte) *Error {
	return &Error{Kind: KindBackendRejected, Op: op, Status: status, Body: string(body)}
}
