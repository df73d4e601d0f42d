// Package session tracks which backend conversation sessions this gateway
// has provisioned.
//
// The Registry is a process-wide idempotency set keyed by the
// (app, user, session) triple. Membership means a backend creation call
// succeeded; entries are never removed. The Provisioner layers the
// provisioning algorithm on top: registry fast path, one backend creation
// call on a miss, mark only on confirmed success so failures stay
// retryable. Concurrent first-time calls for the same key are collapsed
// into a single backend call.
//
// Nothing here is persisted. The backend owns real session state; a gateway
// restart costs at most one redundant, idempotent creation call per key.
package session
