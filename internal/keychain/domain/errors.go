package domain

import (
	"github.com/allisson/chatkeys/internal/errors"
)

// Key-chain error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so handlers can map them to HTTP status codes without knowing the details
// of the key lifecycle.
var (
	// ErrNoEligibleRecipients indicates a rotation was requested for a
	// conversation with no participants. Not retryable without first
	// changing the membership.
	ErrNoEligibleRecipients = errors.Wrap(errors.ErrInvalidInput, "conversation has no participants to receive a key")

	// ErrInvalidKeyMaterial indicates a participant's stored public key is
	// empty or unparseable. The participant is skipped during rotation;
	// this is a steady-state condition for not-yet-provisioned users, not
	// a crypto failure.
	ErrInvalidKeyMaterial = errors.Wrap(errors.ErrInvalidInput, "public key is empty or unparseable")

	// ErrRotationFailed indicates a storage failure during the atomic
	// invalidate-and-issue sequence. The whole rotation was rolled back;
	// callers should retry the entire operation, never resume partway.
	ErrRotationFailed = errors.Wrap(errors.ErrInternal, "key rotation failed")

	// ErrConsistencyViolation indicates more than one active key copy exists
	// for the same (conversation, user) pair. This breaks decryption
	// correctness and must be surfaced loudly, never repaired silently.
	ErrConsistencyViolation = errors.Wrap(errors.ErrInternal, "multiple active key copies for the same user and conversation")

	// ErrKeyNotFound indicates the user holds no active key copy for the
	// conversation, either because they never received one or because their
	// keypair was not provisioned at the last rotation.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key copy not found")
)
