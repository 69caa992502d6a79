package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
	"github.com/allisson/chatkeys/internal/metrics"
)

// rotationUseCaseWithMetrics decorates RotationUseCase with metrics instrumentation.
type rotationUseCaseWithMetrics struct {
	next    RotationUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationUseCaseWithMetrics wraps a RotationUseCase with metrics recording.
func NewRotationUseCaseWithMetrics(useCase RotationUseCase, m metrics.BusinessMetrics) RotationUseCase {
	return &rotationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Rotate records metrics for key rotation operations.
func (r *rotationUseCaseWithMetrics) Rotate(
	ctx context.Context,
	conversationID, initiatorID uuid.UUID,
) (*keychainDomain.RotationOutcome, error) {
	start := time.Now()
	outcome, err := r.next.Rotate(ctx, conversationID, initiatorID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "keychain", "key_rotate", status)
	r.metrics.RecordDuration(ctx, "keychain", "key_rotate", time.Since(start), status)

	return outcome, err
}

// keyQueryUseCaseWithMetrics decorates KeyQueryUseCase with metrics instrumentation.
type keyQueryUseCaseWithMetrics struct {
	next    KeyQueryUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyQueryUseCaseWithMetrics wraps a KeyQueryUseCase with metrics recording.
func NewKeyQueryUseCaseWithMetrics(useCase KeyQueryUseCase, m metrics.BusinessMetrics) KeyQueryUseCase {
	return &keyQueryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// ListForUser records metrics for key history queries.
func (k *keyQueryUseCaseWithMetrics) ListForUser(
	ctx context.Context,
	conversationID, userID uuid.UUID,
) ([]*keychainDomain.KeyCopy, error) {
	start := time.Now()
	copies, err := k.next.ListForUser(ctx, conversationID, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keychain", "key_list", status)
	k.metrics.RecordDuration(ctx, "keychain", "key_list", time.Since(start), status)

	return copies, err
}

// ActiveForUser records metrics for active key lookups.
func (k *keyQueryUseCaseWithMetrics) ActiveForUser(
	ctx context.Context,
	conversationID, userID uuid.UUID,
) (*keychainDomain.KeyCopy, error) {
	start := time.Now()
	keyCopy, err := k.next.ActiveForUser(ctx, conversationID, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keychain", "key_active", status)
	k.metrics.RecordDuration(ctx, "keychain", "key_active", time.Since(start), status)

	return keyCopy, err
}
