package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// mockRotationUseCase is a local mock for RotationUseCase.
type mockRotationUseCase struct {
	mock.Mock
}

func (m *mockRotationUseCase) Rotate(ctx context.Context, conversationID, initiatorID uuid.UUID) (*keychainDomain.RotationOutcome, error) {
	args := m.Called(ctx, conversationID, initiatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keychainDomain.RotationOutcome), args.Error(1)
}

// mockKeyQueryUseCase is a local mock for KeyQueryUseCase.
type mockKeyQueryUseCase struct {
	mock.Mock
}

func (m *mockKeyQueryUseCase) ListForUser(ctx context.Context, conversationID, userID uuid.UUID) ([]*keychainDomain.KeyCopy, error) {
	args := m.Called(ctx, conversationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keychainDomain.KeyCopy), args.Error(1)
}

func (m *mockKeyQueryUseCase) ActiveForUser(ctx context.Context, conversationID, userID uuid.UUID) (*keychainDomain.KeyCopy, error) {
	args := m.Called(ctx, conversationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keychainDomain.KeyCopy), args.Error(1)
}

func TestRotationUseCaseWithMetrics_Rotate(t *testing.T) {
	ctx := context.Background()
	conversationID := uuid.Must(uuid.NewV7())
	initiatorID := uuid.Must(uuid.NewV7())

	t.Run("Rotate_Success", func(t *testing.T) {
		mockNext := &mockRotationUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewRotationUseCaseWithMetrics(mockNext, mockMetrics)

		expected := &keychainDomain.RotationOutcome{AnchorMessageID: 5, IssuedCopies: 2}
		mockNext.On("Rotate", ctx, conversationID, initiatorID).Return(expected, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "keychain", "key_rotate", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "keychain", "key_rotate", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		outcome, err := uc.Rotate(ctx, conversationID, initiatorID)

		assert.NoError(t, err)
		assert.Equal(t, expected, outcome)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Rotate_Error", func(t *testing.T) {
		mockNext := &mockRotationUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewRotationUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("Rotate", ctx, conversationID, initiatorID).Return(nil, assert.AnError).Once()
		mockMetrics.On("RecordOperation", ctx, "keychain", "key_rotate", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "keychain", "key_rotate", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		outcome, err := uc.Rotate(ctx, conversationID, initiatorID)

		assert.Error(t, err)
		assert.Nil(t, outcome)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestKeyQueryUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	conversationID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	t.Run("ListForUser_Success", func(t *testing.T) {
		mockNext := &mockKeyQueryUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewKeyQueryUseCaseWithMetrics(mockNext, mockMetrics)

		expected := []*keychainDomain.KeyCopy{{ID: uuid.Must(uuid.NewV7())}}
		mockNext.On("ListForUser", ctx, conversationID, userID).Return(expected, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "keychain", "key_list", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "keychain", "key_list", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		copies, err := uc.ListForUser(ctx, conversationID, userID)

		assert.NoError(t, err)
		assert.Equal(t, expected, copies)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("ActiveForUser_Error", func(t *testing.T) {
		mockNext := &mockKeyQueryUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := NewKeyQueryUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("ActiveForUser", ctx, conversationID, userID).
			Return(nil, keychainDomain.ErrKeyNotFound).Once()
		mockMetrics.On("RecordOperation", ctx, "keychain", "key_active", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "keychain", "key_active", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		copy, err := uc.ActiveForUser(ctx, conversationID, userID)

		assert.ErrorIs(t, err, keychainDomain.ErrKeyNotFound)
		assert.Nil(t, copy)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}
