package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/app"
	"github.com/allisson/chatkeys/internal/config"
)

// RunRotateKey forces a key rotation on a conversation from the command line.
// The initiating user must be a participant; the rotation appends a marker
// message, closes every active key copy at the marker's id and issues a fresh
// wrapped copy to each participant with a usable public key.
//
// Operational use: run after removing a participant out-of-band or when
// suspecting key compromise.
//
// Requirements: Database must be migrated and accessible.
func RunRotateKey(ctx context.Context, conversationIDStr, initiatorIDStr string, io IOTuple) error {
	conversationID, err := uuid.Parse(conversationIDStr)
	if err != nil {
		return fmt.Errorf("invalid conversation id: %w", err)
	}
	initiatorID, err := uuid.Parse(initiatorIDStr)
	if err != nil {
		return fmt.Errorf("invalid initiator id: %w", err)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("rotating conversation key",
		slog.String("conversation_id", conversationID.String()),
		slog.String("initiator_id", initiatorID.String()),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get rotation use case from container
	rotationUseCase, err := container.RotationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize rotation use case: %w", err)
	}

	outcome, err := rotationUseCase.Rotate(ctx, conversationID, initiatorID)
	if err != nil {
		return fmt.Errorf("failed to rotate conversation key: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "Key rotated successfully\n")
	_, _ = fmt.Fprintf(io.Writer, "Anchor message ID: %d\n", outcome.AnchorMessageID)
	_, _ = fmt.Fprintf(io.Writer, "Issued copies:     %d\n", outcome.IssuedCopies)
	if len(outcome.SkippedUsers) > 0 {
		_, _ = fmt.Fprintf(io.Writer, "Skipped users (no usable public key):\n")
		for _, userID := range outcome.SkippedUsers {
			_, _ = fmt.Fprintf(io.Writer, "  %s\n", userID)
		}
	}

	logger.Info("conversation key rotated",
		slog.String("conversation_id", conversationID.String()),
		slog.Int64("anchor_message_id", outcome.AnchorMessageID),
		slog.Int("issued_copies", outcome.IssuedCopies),
	)
	return nil
}
