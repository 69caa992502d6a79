package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/chatkeys/internal/app"
	"github.com/allisson/chatkeys/internal/config"
)

// RunCleanSessions deletes expired login sessions from storage.
// Sessions already past their expiration are rejected at authentication time;
// this command reclaims the rows. Intended to run periodically (e.g. cron).
//
// Requirements: Database must be migrated and accessible.
func RunCleanSessions(ctx context.Context, io IOTuple) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("cleaning expired sessions")

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get session repository from container
	sessionRepository, err := container.SessionRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize session repository: %w", err)
	}

	deleted, err := sessionRepository.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "Deleted %d expired sessions\n", deleted)

	logger.Info("expired sessions cleaned", slog.Int64("deleted", deleted))
	return nil
}
