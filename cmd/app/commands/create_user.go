package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/allisson/chatkeys/internal/app"
	"github.com/allisson/chatkeys/internal/config"
	userUseCase "github.com/allisson/chatkeys/internal/user/usecase"
)

// RunCreateUser registers a new user account from the command line.
// Useful for bootstrapping the first accounts before the HTTP API is exposed.
// Outputs the created user's id and name in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(ctx context.Context, name, password, format string, io IOTuple) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("creating new user", slog.String("name", name))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get user use case from container
	useCase, err := container.UserUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize user use case: %w", err)
	}

	user, err := useCase.RegisterUser(ctx, userUseCase.RegisterUserInput{
		Name:     name,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	// Output result based on format
	if format == "json" {
		output := map[string]string{
			"id":   user.ID.String(),
			"name": user.Name,
		}
		encoder := json.NewEncoder(io.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(io.Writer, "User created successfully\n")
		_, _ = fmt.Fprintf(io.Writer, "ID:   %s\n", user.ID)
		_, _ = fmt.Fprintf(io.Writer, "Name: %s\n", user.Name)
	}

	logger.Info("user created successfully", slog.String("user_id", user.ID.String()))
	return nil
}
