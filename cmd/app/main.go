// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/chatkeys/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Group messaging backend with conversation key lifecycle management",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-user",
				Usage: "Register a new user account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Unique account name",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Account password (min 8 chars, upper, lower and number required)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateUser(
						ctx,
						cmd.String("name"),
						cmd.String("password"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "rotate-key",
				Usage: "Force a key rotation on a conversation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "conversation-id",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Conversation ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "initiator-id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Initiating user ID (UUID), must be a participant",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotateKey(
						ctx,
						cmd.String("conversation-id"),
						cmd.String("initiator-id"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "clean-sessions",
				Usage: "Delete expired login sessions",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanSessions(ctx, commands.DefaultIO())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
