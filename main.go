package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"markestedt/ahkgen/cli"
)

func main() {
	// Setup logging; stdout carries command output
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cli.LogLevel,
	}))
	slog.SetDefault(logger)

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		slog.Error("ahkgen failed", "error", err)
		os.Exit(1)
	}
}
