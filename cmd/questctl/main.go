// Package main is the entry point for the questctl CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"questctl/internal/backend/questapi"
	"questctl/internal/cli"
	"questctl/internal/commands"
	"questctl/internal/config"
	"questctl/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return questapi.New(ctx, cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
