package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"invdefects/internal/cli/commands"
	"invdefects/internal/cli/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		ui.PrintError("%v", err)
		stop()
		os.Exit(1)
	}
}
