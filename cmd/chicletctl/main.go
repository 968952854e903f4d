package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chiclet/backend/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand(cli.Options{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
