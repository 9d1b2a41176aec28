package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZhangYouJie-Major/AskIt/cmd/askit/app"
)

var version string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := app.NewCommand(version)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
