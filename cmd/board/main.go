package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stateforward/go-fsm/cmd/board/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := commands.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
