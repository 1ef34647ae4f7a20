package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/altuslabsxyz/xray-pack/cmd/xray-pack/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, commands.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
