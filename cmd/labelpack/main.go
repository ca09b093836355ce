package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackzampolin/labelpack/internal/extract"
	"github.com/jackzampolin/labelpack/internal/orders"
)

func main() {
	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	cancel()
	os.Exit(exitCode(err))
}

// exitCode is 2 when the batch was stopped by its input (an unreadable label
// PDF or a tracking number with no order) and 1 for any other failure.
func exitCode(err error) int {
	var fileErr *extract.FileError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, orders.ErrUnresolved), errors.As(err, &fileErr):
		return 2
	default:
		return 1
	}
}
