package utils

import (
	"context"
)

// GracefulShutdown blocks until ctx is done, runs cleanup, then cancels.
func GracefulShutdown(ctx context.Context, cancel context.CancelFunc, cleanup func()) {
	<-ctx.Done()
	if cleanup != nil {
		cleanup()
	}
	cancel()
}
