package observability

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

// NotifyShutdown returns a context that is cancelled on SIGINT or SIGTERM.
// The received signal is logged. Call stop to release the signal handler.
func NotifyShutdown(parent context.Context, logger *logrus.Logger) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			if logger != nil {
				logger.Infof("Received signal %s, shutting down", sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
