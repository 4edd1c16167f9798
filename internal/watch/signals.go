package watch

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// SignalContext returns a context that is cancelled when the process receives
// SIGINT or SIGTERM. The returned stop function releases the signal handler
// and must be called when the caller is done.
func SignalContext(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	go cancelLoop(ctx, sigChan, done, cancel)

	return ctx, func() {
		signal.Stop(sigChan)
		close(done)
		cancel()
	}
}

// cancelLoop cancels on the first signal from sigChan. It exits when done is
// closed or the context ends.
func cancelLoop(ctx context.Context, sigChan <-chan os.Signal, done <-chan struct{}, cancel context.CancelFunc) {
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("stopping")
		cancel()
	case <-done:
	case <-ctx.Done():
	}
}
