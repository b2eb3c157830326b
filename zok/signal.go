package zok

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func Exit() <-chan os.Signal {
	return notify()
}

func notify() chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop,
		syscall.SIGTERM, // kill
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGQUIT, // Ctrl+\
	)
	return stop
}

// WithExit returns a context cancelled by the first exit signal, with the
// signal as its cause.
func WithExit(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	stop := notify()
	go func() {
		select {
		case sig := <-stop:
			cancel(fmt.Errorf("signal: %s", sig))
		case <-ctx.Done():
		}
		signal.Stop(stop)
	}()
	return ctx, func() { cancel(context.Canceled) }
}
