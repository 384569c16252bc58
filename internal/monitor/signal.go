package monitor

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"AirPaper/internal/apperr"
)

// NotifyContext returns a context that is cancelled with an
// *apperr.TerminatedError naming the first of sigs to arrive.
func NotifyContext(parent context.Context, logger *log.Logger, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	ctx, cancel := context.WithCancelCause(parent)
	go watchSignals(ctx, ch, cancel, logger)
	return ctx, func() {
		signal.Stop(ch)
		cancel(context.Canceled)
	}
}

func watchSignals(ctx context.Context, ch <-chan os.Signal, cancel context.CancelCauseFunc, logger *log.Logger) {
	select {
	case <-ctx.Done():
	case s := <-ch:
		logger.Infof("Caught signal [ %v ].", s)
		cancel(&apperr.TerminatedError{Signal: s})
	}
}

// ExitCode logs why Run returned and maps it to a process exit status. A
// deliberate termination is not a failure.
func ExitCode(logger *log.Logger, err error) int {
	var te *apperr.TerminatedError
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.As(err, &te):
		if te.Signal == syscall.SIGTERM {
			logger.Warn("Stopped by service manager.")
		} else {
			logger.Warn("Stopped by keyboard input (ctrl-c).")
		}
		return 0
	default:
		logger.Error("Monitoring aborted", "err", err)
		return 1
	}
}
