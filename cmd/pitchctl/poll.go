package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"pitchctl/internal/gateway"
	"pitchctl/internal/logging"
	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
	"pitchctl/internal/watch"
)

// retryablePollError tolerates transient backend trouble while waiting.
// Anything the backend answered deliberately (4xx, unmapped codes) stops
// the loop.
func retryablePollError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return errors.Is(err, services.ErrTransport)
}

// pollSchedule resolves --interval and --timeout against the config. An
// explicit --timeout 0 disables the deadline even when the config sets one.
func pollSchedule(cmd *cobra.Command, rt *sessionRuntime, interval, timeout time.Duration) (time.Duration, time.Duration) {
	if interval <= 0 {
		interval = rt.cfg.PollInterval()
	}
	if !cmd.Flags().Changed("timeout") {
		timeout = rt.cfg.PollTimeout()
	} else if timeout < 0 {
		timeout = 0
	}
	return interval, timeout
}

// logPollStop records why a --wait loop ended early. Interrupts are not
// logged.
func logPollStop(rt *sessionRuntime, pipeline pitch.Pipeline, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	hint := services.Hint(err)
	if errors.Is(err, watch.ErrTimeout) {
		hint = "raise --timeout or polling.timeout_seconds"
	}
	if hint == "" {
		hint = "check logs for details"
	}
	logging.ErrorWithContext(rt.logger, "polling stopped", "poll_stopped",
		logging.String(logging.FieldPipeline, string(pipeline)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
	)
}
