package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/polycalc/internal/logging"
	"github.com/agbru/polycalc/internal/server"
)

// metricsShutdownTimeout bounds the graceful stop of the metrics server.
const metricsShutdownTimeout = 5 * time.Second

// SetupContext bounds ctx by timeout. The returned cancel function should be
// deferred.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// SetupSignals returns a context canceled on SIGINT (Ctrl+C) or SIGTERM, so
// that a long multiplication or calibration stops at its next checkpoint.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// SetupLifecycle combines the timeout and the signal handling. The context
// is canceled by whichever comes first.
//
// Parameters:
//   - ctx: The parent context.
//   - timeout: The maximum duration of the run.
//
// Returns:
//   - context.Context: The bounded context.
//   - *CancelFuncs: The functions releasing both, see Cleanup.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)

	return ctx, &CancelFuncs{
		CancelTimeout: cancelTimeout,
		StopSignals:   stopSignals,
	}
}

// CancelFuncs holds the cancel functions returned by SetupLifecycle.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup stops the signal handling, then cancels the timeout.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}

// startMetricsServer serves /metrics and /health on the configured address
// for the duration of the run. The returned function stops the server.
func (a *Application) startMetricsServer() (func(), error) {
	srv := server.NewServer(a.Config.MetricsAddr, server.WithLogger(a.Logger))
	addr, err := srv.Start()
	if err != nil {
		return nil, err
	}
	a.Logger.Info("metrics server listening", logging.String("addr", addr.String()))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown failed", err)
		}
	}, nil
}
