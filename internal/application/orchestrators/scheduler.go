package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// StartScheduler runs job every interval on a background goroutine until ctx
// is cancelled or the returned stop function is called. Each run gets its own
// timeout of one interval.
// PRE: interval > 0
// POST: Goroutine started; stop blocks until it has exited
func StartScheduler(ctx context.Context, name string, interval time.Duration, job func(context.Context) error) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("scheduler_stopped", "job", name)
				return
			case <-ticker.C:
				runCtx, runCancel := context.WithTimeout(ctx, interval)
				if err := job(runCtx); err != nil {
					slog.Error("scheduler_job_failed", "job", name, "error", err)
				}
				runCancel()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
