package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck flags a goroutine leak: unhealthy once the live
// goroutine count passes limit.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds limit %d", n, limit)
		}
		return nil
	}
}

// PingCheck adapts a Ping method, such as pgxpool.Pool.Ping, into a
// readiness check.
func PingCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) error {
		if err := ping(ctx); err != nil {
			return errors.Wrap(err, "ping")
		}
		return nil
	}
}
