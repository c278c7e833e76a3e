package redisstore

import (
	"context"
	"time"
)

// retry runs fn up to attempts times, doubling a short pause after each
// failure. The mirror writes it protects are best effort: anything a
// couple of quick retries cannot fix is the caller's context's problem.
func retry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	pause := 40 * time.Millisecond

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
			pause *= 2
		}
	}

	return err
}
