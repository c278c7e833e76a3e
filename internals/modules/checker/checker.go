package checker

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"upwatch/config"
	"upwatch/internals/modules/monitor"

	"github.com/rs/zerolog"
)

// Result is the outcome of one full check, after retries.
type Result struct {
	Success   bool
	Latency   time.Duration // latency of the final attempt
	Message   string        // failure reason, empty on clean success
	Attempts  int
	CheckedAt time.Time
}

// attemptFn performs a single probe against the target. The passed
// context already carries the per-attempt deadline.
type attemptFn func(ctx context.Context) Result

type Executor struct {
	client         *http.Client
	logger         *zerolog.Logger
	maxAttempts    int
	retryDelay     time.Duration
	attemptTimeout time.Duration
	webMaxStatus   int
	sslMarginDays  int
}

func NewExecutor(cfg *config.CheckerConfig, client *http.Client, logger *zerolog.Logger) *Executor {
	return &Executor{
		client:         client,
		logger:         logger,
		maxAttempts:    cfg.MaxAttempts,
		retryDelay:     cfg.RetryDelay,
		attemptTimeout: cfg.AttemptTimeout,
		webMaxStatus:   cfg.WebMaxStatus,
		sslMarginDays:  cfg.SSLExpiryMarginDays,
	}
}

// Execute runs the check matching the item's type, retrying transient
// failures with a fixed delay and stopping early on the first success.
func (e *Executor) Execute(ctx context.Context, item *monitor.Item) Result {
	attempt, err := e.attemptFor(item)
	if err != nil {
		// Misconfigured item. Retrying cannot change the outcome.
		return Result{
			Success:   false,
			Message:   err.Error(),
			Attempts:  0,
			CheckedAt: time.Now(),
		}
	}

	return e.withRetry(ctx, attempt)
}

func (e *Executor) attemptFor(item *monitor.Item) (attemptFn, error) {
	switch item.Type {
	case monitor.CheckPingWeb:
		return e.pingWebAttempt(item), nil
	case monitor.CheckWebContent:
		return e.webContentAttempt(item), nil
	case monitor.CheckPingICMP:
		return e.icmpAttempt(item)
	case monitor.CheckTCPOpen:
		return e.tcpAttempt(item, false)
	case monitor.CheckTCPOpenThenError:
		return e.tcpAttempt(item, true)
	case monitor.CheckSSLExpiry:
		return e.sslAttempt(item), nil
	default:
		return nil, fmt.Errorf("unknown check type %q", item.Type)
	}
}

func (e *Executor) withRetry(ctx context.Context, attempt attemptFn) Result {
	var res Result

	for i := 0; i < e.maxAttempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		res = attempt(attemptCtx)
		cancel()

		res.Attempts = i + 1
		res.CheckedAt = time.Now()

		if res.Success {
			return res
		}

		if i == e.maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			res.Message = ctx.Err().Error()
			return res
		case <-time.After(e.retryDelay):
		}
	}

	if res.Attempts > 1 {
		res.Message = fmt.Sprintf("%s (after %d attempts)", res.Message, res.Attempts)
	}
	return res
}
