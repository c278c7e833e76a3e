package checker

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
	"upwatch/internals/modules/monitor"

	probing "github.com/prometheus-community/pro-bing"
)

// icmpHost reduces whatever the row carries (bare host, host:port, full
// URL) to the hostname to ping.
func icmpHost(raw string) (string, error) {
	h := strings.TrimSpace(raw)
	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}
	if i := strings.IndexAny(h, "/?"); i >= 0 {
		h = h[:i]
	}
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	if h == "" {
		return "", fmt.Errorf("icmp check has no host in %q", raw)
	}
	return h, nil
}

func (e *Executor) icmpAttempt(item *monitor.Item) (attemptFn, error) {
	host, err := icmpHost(item.URL)
	if err != nil {
		return nil, err
	}

	timeout := e.attemptTimeout

	return func(ctx context.Context) Result {
		start := time.Now()

		pinger := probing.New(host)
		pinger.Count = 1
		pinger.Timeout = timeout
		// Raw sockets: the binary runs with CAP_NET_RAW in production.
		pinger.SetPrivileged(true)

		if err := pinger.RunWithContext(ctx); err != nil {
			return Result{Latency: time.Since(start), Message: fmt.Sprintf("ping %s: %v", host, err)}
		}

		stats := pinger.Statistics()
		if stats.PacketsRecv == 0 {
			return Result{Latency: time.Since(start), Message: fmt.Sprintf("ping %s: no reply", host)}
		}

		return Result{Success: true, Latency: stats.AvgRtt}
	}, nil
}
