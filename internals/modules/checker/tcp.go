package checker

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
	"upwatch/internals/modules/monitor"
)

// tcpAddress strips any scheme prefix and requires an explicit port.
func tcpAddress(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if i := strings.Index(addr, "://"); i >= 0 {
		addr = addr[i+3:]
	}
	addr = strings.TrimSuffix(addr, "/")

	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" || port == "" {
		return "", fmt.Errorf("tcp check needs host:port, got %q", raw)
	}

	return net.JoinHostPort(host, port), nil
}

// tcpAttempt probes whether a TCP connect succeeds. With invert set the
// check passes when the port is closed (tcp_open_then_error).
func (e *Executor) tcpAttempt(item *monitor.Item, invert bool) (attemptFn, error) {
	addr, err := tcpAddress(item.URL)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) Result {
		start := time.Now()

		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		latency := time.Since(start)

		open := err == nil
		if conn != nil {
			conn.Close()
		}

		if open != invert {
			return Result{Success: true, Latency: latency}
		}

		if open {
			return Result{Latency: latency, Message: fmt.Sprintf("port %s unexpectedly open", addr)}
		}
		return Result{Latency: latency, Message: fmt.Sprintf("connect %s: %v", addr, err)}
	}, nil
}
