package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"
	"upwatch/internals/modules/monitor"
)

// sslAddress defaults the port to 443 when the row carries a bare host.
func sslAddress(raw string) (string, string) {
	addr := strings.TrimSpace(raw)
	if i := strings.Index(addr, "://"); i >= 0 {
		addr = addr[i+3:]
	}
	if i := strings.IndexAny(addr, "/?"); i >= 0 {
		addr = addr[:i]
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, "443"
	}
	return host, net.JoinHostPort(host, port)
}

// sslAttempt checks that the leaf certificate is valid for longer than
// the configured margin.
func (e *Executor) sslAttempt(item *monitor.Item) attemptFn {
	host, addr := sslAddress(item.URL)
	margin := e.sslMarginDays

	return func(ctx context.Context) Result {
		start := time.Now()

		dialer := &tls.Dialer{
			NetDialer: &net.Dialer{},
			Config:    &tls.Config{ServerName: host},
		}

		conn, err := dialer.DialContext(ctx, "tcp", addr)
		latency := time.Since(start)
		if err != nil {
			return Result{Latency: latency, Message: fmt.Sprintf("tls dial %s: %v", addr, err)}
		}
		defer conn.Close()

		state := conn.(*tls.Conn).ConnectionState()
		if len(state.PeerCertificates) == 0 {
			return Result{Latency: latency, Message: "no peer certificate presented"}
		}

		notAfter := state.PeerCertificates[0].NotAfter
		daysLeft := int(time.Until(notAfter).Hours() / 24)

		if daysLeft <= margin {
			return Result{
				Latency: latency,
				Message: fmt.Sprintf("certificate expires in %d days (at %s)", daysLeft, notAfter.Format(time.RFC3339)),
			}
		}

		return Result{Success: true, Latency: latency}
	}
}
