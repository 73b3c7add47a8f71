// Package probe runs one-shot readiness checks against a local port.
package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const defaultTimeout = 2 * time.Second

// Config describes a single check.
type Config struct {
	Type    string        // "http" | "tcp"
	Path    string        // http only, must start with /
	Status  int           // http only, expected status; 0 accepts any 2xx
	Port    int
	Timeout time.Duration // max time per check
}

// Check runs one check and returns nil if the target is healthy.
func Check(ctx context.Context, cfg Config) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	switch cfg.Type {
	case "http":
		return checkHTTP(ctx, cfg)
	case "tcp":
		return checkTCP(ctx, cfg)
	default:
		return fmt.Errorf("unknown probe type: %s", cfg.Type)
	}
}

// WaitReady repeats Check every interval until it passes or ctx is done.
func WaitReady(ctx context.Context, cfg Config, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := Check(ctx, cfg)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for port %d: %w (last error: %v)", cfg.Port, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

func checkHTTP(ctx context.Context, cfg Config) error {
	url := "http://" + cfg.addr() + cfg.Path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()

	if !cfg.accepts(resp.StatusCode) {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return nil
}

func checkTCP(ctx context.Context, cfg Config) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.addr())
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.addr(), err)
	}
	return conn.Close()
}

func (c Config) addr() string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(c.Port))
}

// accepts reports whether code satisfies the expected status.
func (c Config) accepts(code int) bool {
	if c.Status != 0 {
		return code == c.Status
	}
	return code >= 200 && code < 300
}
