package executil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ChooseFreePort asks the kernel for an unused TCP port.
func ChooseFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// IsPortBusy probes host:port with a short dial. A successful connect means
// something is already listening. The probe is advisory: a race between the
// check and a later bind remains possible.
func IsPortBusy(host string, port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), 200*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		return true
	}
	return false
}

// WaitHTTP polls url until it returns the wanted status or the timeout
// elapses. Used to detect engine-server readiness.
func WaitHTTP(ctx context.Context, url string, want int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == want {
				return nil
			}
		}
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s to return %d", url, want)
		}
	}
}
