package connectivity

import (
	"context"
	"net"
	"time"
)

const defaultDialTimeout = 2 * time.Second

// DialProbe treats the remote as reachable when a TCP connection to Address
// can be opened within Timeout.
type DialProbe struct {
	Address string
	Timeout time.Duration
}

// Online dials Address and closes the connection straight away.
func (d DialProbe) Online(ctx context.Context) bool {
	if d.Address == "" {
		return false
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// ForSettings picks the probe for a configuration: a DialProbe when address is
// set, otherwise a Static answer.
func ForSettings(address string, timeout time.Duration, online bool) Probe {
	if address == "" {
		return Static(online)
	}
	return DialProbe{Address: address, Timeout: timeout}
}
