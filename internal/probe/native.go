package probe

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// PingerBackend sends echoes in-process with pro-bing over a raw ICMPv6 socket
// bound to the interface and source address.
//
// pro-bing drops ICMPv6 error messages, so Unreachable is always zero here.
type PingerBackend struct {
	// Interval between echoes.
	Interval time.Duration
	// Privileged selects raw sockets; unprivileged mode needs ping_group_range.
	Privileged bool
}

// NewPingerBackend returns a privileged backend with a one-second interval.
func NewPingerBackend() *PingerBackend {
	return &PingerBackend{Interval: time.Second, Privileged: true}
}

// Ping implements Backend.
func (b *PingerBackend) Ping(ctx context.Context, req Request) Result {
	res := Result{Requested: req.Count}

	pinger, err := probing.NewPinger(req.Target.String())
	if err != nil {
		res.ExitCode = -1
		res.Err = err
		return res
	}

	interval := b.Interval
	if interval <= 0 {
		interval = time.Second
	}
	pinger.SetNetwork("ip6")
	pinger.SetPrivileged(b.Privileged)
	pinger.Count = req.Count
	pinger.Interval = interval
	pinger.Timeout = time.Duration(req.Count-1)*interval + req.Timeout
	pinger.InterfaceName = req.Interface
	if req.Source.IsValid() {
		pinger.Source = req.Source.String()
	}

	if err := pinger.RunWithContext(ctx); err != nil {
		res.ExitCode = -1
		res.Err = err
	}

	stats := pinger.Statistics()
	res.Received = stats.PacketsRecv
	if res.Err == nil && res.Received == 0 {
		// Match ping(8): no replies at all is exit status 1.
		res.ExitCode = 1
	}
	return res
}
