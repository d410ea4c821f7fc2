// Package probe measures IPv6 reachability through a single interface.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"grimm.is/v6watch/internal/clock"
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/logging"
	"grimm.is/v6watch/internal/network"
)

var (
	// ErrNoValidAddress means the interface has no address that may source a probe.
	ErrNoValidAddress = errors.New("no valid global IPv6 address")
	// ErrProbeFailed means the success threshold was not met after all attempts.
	ErrProbeFailed = errors.New("probe failed")
)

// Result is the outcome of one probe attempt.
type Result struct {
	Requested   int
	Received    int
	Unreachable int
	// ExitCode is the probe command's status; 0 unless the command failed outright.
	ExitCode int
	Err      error
}

// Succeeded reports whether at least half of the requested echoes were answered,
// rounding the half up: two of three, two of four.
func (r Result) Succeeded() bool {
	return r.Requested > 0 && r.Received*2 >= r.Requested
}

// Ratio is the fraction of requested echoes that were answered.
func (r Result) Ratio() float64 {
	if r.Requested == 0 {
		return 0
	}
	return float64(r.Received) / float64(r.Requested)
}

// Request describes a single batch of echoes.
type Request struct {
	Interface string
	Source    netip.Addr
	Target    netip.Addr
	Count     int
	Timeout   time.Duration // per echo
}

// Backend sends one batch of echoes. It never returns an error; failures are
// reported through Result.ExitCode and Result.Err.
type Backend interface {
	Ping(ctx context.Context, req Request) Result
}

// AddressLister is the part of the inspector the prober needs.
type AddressLister interface {
	ListGlobalAddresses(name string) ([]network.Address, error)
}

// Prober runs probes with retries.
type Prober struct {
	target     netip.Addr
	count      int
	timeout    time.Duration
	treat128   bool
	retries    int
	retryPause time.Duration

	addrs   AddressLister
	backend Backend
	clock   clock.Clock
	logger  *logging.Logger
}

// New creates a prober from cfg. cfg must already be validated.
func New(cfg *config.Config, addrs AddressLister, backend Backend, clk clock.Clock, logger *logging.Logger) *Prober {
	if clk == nil {
		clk = &clock.RealClock{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	timing := cfg.Timing()
	return &Prober{
		target:     netip.MustParseAddr(cfg.ProbeTarget),
		count:      cfg.ProbeCount,
		timeout:    cfg.ProbeTimeout(),
		treat128:   cfg.Treat128AsDeletable,
		retries:    timing.ProbeRetries,
		retryPause: timing.RetryPause,
		addrs:      addrs,
		backend:    backend,
		clock:      clk,
		logger:     logger.WithComponent("probe"),
	}
}

// Probe checks reachability of the target through iface.
//
// It returns ErrNoValidAddress without sending anything when the interface has
// no address valid for probing. When the probe command fails outright and the
// threshold is not met it retries, pausing between attempts. The last attempt's
// result is always returned.
func (p *Prober) Probe(ctx context.Context, iface string) (Result, error) {
	addrs, err := p.addrs.ListGlobalAddresses(iface)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoValidAddress, err)
	}
	src, ok := network.FirstValid(addrs, p.treat128)
	if !ok {
		p.logger.Warn("No valid global IPv6 address, skipping probe", "iface", iface)
		return Result{}, ErrNoValidAddress
	}

	req := Request{
		Interface: iface,
		Source:    src.IP,
		Target:    p.target,
		Count:     p.count,
		Timeout:   p.timeout,
	}

	attempts := 1 + p.retries
	var res Result
	for attempt := 1; attempt <= attempts; attempt++ {
		res = p.backend.Ping(ctx, req)
		res.Requested = p.count

		p.logger.Info("Probe attempt",
			"iface", iface,
			"source", src.IP,
			"target", p.target,
			"attempt", fmt.Sprintf("%d/%d", attempt, attempts),
			"received", res.Received,
			"requested", res.Requested,
			"unreachable", res.Unreachable,
			"exit", res.ExitCode)

		if res.Succeeded() {
			p.logger.Success("IPv6 reachable", "iface", iface, "received", res.Received, "requested", res.Requested)
			return res, nil
		}
		if res.ExitCode == 0 || attempt == attempts {
			break
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		p.logger.Warn("Probe command failed, retrying", "iface", iface, "pause", p.retryPause, "error", res.Err)
		if err := p.clock.Sleep(ctx, p.retryPause); err != nil {
			return res, err
		}
	}

	p.logger.Warn("IPv6 unreachable", "iface", iface, "received", res.Received, "requested", res.Requested)
	return res, fmt.Errorf("%w on %s: %d/%d replies", ErrProbeFailed, iface, res.Received, res.Requested)
}
