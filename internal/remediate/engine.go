// Package remediate decides whether an interface needs its IPv6 addressing
// renewed and carries the renewal out.
//
// The engine is a small state machine:
//
//	Checking -> Cooldown-Recheck -> Remediating -> Final-Verify -> Done
//
// Each transition is driven by a probe result. Destructive work only happens
// once two probes separated by the cooldown have failed.
package remediate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"grimm.is/v6watch/internal/acquire"
	"grimm.is/v6watch/internal/clock"
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/logging"
	"grimm.is/v6watch/internal/network"
	"grimm.is/v6watch/internal/probe"
)

// Prober runs one reachability check, retries included.
type Prober interface {
	Probe(ctx context.Context, iface string) (probe.Result, error)
}

// AddressManager reads and deletes interface addresses.
type AddressManager interface {
	ListGlobalAddresses(name string) ([]network.Address, error)
	DeleteAddress(name string, a network.Address) error
}

// Cleaner terminates acquisition clients running on an interface.
type Cleaner interface {
	Cleanup(ctx context.Context, iface string) (int, error)
}

// Deps are the engine's collaborators. Solicitor may be nil.
type Deps struct {
	Prober    Prober
	Addresses AddressManager
	Cleaner   Cleaner
	Acquirer  acquire.Acquirer
	Solicitor network.Solicitor
	Clock     clock.Clock
	Logger    *logging.Logger
}

// Outcome is what the engine reports for one interface.
type Outcome struct {
	Interface string
	Verdict   Verdict
	// Remediated is set once the engine entered the Remediating state.
	Remediated bool
	Deleted    []network.Address
	Acquired   []network.Address
	LastProbe  probe.Result
	Err        error
}

// Engine drives the remediation state machine for one interface at a time.
type Engine struct {
	timing   config.Timings
	treat128 bool
	deps     Deps
	logger   *logging.Logger
}

// New creates an engine.
func New(cfg *config.Config, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = &clock.RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return &Engine{
		timing:   cfg.Timing(),
		treat128: cfg.Treat128AsDeletable,
		deps:     deps,
		logger:   deps.Logger.WithComponent("remediate"),
	}
}

// Run starts the state machine at Checking.
func (e *Engine) Run(ctx context.Context, iface string) Outcome {
	return e.drive(ctx, iface, StateChecking)
}

// Remediate starts the state machine at Remediating, skipping both probes.
// It is used when the interface has no address a probe could be sent from.
func (e *Engine) Remediate(ctx context.Context, iface string) Outcome {
	return e.drive(ctx, iface, StateRemediating)
}

func (e *Engine) drive(ctx context.Context, iface string, state State) Outcome {
	out := Outcome{Interface: iface}
	for state != StateDone {
		e.logger.Debug("Entering state", "iface", iface, "state", state)
		var err error
		state, err = e.step(ctx, iface, state, &out)
		if err != nil {
			return e.abort(ctx, iface, &out, err)
		}
	}
	e.logger.Info("Interface finished", "iface", iface, "verdict", out.Verdict)
	return out
}

// step runs one state and returns the next. A non-nil error means the run
// was cancelled.
func (e *Engine) step(ctx context.Context, iface string, state State, out *Outcome) (State, error) {
	switch state {
	case StateChecking:
		if e.probe(ctx, iface, out) {
			out.Verdict = VerdictHealthy
			return StateDone, nil
		}
		return StateCooldown, ctx.Err()

	case StateCooldown:
		e.logger.Warn("Probe failed, rechecking after cooldown", "iface", iface, "cooldown", e.timing.Cooldown)
		if err := e.deps.Clock.Sleep(ctx, e.timing.Cooldown); err != nil {
			return StateDone, err
		}
		if e.probe(ctx, iface, out) {
			e.logger.Info("Recovered without intervention", "iface", iface)
			out.Verdict = VerdictHealthy
			return StateDone, nil
		}
		return StateRemediating, ctx.Err()

	case StateRemediating:
		out.Remediated = true
		if err := e.remediate(ctx, iface, out); err != nil {
			if ctx.Err() != nil {
				return StateDone, ctx.Err()
			}
			out.Verdict = VerdictFailed
			out.Err = err
			return StateDone, nil
		}
		return StateFinalVerify, nil

	case StateFinalVerify:
		e.logger.Info("Waiting for addressing to settle", "iface", iface, "settle", e.timing.Settle)
		if err := e.deps.Clock.Sleep(ctx, e.timing.Settle); err != nil {
			return StateDone, err
		}
		if e.probe(ctx, iface, out) {
			e.logger.Success("IPv6 restored", "iface", iface)
			out.Verdict = VerdictRemediated
			return StateDone, nil
		}
		if ctx.Err() != nil {
			return StateDone, ctx.Err()
		}
		e.logger.Error("IPv6 still unreachable after remediation", "iface", iface)
		out.Verdict = VerdictFailed
		out.Err = fmt.Errorf("%w after remediation on %s", probe.ErrProbeFailed, iface)
		return StateDone, nil
	}
	return StateDone, fmt.Errorf("unknown state %d", state)
}

func (e *Engine) probe(ctx context.Context, iface string, out *Outcome) bool {
	res, err := e.deps.Prober.Probe(ctx, iface)
	out.LastProbe = res
	if err != nil {
		out.Err = err
		return false
	}
	out.Err = nil
	return true
}

// remediate deletes stale addresses, clears competing clients and acquires
// new addresses.
func (e *Engine) remediate(ctx context.Context, iface string, out *Outcome) error {
	if err := e.deleteStale(iface, out); err != nil {
		e.logger.Warn("Some addresses could not be deleted", "iface", iface, "error", err)
	}
	// New addresses are those missing from the post-deletion listing.
	baseline, err := e.deps.Addresses.ListGlobalAddresses(iface)
	if err != nil {
		e.logger.Warn("Failed to read addresses after deletion", "iface", iface, "error", err)
	}
	known := err == nil

	if e.deps.Solicitor != nil {
		if err := e.deps.Solicitor.Solicit(iface); err != nil {
			e.logger.Warn("Router solicitation failed", "iface", iface, "error", err)
		} else {
			e.logger.Info("Sent router solicitation", "iface", iface)
		}
	}

	e.cleanup(ctx, iface)
	if err := ctx.Err(); err != nil {
		return err
	}

	e.logger.Info("Requesting new addresses", "iface", iface, "timeout", e.timing.AcquireTimeout)
	acqCtx, cancel := context.WithTimeout(ctx, e.timing.AcquireTimeout)
	err = e.deps.Acquirer.Acquire(acqCtx, iface)
	cancel()
	if err != nil {
		e.logger.Error("Address acquisition failed", "iface", iface, "error", err)
		// On cancellation abort performs the second cleanup.
		if ctx.Err() == nil {
			e.cleanup(ctx, iface)
		}
		return err
	}

	if known {
		e.logAcquired(iface, baseline, out)
	}
	return nil
}

// deleteStale removes every stable address and, when allowed, every /128.
// Each failure is logged and joined; one failure never stops the others.
func (e *Engine) deleteStale(iface string, out *Outcome) error {
	addrs, err := e.deps.Addresses.ListGlobalAddresses(iface)
	if err != nil {
		return fmt.Errorf("failed to list addresses on %s: %w", iface, err)
	}

	var errs []error
	for _, a := range addrs {
		if !Deletable(a, e.treat128) {
			e.logger.Debug("Keeping address", "iface", iface, "addr", a, "class", network.Classify(a))
			continue
		}
		if err := e.deps.Addresses.DeleteAddress(iface, a); err != nil {
			e.logger.Error("Failed to delete address", "iface", iface, "addr", a, "error", err)
			errs = append(errs, err)
			continue
		}
		e.logger.Info("Deleted address", "iface", iface, "addr", a, "class", network.Classify(a))
		out.Deleted = append(out.Deleted, a)
	}
	if len(out.Deleted) == 0 && len(errs) == 0 {
		e.logger.Info("No deletable addresses", "iface", iface)
	}
	return errors.Join(errs...)
}

// Deletable reports whether remediation may remove a. Non-global addresses
// are never deletable.
func Deletable(a network.Address, treat128AsDeletable bool) bool {
	switch network.Classify(a) {
	case network.ClassStable:
		return true
	case network.ClassEphemeral:
		return treat128AsDeletable
	default:
		return false
	}
}

func (e *Engine) cleanup(ctx context.Context, iface string) {
	if e.deps.Cleaner == nil {
		return
	}
	n, err := e.deps.Cleaner.Cleanup(ctx, iface)
	if err != nil {
		e.logger.Warn("Process cleanup failed", "iface", iface, "error", err)
		return
	}
	if n > 0 {
		e.logger.Info("Terminated competing DHCPv6 clients", "iface", iface, "count", n)
	}
}

// logAcquired reports the global addresses that are not in baseline.
func (e *Engine) logAcquired(iface string, baseline []network.Address, out *Outcome) {
	addrs, err := e.deps.Addresses.ListGlobalAddresses(iface)
	if err != nil {
		e.logger.Warn("Failed to re-read addresses", "iface", iface, "error", err)
		return
	}
	for _, a := range addrs {
		if slices.Contains(baseline, a) {
			continue
		}
		e.logger.Info("Obtained address", "iface", iface, "addr", a, "class", network.Classify(a))
		out.Acquired = append(out.Acquired, a)
	}
	if len(out.Acquired) == 0 {
		e.logger.Warn("Acquisition returned no new global addresses", "iface", iface)
	}
}

// abort handles cancellation. If remediation had started, competing clients
// are cleaned up with a context that ignores the cancellation.
func (e *Engine) abort(ctx context.Context, iface string, out *Outcome, err error) Outcome {
	e.logger.Warn("Run interrupted", "iface", iface, "error", err)
	if out.Remediated {
		e.cleanup(context.WithoutCancel(ctx), iface)
	}
	out.Verdict = VerdictFailed
	out.Err = err
	return *out
}
