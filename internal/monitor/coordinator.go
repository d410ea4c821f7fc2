// Package monitor runs one health pass over every configured interface.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"grimm.is/v6watch/internal/clock"
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/logging"
	"grimm.is/v6watch/internal/network"
	"grimm.is/v6watch/internal/remediate"
)

var (
	ErrInterfaceAbsent = errors.New("interface does not exist")
	ErrInterfaceDown   = errors.New("interface is administratively down")
)

// Inspector is the read side of the address inspector.
type Inspector interface {
	LinkState(name string) (network.LinkState, error)
	ListGlobalAddresses(name string) ([]network.Address, error)
}

// Engine runs remediation for a single interface.
type Engine interface {
	Run(ctx context.Context, iface string) remediate.Outcome
	Remediate(ctx context.Context, iface string) remediate.Outcome
}

// Recorder persists a finished run, e.g. as metrics.
type Recorder interface {
	Record(s Summary) error
}

// Summary is the aggregate of one run.
type Summary struct {
	RunID       string
	Started     time.Time
	Duration    time.Duration
	Outcomes    []remediate.Outcome
	Succeeded   int
	Total       int
	Interrupted bool
}

// ExitCode is 1 when every configured interface failed or was skipped, or
// when the run was interrupted. Partial success exits 0.
func (s Summary) ExitCode() int {
	if s.Interrupted {
		return 1
	}
	if s.Total > 0 && s.Succeeded == 0 {
		return 1
	}
	return 0
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// Coordinator walks the configured interfaces in order, one at a time.
type Coordinator struct {
	interfaces []string
	treat128   bool

	inspector Inspector
	engine    Engine
	recorder  Recorder
	clock     clock.Clock
	logger    *logging.Logger
	runID     string
}

// Deps are the coordinator's collaborators. Recorder may be nil.
type Deps struct {
	Inspector Inspector
	Engine    Engine
	Recorder  Recorder
	Clock     clock.Clock
	Logger    *logging.Logger
	RunID     string
}

// NewCoordinator creates a coordinator for cfg.
func NewCoordinator(cfg *config.Config, deps Deps) *Coordinator {
	if deps.Clock == nil {
		deps.Clock = &clock.RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.RunID == "" {
		deps.RunID = NewRunID()
	}
	return &Coordinator{
		interfaces: append([]string(nil), cfg.Interfaces...),
		treat128:   cfg.Treat128AsDeletable,
		inspector:  deps.Inspector,
		engine:     deps.Engine,
		recorder:   deps.Recorder,
		clock:      deps.Clock,
		logger:     deps.Logger.WithComponent("monitor"),
		runID:      deps.RunID,
	}
}

// Run processes every interface and returns the summary. Cancelling ctx stops
// the run after the interface in progress has been cleaned up.
func (c *Coordinator) Run(ctx context.Context) Summary {
	s := Summary{RunID: c.runID, Started: c.clock.Now()}
	c.logger.Info("Starting run", "interfaces", len(c.interfaces))

	for _, iface := range c.interfaces {
		if ctx.Err() != nil {
			s.Interrupted = true
			break
		}
		out := c.check(ctx, iface)
		s.Outcomes = append(s.Outcomes, out)
		s.Total++
		if out.Verdict.Succeeded() {
			s.Succeeded++
		}
		if errors.Is(out.Err, context.Canceled) {
			s.Interrupted = true
			break
		}
	}
	s.Duration = c.clock.Since(s.Started)

	c.logSummary(s)
	if c.recorder != nil {
		if err := c.recorder.Record(s); err != nil {
			c.logger.Warn("Failed to record run metrics", "error", err)
		}
	}
	return s
}

func (c *Coordinator) check(ctx context.Context, iface string) remediate.Outcome {
	state, err := c.inspector.LinkState(iface)
	if err != nil {
		c.logger.Error("Failed to query interface", "iface", iface, "error", err)
		return remediate.Outcome{Interface: iface, Verdict: remediate.VerdictFailed, Err: err}
	}
	switch state {
	case network.LinkAbsent:
		c.logger.Error("Interface not found, skipping", "iface", iface)
		return remediate.Outcome{Interface: iface, Verdict: remediate.VerdictSkippedAbsent,
			Err: fmt.Errorf("%w: %s", ErrInterfaceAbsent, iface)}
	case network.LinkDown:
		c.logger.Warn("Interface is down, skipping", "iface", iface)
		return remediate.Outcome{Interface: iface, Verdict: remediate.VerdictSkippedDown,
			Err: fmt.Errorf("%w: %s", ErrInterfaceDown, iface)}
	}

	addrs, err := c.inspector.ListGlobalAddresses(iface)
	if err != nil {
		if errors.Is(err, network.ErrLinkNotFound) {
			c.logger.Error("Interface disappeared, skipping", "iface", iface)
			return remediate.Outcome{Interface: iface, Verdict: remediate.VerdictSkippedAbsent,
				Err: fmt.Errorf("%w: %s", ErrInterfaceAbsent, iface)}
		}
		// An unreadable address list is not proof that none exist; let the
		// probes decide before anything is deleted.
		c.logger.Warn("Failed to list addresses, probing anyway", "iface", iface, "error", err)
		return c.engine.Run(ctx, iface)
	}
	if _, ok := network.FirstValid(addrs, c.treat128); !ok {
		c.logger.Warn("No valid global IPv6 address, requesting new addresses", "iface", iface)
		return c.engine.Remediate(ctx, iface)
	}
	return c.engine.Run(ctx, iface)
}

func (c *Coordinator) logSummary(s Summary) {
	for _, o := range s.Outcomes {
		c.logger.Debug("Interface verdict", "iface", o.Interface, "verdict", o.Verdict)
	}
	msg := fmt.Sprintf("Run complete: %d/%d interfaces healthy", s.Succeeded, s.Total)
	switch {
	case s.Interrupted:
		c.logger.Warn("Run interrupted", "succeeded", s.Succeeded, "total", s.Total)
	case s.Total > 0 && s.Succeeded == s.Total:
		c.logger.Success(msg, "duration", s.Duration)
	case s.Succeeded == 0:
		c.logger.Error(msg, "duration", s.Duration)
	default:
		c.logger.Warn(msg, "duration", s.Duration)
	}
}
