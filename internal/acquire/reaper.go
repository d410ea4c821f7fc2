package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"

	"grimm.is/v6watch/internal/clock"
	"grimm.is/v6watch/internal/logging"
)

// Process is a running process as seen by the reaper.
type Process struct {
	PID     int
	Cmdline []string
}

// ProcessLister enumerates running processes.
type ProcessLister interface {
	Processes() ([]Process, error)
}

// Signaler delivers signals and checks liveness.
type Signaler interface {
	Signal(pid int, sig unix.Signal) error
	Alive(pid int) bool
}

// ProcFSLister reads the process table from /proc.
type ProcFSLister struct {
	MountPoint string
}

// Processes implements ProcessLister.
func (l ProcFSLister) Processes() ([]Process, error) {
	mount := l.MountPoint
	if mount == "" {
		mount = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs: %w", err)
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		cmd, err := p.CmdLine()
		if err != nil || len(cmd) == 0 {
			// Exited between listing and reading, or a kernel thread.
			continue
		}
		out = append(out, Process{PID: p.PID, Cmdline: cmd})
	}
	return out, nil
}

// UnixSignaler signals processes with kill(2).
type UnixSignaler struct{}

// Signal implements Signaler.
func (UnixSignaler) Signal(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}

// Alive implements Signaler.
func (UnixSignaler) Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// v6Only clients never need the -6 flag to be IPv6 clients.
var v6Only = []string{"odhcp6c", "dhcp6c"}

// MatchesAcquisition reports whether cmdline belongs to an IPv6 DHCP client
// bound to iface.
func MatchesAcquisition(cmdline []string, iface string) bool {
	if len(cmdline) == 0 {
		return false
	}
	name := filepath.Base(cmdline[0])
	args := cmdline[1:]
	if !slices.Contains(args, iface) {
		return false
	}
	switch {
	case name == "dhclient" || name == "dhcpcd":
		return slices.Contains(args, "-6")
	case slices.Contains(v6Only, name):
		return true
	}
	return false
}

// Reaper terminates lingering acquisition clients for an interface.
type Reaper struct {
	procs     ProcessLister
	sig       Signaler
	clock     clock.Clock
	grace     time.Duration
	postPause time.Duration
	logger    *logging.Logger
	self      int
}

// NewReaper creates a reaper. grace is the SIGTERM to SIGKILL delay and
// postPause the settle time after a cleanup that found processes.
func NewReaper(procs ProcessLister, sig Signaler, clk clock.Clock, grace, postPause time.Duration, logger *logging.Logger) *Reaper {
	if procs == nil {
		procs = ProcFSLister{}
	}
	if sig == nil {
		sig = UnixSignaler{}
	}
	if clk == nil {
		clk = &clock.RealClock{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reaper{
		procs:     procs,
		sig:       sig,
		clock:     clk,
		grace:     grace,
		postPause: postPause,
		logger:    logger.WithComponent("cleanup"),
		self:      os.Getpid(),
	}
}

// Find returns the PIDs of acquisition clients bound to iface.
func (r *Reaper) Find(iface string) ([]int, error) {
	procs, err := r.procs.Processes()
	if err != nil {
		return nil, err
	}
	var pids []int
	for _, p := range procs {
		if p.PID == r.self {
			continue
		}
		if MatchesAcquisition(p.Cmdline, iface) {
			pids = append(pids, p.PID)
		}
	}
	return pids, nil
}

// Cleanup sends SIGTERM to every matching client, escalates to SIGKILL for
// survivors after the grace period, then pauses. It returns the number of
// processes signalled. With nothing to clean up it returns at once.
//
// Cleanup is also used on shutdown paths, so a cancelled ctx only shortens
// the waits; signals are still delivered.
func (r *Reaper) Cleanup(ctx context.Context, iface string) (int, error) {
	pids, err := r.Find(iface)
	if err != nil {
		return 0, fmt.Errorf("failed to scan for DHCPv6 clients: %w", err)
	}
	if len(pids) == 0 {
		r.logger.Debug("No lingering DHCPv6 clients", "iface", iface)
		return 0, nil
	}

	signalled := 0
	for _, pid := range pids {
		if err := r.sig.Signal(pid, unix.SIGTERM); err != nil {
			if !errors.Is(err, unix.ESRCH) {
				r.logger.Warn("Failed to terminate DHCPv6 client", "iface", iface, "pid", pid, "error", err)
			}
			continue
		}
		r.logger.Info("Sent SIGTERM to DHCPv6 client", "iface", iface, "pid", pid)
		signalled++
	}

	_ = r.clock.Sleep(ctx, r.grace)

	for _, pid := range pids {
		if !r.sig.Alive(pid) {
			continue
		}
		if err := r.sig.Signal(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			r.logger.Warn("Failed to kill DHCPv6 client", "iface", iface, "pid", pid, "error", err)
			continue
		}
		r.logger.Warn("Killed unresponsive DHCPv6 client", "iface", iface, "pid", pid)
	}

	_ = r.clock.Sleep(ctx, r.postPause)
	return signalled, nil
}
