package acquire

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// DryRunAcquirer records acquisitions instead of performing them.
type DryRunAcquirer struct {
	mu  sync.Mutex
	ops []string
}

// Acquire implements Acquirer.
func (d *DryRunAcquirer) Acquire(_ context.Context, iface string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, "acquire "+iface)
	return nil
}

// Operations returns the recorded acquisitions.
func (d *DryRunAcquirer) Operations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ops...)
}

// DryRunSignaler records signals instead of sending them. Every process is
// reported dead so no escalation is attempted.
type DryRunSignaler struct {
	mu  sync.Mutex
	ops []string
}

// Signal implements Signaler.
func (d *DryRunSignaler) Signal(pid int, sig unix.Signal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, fmt.Sprintf("kill -%s %d", strings.TrimPrefix(unix.SignalName(sig), "SIG"), pid))
	return nil
}

// Alive implements Signaler.
func (d *DryRunSignaler) Alive(int) bool { return false }

// Operations returns the recorded signals.
func (d *DryRunSignaler) Operations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ops...)
}
