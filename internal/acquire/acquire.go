// Package acquire acquires fresh IPv6 addresses for an interface and cleans up
// competing acquisition clients before and after doing so.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/logging"
	"grimm.is/v6watch/internal/network"
)

var (
	// ErrAcquireFailed means the acquisition mechanism reported failure.
	ErrAcquireFailed = errors.New("address acquisition failed")
	// ErrAcquireTimeout means acquisition did not finish within its deadline.
	ErrAcquireTimeout = errors.New("address acquisition timed out")
)

// Acquirer requests new addresses for an interface. Callers bound ctx with the
// acquisition timeout.
type Acquirer interface {
	Acquire(ctx context.Context, iface string) error
}

// NewAcquirer selects the acquirer named by cfg.AcquireMethod.
func NewAcquirer(cfg *config.Config, exec network.CommandExecutor, insp AddressInstaller, logger *logging.Logger) Acquirer {
	if cfg.AcquireMethod == config.AcquireNative {
		return NewNativeAcquirer(insp, logger)
	}
	return NewDhclientAcquirer(exec)
}

// classify maps a context or command error to the package sentinels.
func classify(ctx context.Context, iface string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w on %s: %v", ErrAcquireTimeout, iface, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w on %s: %v", ErrAcquireFailed, iface, err)
}

// DhclientAcquirer runs ISC dhclient in one-shot IPv6 mode.
type DhclientAcquirer struct {
	Exec   network.CommandExecutor
	Binary string
}

// NewDhclientAcquirer returns an acquirer running dhclient through exec.
func NewDhclientAcquirer(exec network.CommandExecutor) *DhclientAcquirer {
	if exec == nil {
		exec = network.DefaultCommandExecutor
	}
	return &DhclientAcquirer{Exec: exec, Binary: "dhclient"}
}

// Args is the dhclient argument list for iface.
func (a *DhclientAcquirer) Args(iface string) []string {
	return []string{"-6", "-1", "-v", iface}
}

// Acquire implements Acquirer.
func (a *DhclientAcquirer) Acquire(ctx context.Context, iface string) error {
	bin := a.Binary
	if bin == "" {
		bin = "dhclient"
	}
	out, code, err := a.Exec.RunCommand(ctx, bin, a.Args(iface)...)
	if err != nil {
		return classify(ctx, iface, fmt.Errorf("exit %d: %w (%s)", code, err, lastLine(out)))
	}
	return nil
}

func lastLine(out string) string {
	out = strings.TrimSpace(out)
	if i := strings.LastIndexByte(out, '\n'); i >= 0 {
		return out[i+1:]
	}
	return out
}
