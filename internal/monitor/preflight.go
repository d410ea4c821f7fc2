package monitor

import (
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"

	"grimm.is/v6watch/internal/config"
)

var (
	ErrNotPrivileged = errors.New("must run as root")
	ErrToolMissing   = errors.New("required tool not found")
)

// Environment abstracts the host checks made before a run.
type Environment struct {
	Euid     func() int
	LookPath func(file string) (string, error)
}

// HostEnvironment checks the real host.
func HostEnvironment() Environment {
	return Environment{Euid: unix.Geteuid, LookPath: exec.LookPath}
}

// RequiredTools lists the external programs cfg depends on.
func RequiredTools(cfg *config.Config) []string {
	var tools []string
	if cfg.ProbeBackend == config.BackendPing {
		tools = append(tools, "ping")
	}
	if cfg.AcquireMethod == config.AcquireDhclient {
		tools = append(tools, "dhclient")
	}
	return tools
}

// Preflight fails fast when the run cannot work at all. A dry run does not
// need privilege.
func (e Environment) Preflight(cfg *config.Config) error {
	if !cfg.DryRun && e.Euid() != 0 {
		return ErrNotPrivileged
	}
	var missing []error
	for _, tool := range RequiredTools(cfg) {
		if _, err := e.LookPath(tool); err != nil {
			missing = append(missing, fmt.Errorf("%w: %s", ErrToolMissing, tool))
		}
	}
	return errors.Join(missing...)
}
