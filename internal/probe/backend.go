package probe

import (
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/network"
)

// NewBackend selects the backend named by cfg.ProbeBackend.
func NewBackend(cfg *config.Config, exec network.CommandExecutor) Backend {
	if cfg.ProbeBackend == config.BackendNative {
		return NewPingerBackend()
	}
	return NewCommandBackend(exec)
}
