package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const waitDelay = time.Second

// DefaultCommandExecutor is the default RealCommandExecutor instance.
var DefaultCommandExecutor CommandExecutor = &RealCommandExecutor{}

// RealCommandExecutor is a concrete implementation of CommandExecutor using os/exec.
type RealCommandExecutor struct{}

// RunCommand runs a command and returns its combined output and exit status.
func (r *RealCommandExecutor) RunCommand(ctx context.Context, name string, arg ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, arg...)
	// Daemonizing children may hold the output pipe open after exit.
	cmd.WaitDelay = waitDelay
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.String(), 0, nil
	}
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.ExitCode() == 0 {
		return out.String(), 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.String(), -1, fmt.Errorf("command %s %v: %w", name, arg, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.String(), exitErr.ExitCode(), fmt.Errorf("command %s %v failed: %w", name, arg, err)
	}
	return out.String(), -1, fmt.Errorf("command %s %v failed: %w", name, arg, err)
}
