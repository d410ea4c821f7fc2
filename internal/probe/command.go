package probe

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"grimm.is/v6watch/internal/network"
)

// CommandBackend runs the system ping utility and parses its output.
type CommandBackend struct {
	Exec network.CommandExecutor
	// Binary defaults to "ping".
	Binary string
}

// NewCommandBackend returns a backend running ping through exec.
func NewCommandBackend(exec network.CommandExecutor) *CommandBackend {
	if exec == nil {
		exec = network.DefaultCommandExecutor
	}
	return &CommandBackend{Exec: exec, Binary: "ping"}
}

// Args builds the ping argument list for req.
func (b *CommandBackend) Args(req Request) []string {
	timeoutSecs := int(req.Timeout.Seconds())
	if timeoutSecs < 1 {
		timeoutSecs = 1
	}
	return []string{
		"-6", "-n",
		"-I", req.Interface,
		"-c", strconv.Itoa(req.Count),
		"-W", strconv.Itoa(timeoutSecs),
		req.Target.String(),
	}
}

// Ping implements Backend.
func (b *CommandBackend) Ping(ctx context.Context, req Request) Result {
	bin := b.Binary
	if bin == "" {
		bin = "ping"
	}
	out, code, err := b.Exec.RunCommand(ctx, bin, b.Args(req)...)
	stats := ParsePingOutput(out)
	return Result{
		Requested:   req.Count,
		Received:    stats.Received,
		Unreachable: stats.Unreachable,
		ExitCode:    code,
		Err:         err,
	}
}

// PingStats is what ParsePingOutput extracts from ping's output.
type PingStats struct {
	Transmitted int
	Received    int
	Unreachable int
	HasSummary  bool
}

// iputils: "3 packets transmitted, 2 received, +1 errors, 33% packet loss"
// busybox: "3 packets transmitted, 3 packets received, 0% packet loss"
var summaryRe = regexp.MustCompile(`(\d+) packets transmitted, (\d+) (?:packets )?received`)

// ParsePingOutput extracts reply and unreachable counts from iputils or
// busybox ping output. Without a summary line, replies are counted per line.
func ParsePingOutput(out string) PingStats {
	var stats PingStats
	replies := 0

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		lower := strings.ToLower(line)

		if m := summaryRe.FindStringSubmatch(line); m != nil {
			stats.Transmitted, _ = strconv.Atoi(m[1])
			stats.Received, _ = strconv.Atoi(m[2])
			stats.HasSummary = true
			continue
		}
		if strings.Contains(lower, "destination unreachable") {
			stats.Unreachable++
			continue
		}
		if strings.Contains(lower, "bytes from") && strings.Contains(lower, "seq=") {
			replies++
		}
	}

	if !stats.HasSummary {
		stats.Received = replies
	}
	return stats
}

func (s PingStats) String() string {
	return fmt.Sprintf("%d/%d received, %d unreachable", s.Received, s.Transmitted, s.Unreachable)
}
