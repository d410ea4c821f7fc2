package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"grimm.is/v6watch/internal/clock"
)

type staticProcs []Process

func (s staticProcs) Processes() ([]Process, error) { return s, nil }

type fakeSignaler struct {
	sent     []string
	stubborn map[int]bool
	dead     map[int]bool
}

func (f *fakeSignaler) Signal(pid int, sig unix.Signal) error {
	if f.dead[pid] {
		return unix.ESRCH
	}
	f.sent = append(f.sent, unix.SignalName(sig))
	if sig == unix.SIGKILL || !f.stubborn[pid] {
		if f.dead == nil {
			f.dead = map[int]bool{}
		}
		f.dead[pid] = true
	}
	return nil
}

func (f *fakeSignaler) Alive(pid int) bool { return !f.dead[pid] }

func TestMatchesAcquisition(t *testing.T) {
	tests := []struct {
		name    string
		cmdline []string
		want    bool
	}{
		{"dhclient v6", []string{"/sbin/dhclient", "-6", "-1", "-v", "eth0"}, true},
		{"dhclient v4", []string{"dhclient", "-4", "eth0"}, false},
		{"dhclient other iface", []string{"dhclient", "-6", "eth1"}, false},
		{"dhcpcd v6", []string{"dhcpcd", "-6", "eth0"}, true},
		{"odhcp6c", []string{"/usr/sbin/odhcp6c", "-s", "/bin/true", "eth0"}, true},
		{"prefix iface", []string{"dhclient", "-6", "eth00"}, false},
		{"unrelated", []string{"sshd", "-6", "eth0"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesAcquisition(tt.cmdline, "eth0"))
		})
	}
}

func newTestReaper(procs ProcessLister, sig Signaler) (*Reaper, *clock.MockClock) {
	clk := clock.NewMockClock(time.Unix(0, 0))
	r := NewReaper(procs, sig, clk, 2*time.Second, 3*time.Second, nil)
	r.self = 1
	return r, clk
}

func TestReaper_NothingToClean(t *testing.T) {
	sig := &fakeSignaler{}
	r, clk := newTestReaper(staticProcs{{PID: 10, Cmdline: []string{"sshd"}}}, sig)

	n, err := r.Cleanup(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sig.sent)
	assert.Empty(t, clk.Sleeps())
}

func TestReaper_TermThenPause(t *testing.T) {
	sig := &fakeSignaler{}
	procs := staticProcs{
		{PID: 10, Cmdline: []string{"dhclient", "-6", "-1", "-v", "eth0"}},
		{PID: 11, Cmdline: []string{"dhclient", "-6", "eth1"}},
	}
	r, clk := newTestReaper(procs, sig)

	n, err := r.Cleanup(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"SIGTERM"}, sig.sent)
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, clk.Sleeps())
}

func TestReaper_EscalatesToKill(t *testing.T) {
	sig := &fakeSignaler{stubborn: map[int]bool{10: true}}
	r, _ := newTestReaper(staticProcs{{PID: 10, Cmdline: []string{"dhclient", "-6", "eth0"}}}, sig)

	_, err := r.Cleanup(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, []string{"SIGTERM", "SIGKILL"}, sig.sent)
	assert.False(t, sig.Alive(10))
}

func TestReaper_SkipsSelf(t *testing.T) {
	sig := &fakeSignaler{}
	r, _ := newTestReaper(staticProcs{{PID: 1, Cmdline: []string{"dhclient", "-6", "eth0"}}}, sig)

	pids, err := r.Find("eth0")
	require.NoError(t, err)
	assert.Empty(t, pids)
}

type failingProcs struct{}

func (failingProcs) Processes() ([]Process, error) { return nil, errors.New("no /proc") }

func TestReaper_ScanError(t *testing.T) {
	r, _ := newTestReaper(failingProcs{}, &fakeSignaler{})
	_, err := r.Cleanup(context.Background(), "eth0")
	assert.Error(t, err)
}

func TestReaper_CancelledStillSignals(t *testing.T) {
	sig := &fakeSignaler{}
	r, clk := newTestReaper(staticProcs{{PID: 10, Cmdline: []string{"dhclient", "-6", "eth0"}}}, sig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := r.Cleanup(ctx, "eth0")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, clk.Sleeps())
}

func TestDryRunSignaler(t *testing.T) {
	sig := &DryRunSignaler{}
	r, _ := newTestReaper(staticProcs{{PID: 10, Cmdline: []string{"dhclient", "-6", "eth0"}}}, sig)

	_, err := r.Cleanup(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, []string{"kill -TERM 10"}, sig.Operations())
}
