package probe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/v6watch/internal/clock"
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/logging"
	"grimm.is/v6watch/internal/network"
)

// scriptedBackend returns queued results in order and records requests.
type scriptedBackend struct {
	mu       sync.Mutex
	results  []Result
	requests []Request
}

func (b *scriptedBackend) Ping(ctx context.Context, req Request) Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if len(b.results) == 0 {
		return Result{ExitCode: 1}
	}
	r := b.results[0]
	b.results = b.results[1:]
	return r
}

type staticAddrs map[string][]network.Address

func (s staticAddrs) ListGlobalAddresses(name string) ([]network.Address, error) {
	addrs, ok := s[name]
	if !ok {
		return nil, errors.New("no such link")
	}
	return addrs, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Interfaces = []string{"eth0"}
	return cfg
}

func newTestProber(cfg *config.Config, addrs AddressLister, backend Backend) (*Prober, *clock.MockClock, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	clk := clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(cfg, addrs, backend, clk, logger), clk, &buf
}

var stableEth0 = staticAddrs{"eth0": {network.MustParseAddress("2001:db8::5/64")}}

func TestResult_Succeeded(t *testing.T) {
	tests := []struct {
		requested, received int
		want                bool
	}{
		{3, 0, false},
		{3, 1, false},
		{3, 2, true},
		{3, 3, true},
		{4, 2, true},
		{4, 1, false},
		{1, 1, true},
		{1, 0, false},
		{0, 0, false},
	}
	for _, tc := range tests {
		r := Result{Requested: tc.requested, Received: tc.received}
		assert.Equal(t, tc.want, r.Succeeded(), "%d/%d", tc.received, tc.requested)
	}
	assert.InDelta(t, 2.0/3.0, Result{Requested: 3, Received: 2}.Ratio(), 1e-9)
	assert.Zero(t, Result{}.Ratio())
}

func TestProbe_Success(t *testing.T) {
	backend := &scriptedBackend{results: []Result{{Received: 3}}}
	p, clk, buf := newTestProber(testConfig(), stableEth0, backend)

	res, err := p.Probe(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Received)
	assert.Equal(t, 3, res.Requested)
	assert.Empty(t, clk.Sleeps())

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, "eth0", req.Interface)
	assert.Equal(t, "2001:db8::5", req.Source.String())
	assert.Equal(t, config.DefaultProbeTarget, req.Target.String())
	assert.Equal(t, 3, req.Count)
	assert.Equal(t, 5*time.Second, req.Timeout)

	assert.Contains(t, buf.String(), "[SUCCESS]")
}

func TestProbe_ToleratesOneDrop(t *testing.T) {
	backend := &scriptedBackend{results: []Result{{Received: 2}}}
	p, _, _ := newTestProber(testConfig(), stableEth0, backend)

	_, err := p.Probe(context.Background(), "eth0")
	assert.NoError(t, err)
}

func TestProbe_NoValidAddressSendsNothing(t *testing.T) {
	backend := &scriptedBackend{}
	addrs := staticAddrs{"eth0": {
		network.MustParseAddress("2001:db8::5/128"),
	}}
	p, _, _ := newTestProber(testConfig(), addrs, backend)

	_, err := p.Probe(context.Background(), "eth0")
	assert.ErrorIs(t, err, ErrNoValidAddress)
	assert.Empty(t, backend.requests)

	_, err = p.Probe(context.Background(), "eth7")
	assert.ErrorIs(t, err, ErrNoValidAddress)
	assert.Empty(t, backend.requests)
}

func TestProbe_EphemeralAllowedWhenDeletable(t *testing.T) {
	cfg := testConfig()
	cfg.Treat128AsDeletable = true
	backend := &scriptedBackend{results: []Result{{Received: 3}}}
	addrs := staticAddrs{"eth0": {network.MustParseAddress("2001:db8::5/128")}}
	p, _, _ := newTestProber(cfg, addrs, backend)

	_, err := p.Probe(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::5", backend.requests[0].Source.String())
}

func TestProbe_RetriesOnCommandFailure(t *testing.T) {
	backend := &scriptedBackend{results: []Result{
		{Received: 0, ExitCode: 1},
		{Received: 0, ExitCode: 2},
		{Received: 0, ExitCode: 1},
	}}
	p, clk, buf := newTestProber(testConfig(), stableEth0, backend)

	res, err := p.Probe(context.Background(), "eth0")
	assert.ErrorIs(t, err, ErrProbeFailed)
	assert.Equal(t, 1, res.ExitCode)
	assert.Len(t, backend.requests, 3)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, clk.Sleeps())
	assert.Equal(t, 3, strings.Count(buf.String(), "Probe attempt"))
}

func TestProbe_RecoversOnRetry(t *testing.T) {
	backend := &scriptedBackend{results: []Result{
		{Received: 0, ExitCode: 1},
		{Received: 2, ExitCode: 0},
	}}
	p, clk, _ := newTestProber(testConfig(), stableEth0, backend)

	res, err := p.Probe(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Received)
	assert.Len(t, clk.Sleeps(), 1)
}

func TestProbe_NoRetryWhenCommandSucceeded(t *testing.T) {
	// One reply of three: ping exits 0, threshold unmet, no retry.
	backend := &scriptedBackend{results: []Result{{Received: 1, ExitCode: 0}}}
	p, clk, _ := newTestProber(testConfig(), stableEth0, backend)

	_, err := p.Probe(context.Background(), "eth0")
	assert.ErrorIs(t, err, ErrProbeFailed)
	assert.Len(t, backend.requests, 1)
	assert.Empty(t, clk.Sleeps())
}

func TestProbe_RetriesConfigurable(t *testing.T) {
	cfg := testConfig()
	zero := 0
	cfg.Timings = &config.TimingsConfig{ProbeRetries: &zero}
	backend := &scriptedBackend{results: []Result{{ExitCode: 1}, {Received: 3}}}
	p, _, _ := newTestProber(cfg, stableEth0, backend)

	_, err := p.Probe(context.Background(), "eth0")
	assert.ErrorIs(t, err, ErrProbeFailed)
	assert.Len(t, backend.requests, 1)
}

func TestProbe_CancelledDuringRetry(t *testing.T) {
	backend := &scriptedBackend{results: []Result{{ExitCode: 1}, {ExitCode: 1}}}
	p, _, _ := newTestProber(testConfig(), stableEth0, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Probe(ctx, "eth0")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, backend.requests, 1)
}

func TestNewBackend(t *testing.T) {
	cfg := testConfig()
	assert.IsType(t, &CommandBackend{}, NewBackend(cfg, nil))

	cfg.ProbeBackend = config.BackendNative
	assert.IsType(t, &PingerBackend{}, NewBackend(cfg, nil))
}
