package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/v6watch/internal/monitor"
	"grimm.is/v6watch/internal/network"
	"grimm.is/v6watch/internal/probe"
	"grimm.is/v6watch/internal/remediate"
)

func testSummary() monitor.Summary {
	return monitor.Summary{
		RunID:     "run",
		Started:   time.Unix(1700000000, 0),
		Duration:  42 * time.Second,
		Succeeded: 1,
		Total:     2,
		Outcomes: []remediate.Outcome{
			{
				Interface:  "eth0",
				Verdict:    remediate.VerdictRemediated,
				Remediated: true,
				Deleted:    []network.Address{network.MustParseAddress("2001:db8::5/64")},
				Acquired:   []network.Address{network.MustParseAddress("2001:db8::6/64")},
				LastProbe:  probe.Result{Requested: 3, Received: 2},
			},
			{Interface: "eth1", Verdict: remediate.VerdictSkippedAbsent},
		},
	}
}

func TestRegistry_Observe(t *testing.T) {
	r := NewRegistry()
	r.Observe(testSummary())

	assert.Equal(t, 1.0, promtest.ToFloat64(r.InterfaceVerdict.WithLabelValues("eth0", "remediated-healthy")))
	assert.Equal(t, 0.0, promtest.ToFloat64(r.InterfaceVerdict.WithLabelValues("eth0", "healthy")))
	assert.Equal(t, 1.0, promtest.ToFloat64(r.InterfaceVerdict.WithLabelValues("eth1", "skipped-absent")))
	assert.InDelta(t, 2.0/3.0, promtest.ToFloat64(r.ProbeSuccessRatio.WithLabelValues("eth0")), 1e-9)
	assert.Equal(t, 1.0, promtest.ToFloat64(r.AddressDeletions.WithLabelValues("eth0")))
	assert.Equal(t, 1.0, promtest.ToFloat64(r.Remediated.WithLabelValues("eth0")))
	assert.Equal(t, 2.0, promtest.ToFloat64(r.RunTotal))
	assert.Equal(t, 1700000000.0, promtest.ToFloat64(r.LastRunTimestamp))
	assert.Equal(t, 42.0, promtest.ToFloat64(r.LastRunDuration))
}

func TestTextfileRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v6watch.prom")

	require.NoError(t, TextfileRecorder{Path: path}.Record(testSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `v6watch_interface_verdict{interface="eth0",verdict="remediated-healthy"} 1`)
	assert.Contains(t, text, "v6watch_run_succeeded 1")
	assert.Contains(t, text, "# HELP v6watch_probe_success_ratio")
}

func TestTextfileRecorder_BadPath(t *testing.T) {
	err := TextfileRecorder{Path: filepath.Join(t.TempDir(), "missing", "x.prom")}.Record(testSummary())
	assert.Error(t, err)
}
