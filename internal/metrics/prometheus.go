// Package metrics exports run results as a node_exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"grimm.is/v6watch/internal/monitor"
	"grimm.is/v6watch/internal/remediate"
)

// Verdicts exported as label values. Every one is written on each run so
// stale series drop to zero.
var verdicts = []remediate.Verdict{
	remediate.VerdictHealthy,
	remediate.VerdictRemediated,
	remediate.VerdictFailed,
	remediate.VerdictSkippedAbsent,
	remediate.VerdictSkippedDown,
}

// Registry holds the metrics for one run.
type Registry struct {
	reg *prometheus.Registry

	// Per interface
	InterfaceVerdict  *prometheus.GaugeVec
	ProbeSuccessRatio *prometheus.GaugeVec
	Remediated        *prometheus.GaugeVec
	AddressDeletions  *prometheus.GaugeVec
	AddressesAcquired *prometheus.GaugeVec

	// Run
	LastRunTimestamp prometheus.Gauge
	LastRunDuration  prometheus.Gauge
	RunSucceeded     prometheus.Gauge
	RunTotal         prometheus.Gauge
	RunInterrupted   prometheus.Gauge
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}
	factory := promauto.With(r.reg)

	r.InterfaceVerdict = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "v6watch_interface_verdict",
		Help: "1 for the verdict the interface reached in the last run, 0 otherwise",
	}, []string{"interface", "verdict"})

	r.ProbeSuccessRatio = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "v6watch_probe_success_ratio",
		Help: "Fraction of echoes answered by the last probe on the interface",
	}, []string{"interface"})

	r.Remediated = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "v6watch_interface_remediated",
		Help: "1 if the last run deleted and re-acquired addresses on the interface",
	}, []string{"interface"})

	r.AddressDeletions = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "v6watch_address_deletions",
		Help: "Addresses deleted from the interface in the last run",
	}, []string{"interface"})

	r.AddressesAcquired = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "v6watch_addresses_acquired",
		Help: "New global addresses seen on the interface after acquisition in the last run",
	}, []string{"interface"})

	r.LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Name: "v6watch_last_run_timestamp_seconds",
		Help: "Unix time the last run started",
	})

	r.LastRunDuration = factory.NewGauge(prometheus.GaugeOpts{
		Name: "v6watch_last_run_duration_seconds",
		Help: "Wall time of the last run",
	})

	r.RunSucceeded = factory.NewGauge(prometheus.GaugeOpts{
		Name: "v6watch_run_succeeded",
		Help: "Interfaces healthy or remediated in the last run",
	})

	r.RunTotal = factory.NewGauge(prometheus.GaugeOpts{
		Name: "v6watch_run_total",
		Help: "Interfaces processed in the last run",
	})

	r.RunInterrupted = factory.NewGauge(prometheus.GaugeOpts{
		Name: "v6watch_run_interrupted",
		Help: "1 if the last run was stopped by a signal",
	})

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Observe loads a run summary into the metrics.
func (r *Registry) Observe(s monitor.Summary) {
	for _, o := range s.Outcomes {
		for _, v := range verdicts {
			val := 0.0
			if v == o.Verdict {
				val = 1
			}
			r.InterfaceVerdict.WithLabelValues(o.Interface, v.String()).Set(val)
		}
		r.ProbeSuccessRatio.WithLabelValues(o.Interface).Set(o.LastProbe.Ratio())
		r.Remediated.WithLabelValues(o.Interface).Set(boolToFloat(o.Remediated))
		r.AddressDeletions.WithLabelValues(o.Interface).Set(float64(len(o.Deleted)))
		r.AddressesAcquired.WithLabelValues(o.Interface).Set(float64(len(o.Acquired)))
	}

	r.LastRunTimestamp.Set(float64(s.Started.Unix()))
	r.LastRunDuration.Set(s.Duration.Seconds())
	r.RunSucceeded.Set(float64(s.Succeeded))
	r.RunTotal.Set(float64(s.Total))
	r.RunInterrupted.Set(boolToFloat(s.Interrupted))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// TextfileRecorder writes each run to a textfile for node_exporter.
type TextfileRecorder struct {
	Path string
}

// Record implements monitor.Recorder. The file is replaced atomically.
func (t TextfileRecorder) Record(s monitor.Summary) error {
	r := NewRegistry()
	r.Observe(s)
	if err := prometheus.WriteToTextfile(t.Path, r.Gatherer()); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", t.Path, err)
	}
	return nil
}
