package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"grimm.is/v6watch/internal/acquire"
	"grimm.is/v6watch/internal/clock"
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/logging"
	"grimm.is/v6watch/internal/metrics"
	"grimm.is/v6watch/internal/monitor"
	"grimm.is/v6watch/internal/network"
	"grimm.is/v6watch/internal/probe"
	"grimm.is/v6watch/internal/remediate"
)

// RunMonitor performs one health pass and returns the process exit code.
func RunMonitor(ctx context.Context, configFile string, dryRun bool) int {
	cfg, err := loadConfig(configFile)
	if err != nil {
		Printer.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if dryRun {
		cfg.DryRun = true
	}

	runID := monitor.NewRunID()
	logger, closeLog, err := openLogger(cfg, os.Stderr, runID)
	if err != nil {
		Printer.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer closeLog()

	if err := monitor.HostEnvironment().Preflight(cfg); err != nil {
		logger.Error("Environment check failed", "error", err)
		return 1
	}

	rt := wire(cfg, logger, &clock.RealClock{}, runID)
	summary := rt.coordinator.Run(ctx)
	rt.reportDryRun(logger)

	if summary.Interrupted {
		logger.Warn("Stopped by signal")
	}
	return summary.ExitCode()
}

// openLogger attaches the file, console and syslog sinks and tags every line
// with the run ID.
func openLogger(cfg *config.Config, console io.Writer, runID string) (*logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	sinks, syslogErr := logging.OpenSinks(logging.SinkOptions{
		FilePath: cfg.LogPath,
		Console:  console,
		Syslog:   syslogConfig(cfg),
	})
	if sinks == nil {
		return nil, nil, syslogErr
	}

	logger := logging.New(logging.Config{
		Level:      level,
		Output:     sinks.Writer(),
		TimeFormat: time.RFC3339,
	}).WithFields(map[string]any{"run_id": runID})
	logging.SetDefault(logger)

	if syslogErr != nil {
		logger.Warn("Remote syslog unavailable", "error", syslogErr)
	}
	return logger, func() { _ = sinks.Close() }, nil
}

// runGraph is the wired object graph for one run.
type runGraph struct {
	coordinator *monitor.Coordinator
	netlinker   *network.DryRunNetlinker
	executor    *network.DryRunExecutor
	acquirer    *acquire.DryRunAcquirer
	signaler    *acquire.DryRunSignaler
}

func wire(cfg *config.Config, logger *logging.Logger, clk clock.Clock, runID string) *runGraph {
	rt := &runGraph{}
	timing := cfg.Timing()

	var (
		nl       network.Netlinker = network.DefaultNetlinker
		signaler acquire.Signaler  = acquire.UnixSignaler{}
	)
	if cfg.DryRun {
		rt.netlinker = network.NewDryRunNetlinker(nl)
		rt.signaler = &acquire.DryRunSignaler{}
		nl, signaler = rt.netlinker, rt.signaler
	}
	insp := network.NewInspector(nl)

	var acquirer acquire.Acquirer
	switch {
	case !cfg.DryRun:
		acquirer = acquire.NewAcquirer(cfg, network.DefaultCommandExecutor, insp, logger)
	case cfg.AcquireMethod == config.AcquireDhclient:
		rt.executor = network.NewDryRunExecutor()
		acquirer = acquire.NewDhclientAcquirer(rt.executor)
	default:
		rt.acquirer = &acquire.DryRunAcquirer{}
		acquirer = rt.acquirer
	}

	var solicitor network.Solicitor
	if cfg.SolicitRouter && !cfg.DryRun {
		solicitor = network.NDPSolicitor{}
	}

	prober := probe.New(cfg, insp, probe.NewBackend(cfg, network.DefaultCommandExecutor), clk, logger)
	reaper := acquire.NewReaper(acquire.ProcFSLister{}, signaler, clk, timing.KillGrace, timing.PostKillPause, logger)

	engine := remediate.New(cfg, remediate.Deps{
		Prober:    prober,
		Addresses: insp,
		Cleaner:   reaper,
		Acquirer:  acquirer,
		Solicitor: solicitor,
		Clock:     clk,
		Logger:    logger,
	})

	var recorder monitor.Recorder
	if cfg.MetricsTextfile != "" && !cfg.DryRun {
		recorder = metrics.TextfileRecorder{Path: cfg.MetricsTextfile}
	}

	rt.coordinator = monitor.NewCoordinator(cfg, monitor.Deps{
		Inspector: insp,
		Engine:    engine,
		Recorder:  recorder,
		Clock:     clk,
		Logger:    logger,
		RunID:     runID,
	})
	return rt
}

// reportDryRun logs every mutation a dry run suppressed.
func (rt *runGraph) reportDryRun(logger *logging.Logger) {
	if rt.netlinker == nil {
		return
	}
	var ops []string
	ops = append(ops, rt.netlinker.Operations()...)
	ops = append(ops, rt.signaler.Operations()...)
	if rt.executor != nil {
		ops = append(ops, rt.executor.Commands...)
	}
	if rt.acquirer != nil {
		ops = append(ops, rt.acquirer.Operations()...)
	}
	for _, op := range ops {
		logger.Info("[DRY RUN] Would run", "op", op)
	}
}
