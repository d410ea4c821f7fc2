package cmd

import (
	"fmt"
	"io"
	"strings"

	"grimm.is/v6watch/internal/brand"
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/i18n"
)

// RunCheck validates the configuration file syntax and semantics.
func RunCheck(w io.Writer, configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] <config-file>\nExample: %s check -v %s",
			brand.BinaryName, brand.BinaryName, brand.DefaultConfigPath())
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		Printer.Fprintf(w, i18n.MsgConfigInvalid, configFile)
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Fprintf(w, i18n.MsgConfigValid, configFile)
	Printer.Fprintf(w, i18n.MsgInterfaces, len(cfg.Interfaces))
	if verbose {
		printSummary(w, cfg)
	}
	return nil
}

func printSummary(w io.Writer, cfg *config.Config) {
	Printer.Fprintf(w, "  %s\n", strings.Join(cfg.Interfaces, ", "))
	Printer.Fprintf(w, i18n.MsgProbe, cfg.ProbeTarget, cfg.ProbeBackend, cfg.ProbeCount, cfg.ProbeTimeoutSeconds)
	Printer.Fprintf(w, i18n.MsgAcquire, cfg.AcquireMethod)

	t := cfg.Timing()
	Printer.Fprintf(w, "Timings: cooldown=%s retry_pause=%s retries=%d kill_grace=%s post_kill=%s acquire_timeout=%s settle=%s\n",
		t.Cooldown, t.RetryPause, t.ProbeRetries, t.KillGrace, t.PostKillPause, t.AcquireTimeout, t.Settle)
	Printer.Fprintf(w, "Log: %s (%s)\n", cfg.LogPath, cfg.LogLevel)
	if cfg.Treat128AsDeletable {
		Printer.Fprintf(w, "/128 addresses are deletable\n")
	}
	if cfg.MetricsTextfile != "" {
		Printer.Fprintf(w, "Metrics: %s\n", cfg.MetricsTextfile)
	}
}
