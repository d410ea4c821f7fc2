// Package cmd holds the entry points behind each v6watch subcommand.
package cmd

import (
	"fmt"

	"grimm.is/v6watch/internal/brand"
	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/i18n"
	"grimm.is/v6watch/internal/logging"
)

// Printer localizes CLI output.
var Printer = i18n.NewCLIPrinter()

// resolveConfig falls back to $V6WATCH_CONFIG, then the default path.
func resolveConfig(configFile string) string {
	if configFile != "" {
		return configFile
	}
	return brand.DefaultConfigPath()
}

func loadConfig(configFile string) (*config.Config, error) {
	path := resolveConfig(configFile)
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

func syslogConfig(cfg *config.Config) logging.SyslogConfig {
	sc := logging.DefaultSyslogConfig()
	if cfg.Syslog == nil {
		return sc
	}
	sc.Enabled = true
	sc.Host = cfg.Syslog.Host
	if cfg.Syslog.Port != 0 {
		sc.Port = cfg.Syslog.Port
	}
	if cfg.Syslog.Protocol != "" {
		sc.Protocol = cfg.Syslog.Protocol
	}
	if cfg.Syslog.Tag != "" {
		sc.Tag = cfg.Syslog.Tag
	}
	return sc
}
