package config

import (
	"time"

	"grimm.is/v6watch/internal/brand"
)

// Probe backends.
const (
	BackendPing   = "ping"
	BackendNative = "native"
)

// Acquisition methods.
const (
	AcquireDhclient = "dhclient"
	AcquireNative   = "native"
)

// Defaults for the recognized options.
const (
	DefaultProbeTarget         = "2001:4860:4860::8888"
	DefaultProbeCount          = 3
	DefaultProbeTimeoutSeconds = 5
	DefaultProbeBackend        = BackendPing
	DefaultAcquireMethod       = AcquireDhclient
	DefaultLogLevel            = "info"
)

// Config is the monitor's static configuration.
type Config struct {
	Interfaces          []string `hcl:"interfaces" json:"interfaces" yaml:"interfaces"`
	ProbeTarget         string   `hcl:"probe_target,optional" json:"probe_target,omitempty" yaml:"probe_target,omitempty"`
	ProbeCount          int      `hcl:"probe_count,optional" json:"probe_count,omitempty" yaml:"probe_count,omitempty"`
	ProbeTimeoutSeconds int      `hcl:"probe_timeout_seconds,optional" json:"probe_timeout_seconds,omitempty" yaml:"probe_timeout_seconds,omitempty"`
	Treat128AsDeletable bool     `hcl:"treat_128_as_deletable,optional" json:"treat_128_as_deletable,omitempty" yaml:"treat_128_as_deletable,omitempty"`
	LogPath             string   `hcl:"log_path,optional" json:"log_path,omitempty" yaml:"log_path,omitempty"`
	LogLevel            string   `hcl:"log_level,optional" json:"log_level,omitempty" yaml:"log_level,omitempty"`

	ProbeBackend    string `hcl:"probe_backend,optional" json:"probe_backend,omitempty" yaml:"probe_backend,omitempty"`
	AcquireMethod   string `hcl:"acquire_method,optional" json:"acquire_method,omitempty" yaml:"acquire_method,omitempty"`
	SolicitRouter   bool   `hcl:"solicit_router,optional" json:"solicit_router,omitempty" yaml:"solicit_router,omitempty"`
	MetricsTextfile string `hcl:"metrics_textfile,optional" json:"metrics_textfile,omitempty" yaml:"metrics_textfile,omitempty"`
	DryRun          bool   `hcl:"dry_run,optional" json:"dry_run,omitempty" yaml:"dry_run,omitempty"`

	Syslog  *SyslogConfig  `hcl:"syslog,block" json:"syslog,omitempty" yaml:"syslog,omitempty"`
	Timings *TimingsConfig `hcl:"timings,block" json:"timings,omitempty" yaml:"timings,omitempty"`
}

// SyslogConfig configures the optional remote syslog sink.
type SyslogConfig struct {
	Host     string `hcl:"host" json:"host" yaml:"host"`
	Port     int    `hcl:"port,optional" json:"port,omitempty" yaml:"port,omitempty"`
	Protocol string `hcl:"protocol,optional" json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Tag      string `hcl:"tag,optional" json:"tag,omitempty" yaml:"tag,omitempty"`
}

// TimingsConfig overrides the state machine's waits. Zero means default.
type TimingsConfig struct {
	CooldownSeconds       int  `hcl:"cooldown_seconds,optional" json:"cooldown_seconds,omitempty" yaml:"cooldown_seconds,omitempty"`
	RetryPauseSeconds     int  `hcl:"retry_pause_seconds,optional" json:"retry_pause_seconds,omitempty" yaml:"retry_pause_seconds,omitempty"`
	ProbeRetries          *int `hcl:"probe_retries,optional" json:"probe_retries,omitempty" yaml:"probe_retries,omitempty"`
	KillGraceSeconds      int  `hcl:"kill_grace_seconds,optional" json:"kill_grace_seconds,omitempty" yaml:"kill_grace_seconds,omitempty"`
	PostKillPauseSeconds  int  `hcl:"post_kill_pause_seconds,optional" json:"post_kill_pause_seconds,omitempty" yaml:"post_kill_pause_seconds,omitempty"`
	AcquireTimeoutSeconds int  `hcl:"acquire_timeout_seconds,optional" json:"acquire_timeout_seconds,omitempty" yaml:"acquire_timeout_seconds,omitempty"`
	SettleSeconds         int  `hcl:"settle_seconds,optional" json:"settle_seconds,omitempty" yaml:"settle_seconds,omitempty"`
}

// Timings are the resolved waits used by the prober and remediation engine.
type Timings struct {
	Cooldown       time.Duration // between the first failed probe and the recheck
	RetryPause     time.Duration // between probe retries
	ProbeRetries   int           // extra probe attempts after a command failure
	KillGrace      time.Duration // SIGTERM to SIGKILL
	PostKillPause  time.Duration // after process cleanup
	AcquireTimeout time.Duration // overall bound on address acquisition
	Settle         time.Duration // after acquisition, before final verification
}

// DefaultTimings returns the standard waits.
func DefaultTimings() Timings {
	return Timings{
		Cooldown:       30 * time.Second,
		RetryPause:     5 * time.Second,
		ProbeRetries:   2,
		KillGrace:      2 * time.Second,
		PostKillPause:  3 * time.Second,
		AcquireTimeout: 30 * time.Second,
		Settle:         10 * time.Second,
	}
}

// Default returns a config with every default applied and no interfaces.
// Loaders decode over it, so a numeric option the file sets explicitly,
// zero included, survives to validation.
func Default() *Config {
	cfg := &Config{
		ProbeCount:          DefaultProbeCount,
		ProbeTimeoutSeconds: DefaultProbeTimeoutSeconds,
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills options whose empty value means "use the default".
func (c *Config) applyDefaults() {
	if c.ProbeTarget == "" {
		c.ProbeTarget = DefaultProbeTarget
	}
	if c.LogPath == "" {
		c.LogPath = brand.DefaultLogPath()
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.ProbeBackend == "" {
		c.ProbeBackend = DefaultProbeBackend
	}
	if c.AcquireMethod == "" {
		c.AcquireMethod = DefaultAcquireMethod
	}
	if c.Syslog != nil {
		if c.Syslog.Port == 0 {
			c.Syslog.Port = 514
		}
		if c.Syslog.Protocol == "" {
			c.Syslog.Protocol = "udp"
		}
		if c.Syslog.Tag == "" {
			c.Syslog.Tag = brand.Name
		}
	}
}

// ProbeTimeout is the per-probe reply timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// Timing resolves the timings block against DefaultTimings.
func (c *Config) Timing() Timings {
	t := DefaultTimings()
	if c.Timings == nil {
		return t
	}
	o := c.Timings
	setSeconds(&t.Cooldown, o.CooldownSeconds)
	setSeconds(&t.RetryPause, o.RetryPauseSeconds)
	setSeconds(&t.KillGrace, o.KillGraceSeconds)
	setSeconds(&t.PostKillPause, o.PostKillPauseSeconds)
	setSeconds(&t.AcquireTimeout, o.AcquireTimeoutSeconds)
	setSeconds(&t.Settle, o.SettleSeconds)
	if o.ProbeRetries != nil {
		t.ProbeRetries = *o.ProbeRetries
	}
	return t
}

func setSeconds(d *time.Duration, secs int) {
	if secs > 0 {
		*d = time.Duration(secs) * time.Second
	}
}
