package config

import (
	"fmt"
	"net/netip"
	"strings"

	"grimm.is/v6watch/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// maxIfaceNameLen is IFNAMSIZ minus the trailing NUL.
const maxIfaceNameLen = 15

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(c.Interfaces) == 0 {
		add("interfaces", "at least one interface is required")
	}
	seen := make(map[string]bool, len(c.Interfaces))
	for i, name := range c.Interfaces {
		field := fmt.Sprintf("interfaces[%d]", i)
		if err := validateIfaceName(name); err != nil {
			add(field, "%v", err)
			continue
		}
		if seen[name] {
			add(field, "duplicate interface %q", name)
		}
		seen[name] = true
	}

	if addr, err := netip.ParseAddr(c.ProbeTarget); err != nil {
		add("probe_target", "not an IP literal: %q", c.ProbeTarget)
	} else if !addr.Is6() || addr.Is4In6() {
		add("probe_target", "must be an IPv6 literal: %q", c.ProbeTarget)
	} else if addr.Zone() != "" {
		add("probe_target", "zone suffix not allowed: %q", c.ProbeTarget)
	}

	if c.ProbeCount <= 0 {
		add("probe_count", "must be positive, got %d", c.ProbeCount)
	}
	if c.ProbeTimeoutSeconds <= 0 {
		add("probe_timeout_seconds", "must be positive, got %d", c.ProbeTimeoutSeconds)
	}
	if c.LogPath == "" {
		add("log_path", "must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("log_level", "%v", err)
	}

	switch c.ProbeBackend {
	case BackendPing, BackendNative:
	default:
		add("probe_backend", "must be %q or %q, got %q", BackendPing, BackendNative, c.ProbeBackend)
	}
	switch c.AcquireMethod {
	case AcquireDhclient, AcquireNative:
	default:
		add("acquire_method", "must be %q or %q, got %q", AcquireDhclient, AcquireNative, c.AcquireMethod)
	}

	if c.Syslog != nil {
		if c.Syslog.Host == "" {
			add("syslog.host", "must not be empty")
		}
		if c.Syslog.Protocol != "udp" && c.Syslog.Protocol != "tcp" {
			add("syslog.protocol", "must be udp or tcp, got %q", c.Syslog.Protocol)
		}
		if c.Syslog.Port < 1 || c.Syslog.Port > 65535 {
			add("syslog.port", "out of range: %d", c.Syslog.Port)
		}
	}

	if t := c.Timings; t != nil {
		for field, v := range map[string]int{
			"timings.cooldown_seconds":        t.CooldownSeconds,
			"timings.retry_pause_seconds":     t.RetryPauseSeconds,
			"timings.kill_grace_seconds":      t.KillGraceSeconds,
			"timings.post_kill_pause_seconds": t.PostKillPauseSeconds,
			"timings.acquire_timeout_seconds": t.AcquireTimeoutSeconds,
			"timings.settle_seconds":          t.SettleSeconds,
		} {
			if v < 0 {
				add(field, "must not be negative, got %d", v)
			}
		}
		if t.ProbeRetries != nil && *t.ProbeRetries < 0 {
			add("timings.probe_retries", "must not be negative, got %d", *t.ProbeRetries)
		}
	}

	return errs
}

func validateIfaceName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty interface name")
	case len(name) > maxIfaceNameLen:
		return fmt.Errorf("interface name %q longer than %d bytes", name, maxIfaceNameLen)
	case name == "." || name == "..":
		return fmt.Errorf("invalid interface name %q", name)
	case strings.ContainsAny(name, "/ \t\n:"):
		return fmt.Errorf("invalid character in interface name %q", name)
	}
	return nil
}
