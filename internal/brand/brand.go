// Package brand provides centralized naming and default paths for the daemon.
// Directories can be relocated with environment variables so the binary can run
// from a test prefix without root-owned paths.
package brand

import (
	"os"
	"path/filepath"
)

const (
	Name            = "v6watch"
	Description     = "IPv6 reachability monitor and address renewal daemon"
	ConfigEnvPrefix = "V6WATCH"
	BinaryName      = "v6watch"
	ConfigFileName  = "v6watch.hcl"
	LogFileName     = "v6watch.log"
)

var (
	DefaultConfigDir = "/etc/v6watch"
	DefaultLogDir    = "/var/log"

	// Version is set at build time via -ldflags
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// UserAgent returns an identifier suitable for protocol user-class fields.
func UserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return Name + "/" + version
}

// GetConfigDir returns the config directory, checking env vars first.
// Priority: V6WATCH_CONFIG_DIR > V6WATCH_PREFIX/etc > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "etc")
	}
	return DefaultConfigDir
}

// GetLogDir returns the log directory, checking env vars first.
// Priority: V6WATCH_LOG_DIR > V6WATCH_PREFIX/log > DefaultLogDir
func GetLogDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_LOG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "log")
	}
	return DefaultLogDir
}

// DefaultConfigPath is where the config is read from when -config is not given.
func DefaultConfigPath() string {
	if p := os.Getenv(ConfigEnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// DefaultLogPath is the append-only log file used when the config omits log_path.
func DefaultLogPath() string {
	return filepath.Join(GetLogDir(), LogFileName)
}
