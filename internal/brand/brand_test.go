package brand

import (
	"path/filepath"
	"testing"
)

func TestUserAgent(t *testing.T) {
	if ua := UserAgent("1.0.0"); ua != "v6watch/1.0.0" {
		t.Errorf("UserAgent = %q", ua)
	}
	if ua := UserAgent(""); ua != "v6watch/dev" {
		t.Errorf("UserAgent default = %q", ua)
	}
}

func TestGetDirectories(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv(ConfigEnvPrefix+"_PREFIX", "")
		t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "")
		t.Setenv(ConfigEnvPrefix+"_LOG_DIR", "")
		t.Setenv(ConfigEnvPrefix+"_CONFIG", "")

		if got := GetConfigDir(); got != DefaultConfigDir {
			t.Errorf("GetConfigDir = %q, want %q", got, DefaultConfigDir)
		}
		if got := DefaultLogPath(); got != filepath.Join(DefaultLogDir, LogFileName) {
			t.Errorf("DefaultLogPath = %q", got)
		}
		if got := DefaultConfigPath(); got != filepath.Join(DefaultConfigDir, ConfigFileName) {
			t.Errorf("DefaultConfigPath = %q", got)
		}
	})

	t.Run("Prefix", func(t *testing.T) {
		t.Setenv(ConfigEnvPrefix+"_PREFIX", "/tmp/v6")
		t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "")
		t.Setenv(ConfigEnvPrefix+"_LOG_DIR", "")
		t.Setenv(ConfigEnvPrefix+"_CONFIG", "")

		if got := GetConfigDir(); got != "/tmp/v6/etc" {
			t.Errorf("GetConfigDir = %q", got)
		}
		if got := GetLogDir(); got != "/tmp/v6/log" {
			t.Errorf("GetLogDir = %q", got)
		}
	})

	t.Run("Explicit", func(t *testing.T) {
		t.Setenv(ConfigEnvPrefix+"_PREFIX", "/tmp/v6")
		t.Setenv(ConfigEnvPrefix+"_LOG_DIR", "/srv/log")
		t.Setenv(ConfigEnvPrefix+"_CONFIG", "/srv/v6watch.json")

		if got := GetLogDir(); got != "/srv/log" {
			t.Errorf("GetLogDir = %q", got)
		}
		if got := DefaultConfigPath(); got != "/srv/v6watch.json" {
			t.Errorf("DefaultConfigPath = %q", got)
		}
	})
}
