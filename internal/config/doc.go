// Package config loads the monitor's static configuration.
//
// HCL is the primary format; JSON and YAML are accepted by file extension.
// A [Config] is built once at startup by [LoadFile], which applies defaults and
// validates the result. Components receive it explicitly and never modify it.
//
// Example:
//
//	interfaces             = ["eth0", "wlan0"]
//	probe_target           = "2001:4860:4860::8888"
//	probe_count            = 3
//	probe_timeout_seconds  = 5
//	treat_128_as_deletable = false
//	log_path               = "/var/log/v6watch.log"
//
//	timings {
//	  cooldown_seconds = 30
//	}
package config
