// Package logging provides the leveled, timestamped log used by every component.
//
// Lines are written to an append-only file, to stderr, and optionally to a remote
// syslog server. Levels are DEBUG, INFO, SUCCESS, WARNING and ERROR; SUCCESS is a
// custom slog level between INFO and WARN.
package logging
