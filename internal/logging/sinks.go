package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sinks is the set of destinations a run writes to. The file sink is
// append-only; nothing ever truncates or rewrites it.
type Sinks struct {
	closers []io.Closer
	writers []io.Writer
}

// SinkOptions selects which destinations Open attaches.
type SinkOptions struct {
	FilePath string
	Console  io.Writer
	Syslog   SyslogConfig
}

// OpenSinks opens every configured destination. A file that cannot be opened is
// an error; an unreachable syslog server is reported but the run continues with
// the remaining sinks.
func OpenSinks(opts SinkOptions) (*Sinks, error) {
	s := &Sinks{}
	if opts.Console != nil {
		s.writers = append(s.writers, opts.Console)
	}

	if opts.FilePath != "" {
		f, err := OpenAppend(opts.FilePath)
		if err != nil {
			return nil, err
		}
		s.writers = append(s.writers, f)
		s.closers = append(s.closers, f)
	}

	var syslogErr error
	if opts.Syslog.Enabled {
		w, err := NewSyslogWriter(opts.Syslog)
		if err != nil {
			syslogErr = err
		} else {
			s.writers = append(s.writers, w)
			s.closers = append(s.closers, w)
		}
	}

	return s, syslogErr
}

// OpenAppend opens path for appending, creating it and its directory if needed.
func OpenAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// LevelWriter is a sink that can make use of a record's level.
type LevelWriter interface {
	io.Writer
	WriteLevel(level Level, p []byte) (int, error)
}

// Writer returns a writer fanning out to every open sink. It is a
// LevelWriter, so leveled sinks such as syslog receive each record's level.
func (s *Sinks) Writer() io.Writer {
	if len(s.writers) == 0 {
		return io.Discard
	}
	return fanout(s.writers)
}

type fanout []io.Writer

func (f fanout) Write(p []byte) (int, error) {
	for _, w := range f {
		if _, err := w.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (f fanout) WriteLevel(level Level, p []byte) (int, error) {
	for _, w := range f {
		var err error
		if lw, ok := w.(LevelWriter); ok {
			_, err = lw.WriteLevel(level, p)
		} else {
			_, err = w.Write(p)
		}
		if err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close closes every sink that holds a resource.
func (s *Sinks) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
