package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/yuya-takeyama/dupsweep/pkg/dedup"
	"github.com/yuya-takeyama/dupsweep/pkg/logger"
	"github.com/yuya-takeyama/dupsweep/pkg/report"
)

var headerColor = color.New(color.Bold)

// Logger writes user facing output to out and diagnostics through logrus
type Logger struct {
	out   io.Writer
	quiet bool
	log   *logrus.Logger
}

// NewLogger creates a new logger. Diagnostics go to errOut at warn level,
// debug when verbose, errors only when quiet.
func NewLogger(out, errOut io.Writer, quiet, verbose bool) *Logger {
	log := logrus.New()
	log.SetOutput(errOut)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case quiet:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}

	return &Logger{out: out, quiet: quiet, log: log}
}

// Diagnostics returns the underlying logrus logger
func (l *Logger) Diagnostics() *logrus.Logger {
	return l.log
}

// Events returns the event logger matching the verbosity
func (l *Logger) Events() logger.Logger {
	if l.quiet {
		return &logger.QuietLogger{Log: l.log}
	}
	return &logger.ConsoleLogger{Out: l.out, Log: l.log}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if !l.quiet {
		fmt.Fprintf(l.out, format+"\n", args...)
	}
}

// Print writes a message regardless of quiet mode
func (l *Logger) Print(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

// DisplayCollisions lists every collision group, ordered by digest
func (l *Logger) DisplayCollisions(collisions dedup.Groups) {
	if len(collisions) == 0 {
		fmt.Fprintln(l.out, "No hash collisions found.")
		return
	}

	for _, d := range collisions.Digests() {
		fmt.Fprintln(l.out)
		headerColor.Fprintf(l.out, "The following files share the same hash (%s):\n", d)
		for i, path := range collisions[d] {
			fmt.Fprintf(l.out, "%d - %s\n", i+1, path)
		}
	}
}

// PrintSummary prints a summary of the run
func (l *Logger) PrintSummary(s report.Summary, duration time.Duration) {
	if l.quiet && s.Failed == 0 {
		return
	}

	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, "=== Summary ===")
	fmt.Fprintf(l.out, "Files: %d found, %d hashed\n", s.FilesFound, s.FilesHashed)
	if s.Skipped > 0 {
		fmt.Fprintf(l.out, "Skipped: %d files\n", s.Skipped)
	}
	fmt.Fprintf(l.out, "Duplicates: %d files in %d groups\n", s.Duplicates, s.Collisions)
	fmt.Fprintf(l.out, "Deleted: %d files\n", s.Deleted)
	if s.Failed > 0 {
		fmt.Fprintf(l.out, "Errors: %d\n", s.Failed)
	}
	fmt.Fprintf(l.out, "Duration: %s\n", duration.Round(time.Millisecond))
}
