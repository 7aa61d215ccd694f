package logger

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger receives progress events from a cleanup run
type Logger interface {
	PhaseStart(phase string, totalItems int)
	PhaseComplete(phase string, processedItems int)
	Skip(phase, path string, err error)
	Delete(path string, dryRun bool)
	Error(operation, path string, err error)
}

var (
	deletedColor = color.New(color.FgRed)
	dryRunColor  = color.New(color.FgYellow)
)

// ConsoleLogger prints deletions to Out and diagnostics through Log
type ConsoleLogger struct {
	Out io.Writer
	Log *logrus.Logger
}

func (l *ConsoleLogger) PhaseStart(phase string, totalItems int) {
	l.Log.WithFields(logrus.Fields{"phase": phase, "items": totalItems}).Debug("phase started")
}

func (l *ConsoleLogger) PhaseComplete(phase string, processedItems int) {
	l.Log.WithFields(logrus.Fields{"phase": phase, "processed": processedItems}).Debug("phase complete")
}

func (l *ConsoleLogger) Skip(phase, path string, err error) {
	l.Log.WithFields(logrus.Fields{"phase": phase, "path": path}).WithError(err).Warn("skipping")
}

func (l *ConsoleLogger) Delete(path string, dryRun bool) {
	if dryRun {
		dryRunColor.Fprint(l.Out, "(dryrun) delete: ")
		fmt.Fprintln(l.Out, path)
		return
	}
	deletedColor.Fprint(l.Out, "Deleted: ")
	fmt.Fprintln(l.Out, path)
}

func (l *ConsoleLogger) Error(operation, path string, err error) {
	l.Log.WithFields(logrus.Fields{"operation": operation, "path": path}).WithError(err).Error("operation failed")
}

// QuietLogger only reports failures
type QuietLogger struct {
	Log *logrus.Logger
}

func (l *QuietLogger) PhaseStart(phase string, totalItems int) {}

func (l *QuietLogger) PhaseComplete(phase string, processedItems int) {}

func (l *QuietLogger) Skip(phase, path string, err error) {}

func (l *QuietLogger) Delete(path string, dryRun bool) {}

func (l *QuietLogger) Error(operation, path string, err error) {
	l.Log.WithFields(logrus.Fields{"operation": operation, "path": path}).WithError(err).Error("operation failed")
}

type NullLogger struct{}

func (l *NullLogger) PhaseStart(phase string, totalItems int) {}

func (l *NullLogger) PhaseComplete(phase string, processedItems int) {}

func (l *NullLogger) Skip(phase, path string, err error) {}

func (l *NullLogger) Delete(path string, dryRun bool) {}

func (l *NullLogger) Error(operation, path string, err error) {}
