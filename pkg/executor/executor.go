package executor

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/yuya-takeyama/dupsweep/pkg/dedup"
	"github.com/yuya-takeyama/dupsweep/pkg/logger"
)

// Failure is a deletion target that could not be removed
type Failure struct {
	Path  string
	Error error
}

// Report summarizes one deletion pass
type Report struct {
	Kept    []string
	Deleted []string
	Failed  []Failure
	DryRun  bool
}

// Executor removes the members of collision groups that retention did not keep
type Executor struct {
	fs     afero.Fs
	logger logger.Logger
	dryRun bool
}

func NewExecutor(fs afero.Fs, logger logger.Logger, dryRun bool) *Executor {
	return &Executor{
		fs:     fs,
		logger: logger,
		dryRun: dryRun,
	}
}

// Execute removes every Remove target of every decision, one at a time. A
// failed removal is recorded and the remaining targets are still attempted.
func (e *Executor) Execute(decisions []dedup.Decision) Report {
	report := Report{
		Kept:    []string{},
		Deleted: []string{},
		Failed:  []Failure{},
		DryRun:  e.dryRun,
	}

	total := 0
	for _, d := range decisions {
		total += len(d.Remove)
	}
	e.logger.PhaseStart("delete", total)

	for _, d := range decisions {
		report.Kept = append(report.Kept, d.Keep)

		for _, path := range d.Remove {
			if err := e.remove(path); err != nil {
				e.logger.Error("delete", path, err)
				report.Failed = append(report.Failed, Failure{Path: path, Error: err})
				continue
			}
			e.logger.Delete(path, e.dryRun)
			report.Deleted = append(report.Deleted, path)
		}
	}

	e.logger.PhaseComplete("delete", len(report.Deleted))
	return report
}

func (e *Executor) remove(path string) error {
	if e.dryRun {
		return nil
	}

	info, err := e.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("failed to delete: not a regular file: %s", path)
	}

	if err := e.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}
