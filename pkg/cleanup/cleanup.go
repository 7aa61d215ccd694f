// Package cleanup sequences traversal, pooled hashing, grouping and
// deletion. Prompting and display are left to the caller.
package cleanup

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/yuya-takeyama/dupsweep/pkg/dedup"
	"github.com/yuya-takeyama/dupsweep/pkg/digest"
	"github.com/yuya-takeyama/dupsweep/pkg/executor"
	"github.com/yuya-takeyama/dupsweep/pkg/logger"
	"github.com/yuya-takeyama/dupsweep/pkg/pool"
	"github.com/yuya-takeyama/dupsweep/pkg/walker"
)

// Stage identifies where a file was dropped
type Stage string

const (
	StageWalk Stage = "walk"
	StageHash Stage = "hash"
)

// Skip is a path left out of the results, with the reason
type Skip struct {
	Stage Stage
	Path  string
	Err   error
}

// ScanResult holds everything learned about one directory tree
type ScanResult struct {
	Root       string
	Algorithm  digest.Algorithm
	Workers    int
	FilesFound int
	Files      []pool.FileResult
	Skipped    []Skip
	Duration   time.Duration
}

// Options configures a Cleaner
type Options struct {
	Excludes  []string
	Algorithm digest.Algorithm
	Workers   int
	DryRun    bool
	Logger    logger.Logger
	Observer  pool.Observer
}

// Cleaner finds and removes duplicate files on a filesystem
type Cleaner struct {
	fs     afero.Fs
	hasher *digest.Hasher
	opts   Options
}

func NewCleaner(fs afero.Fs, opts Options) (*Cleaner, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = digest.DefaultAlgorithm
	}
	if opts.Logger == nil {
		opts.Logger = &logger.NullLogger{}
	}

	hasher, err := digest.NewHasher(fs, opts.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("create hasher: %w", err)
	}

	return &Cleaner{
		fs:     fs,
		hasher: hasher,
		opts:   opts,
	}, nil
}

// Scan walks root and digests every regular file found. Only a missing or
// unusable root is an error; every other failure becomes a Skip.
func (c *Cleaner) Scan(root string) (*ScanResult, error) {
	start := time.Now()

	w, err := walker.NewWalker(c.fs, root, c.opts.Excludes)
	if err != nil {
		return &ScanResult{Root: root, Algorithm: c.opts.Algorithm}, fmt.Errorf("directory not found or inaccessible: %w", err)
	}

	result := &ScanResult{
		Root:      w.Root(),
		Algorithm: c.opts.Algorithm,
	}

	c.opts.Logger.PhaseStart(string(StageWalk), 0)
	var paths []string
	for entry := range w.Entries() {
		if entry.Skipped() {
			c.opts.Logger.Skip(string(StageWalk), entry.Path, entry.Err)
			result.Skipped = append(result.Skipped, Skip{Stage: StageWalk, Path: entry.Path, Err: entry.Err})
			continue
		}
		paths = append(paths, entry.Path)
	}
	result.FilesFound = len(paths)
	c.opts.Logger.PhaseComplete(string(StageWalk), len(paths))

	p := pool.NewPool(c.hasher, c.opts.Workers, c.opts.Observer)
	result.Workers = p.Workers()

	c.opts.Logger.PhaseStart(string(StageHash), len(paths))
	hashed := p.Hash(paths)
	for _, s := range hashed.Skipped {
		c.opts.Logger.Skip(string(StageHash), s.Path, s.Err)
		result.Skipped = append(result.Skipped, Skip{Stage: StageHash, Path: s.Path, Err: s.Err})
	}
	result.Files = hashed.Files
	c.opts.Logger.PhaseComplete(string(StageHash), len(hashed.Files))

	result.Duration = time.Since(start)
	return result, nil
}

// Group builds the digest to paths mapping for a scan's results
func (c *Cleaner) Group(results []pool.FileResult) dedup.Groups {
	return dedup.Group(results)
}

// RetainAndDelete applies the retention policy to the collision groups and
// removes every member that is not kept.
func (c *Cleaner) RetainAndDelete(collisions dedup.Groups) ([]dedup.Decision, executor.Report) {
	decisions := dedup.Retain(collisions)
	report := executor.NewExecutor(c.fs, c.opts.Logger, c.opts.DryRun).Execute(decisions)
	return decisions, report
}
