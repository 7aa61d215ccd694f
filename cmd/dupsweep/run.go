package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/yuya-takeyama/dupsweep/internal/logging"
	"github.com/yuya-takeyama/dupsweep/internal/progress"
	"github.com/yuya-takeyama/dupsweep/internal/prompt"
	"github.com/yuya-takeyama/dupsweep/pkg/cleanup"
	"github.com/yuya-takeyama/dupsweep/pkg/dedup"
	"github.com/yuya-takeyama/dupsweep/pkg/digest"
	"github.com/yuya-takeyama/dupsweep/pkg/executor"
	"github.com/yuya-takeyama/dupsweep/pkg/pool"
	"github.com/yuya-takeyama/dupsweep/pkg/report"
	"github.com/yuya-takeyama/dupsweep/pkg/s3client"
)

const warningMessage = `
	WARNING: Deleting duplicate files can be dangerous!

	- Essential files might be duplicated intentionally for accessibility.
	- Programs may rely on these files being in specific directories.

	- This tool will delete all duplicate instances of a file. Duplicates are defined as having the same
	  binary data. Only one single instance will be kept. This will be the file with the shortest path
	  from the root of the scanned directory.

	Please consider these risks before proceeding.
`

type options struct {
	showDuplicates bool
	deleteFlag     bool
	yes            bool
	dryRun         bool
	excludes       []string
	workers        int
	algorithm      string
	progress       bool
	quiet          bool
	verbose        bool
	reportFile     string
	reportS3URI    string
	profile        string
	region         string
}

// app carries the flag values and the process streams for one invocation
type app struct {
	opts   options
	fs     afero.Fs
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	newID       func() string
	newS3Client func(ctx context.Context, profile, region string) (s3client.Client, error)
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		fs:          afero.NewOsFs(),
		in:          in,
		out:         out,
		errOut:      errOut,
		newID:       uuid.NewString,
		newS3Client: newAWSClient,
	}
}

func newAWSClient(ctx context.Context, profile, region string) (s3client.Client, error) {
	// Build config options
	var configOpts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3client.NewAWSClient(cfg), nil
}

// run scans root and acts on what it finds. Only invalid options are
// returned as errors; scan, deletion and report failures are logged.
func (a *app) run(ctx context.Context, root string) error {
	start := time.Now()
	log := logging.NewLogger(a.out, a.errOut, a.opts.quiet, a.opts.verbose)

	algorithm, err := digest.ParseAlgorithm(a.opts.algorithm)
	if err != nil {
		return err
	}
	if a.opts.workers < 0 {
		return fmt.Errorf("--workers must not be negative: %d", a.opts.workers)
	}

	var observer pool.Observer
	if a.opts.progress && !a.opts.quiet {
		bar := progress.New(a.errOut)
		defer bar.Close()
		observer = bar
	}

	cleaner, err := cleanup.NewCleaner(a.fs, cleanup.Options{
		Excludes:  a.opts.excludes,
		Algorithm: algorithm,
		Workers:   a.opts.workers,
		DryRun:    a.opts.dryRun,
		Logger:    log.Events(),
		Observer:  observer,
	})
	if err != nil {
		return err
	}

	log.Info("Gathering file paths...")
	scan, err := cleaner.Scan(root)
	if err != nil {
		log.Error("%v", err)
		return nil
	}
	log.Info("Found %d files. Hashed %d with %d workers.", scan.FilesFound, len(scan.Files), scan.Workers)

	collisions := cleaner.Group(scan.Files).Collisions()

	if a.opts.showDuplicates {
		log.DisplayCollisions(collisions)
	} else {
		log.Print("Duplicates were found for %d individual files\n", len(collisions))
	}

	var (
		decisions []dedup.Decision
		deletion  *executor.Report
	)
	if a.opts.deleteFlag {
		if len(collisions) == 0 {
			log.Print("Nothing to delete. No duplicate files found")
		} else if a.confirmDeletion(log, collisions) {
			var result executor.Report
			decisions, result = cleaner.RetainAndDelete(collisions)
			deletion = &result
		} else {
			log.Print("Aborted deletion.")
		}
	}
	if decisions == nil {
		decisions = dedup.Retain(collisions)
	}

	r := report.Build(a.newID(), scan, decisions, deletion)
	log.PrintSummary(r.Summary, time.Since(start))

	if a.opts.reportFile != "" {
		if err := report.WriteFile(a.opts.reportFile, r); err != nil {
			log.Error("failed to write report: %v", err)
		} else {
			log.Info("Report written to %s", a.opts.reportFile)
		}
	}

	if a.opts.reportS3URI != "" {
		if uri, err := a.uploadReport(ctx, r); err != nil {
			log.Error("%v", err)
		} else {
			log.Info("Report uploaded to %s", uri)
		}
	}

	return nil
}

// confirmDeletion walks the operator through the deletion prompts. It
// returns true only on an explicit yes, or when prompts are disabled.
func (a *app) confirmDeletion(log *logging.Logger, collisions dedup.Groups) bool {
	if a.opts.yes {
		return true
	}

	p := prompt.New(a.in, a.out)
	if err := p.WaitForEnter("Proceed to Delete? Hit Enter to Continue: "); err != nil {
		return false
	}

	log.Print(warningMessage)

	if !a.opts.showDuplicates {
		show, err := p.Confirm("Do you want to see all the files (absolute paths) which share the same binary data? (yes/no)? ")
		if err != nil {
			return false
		}
		if show {
			log.DisplayCollisions(collisions)
		}
	}

	ok, err := p.Confirm("Do you know what you are doing (yes/no)? ")
	if err != nil {
		if !errors.Is(err, prompt.ErrNoInput) {
			log.Error("%v", err)
		}
		return false
	}
	return ok
}

func (a *app) uploadReport(ctx context.Context, r *report.Report) (string, error) {
	if _, _, err := s3client.ParseS3URI(a.opts.reportS3URI); err != nil {
		return "", err
	}

	client, err := a.newS3Client(ctx, a.opts.profile, a.opts.region)
	if err != nil {
		return "", err
	}

	return report.Upload(ctx, client, a.opts.reportS3URI, r)
}
