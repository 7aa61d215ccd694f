package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/yuya-takeyama/dupsweep/internal/config"
	"github.com/yuya-takeyama/dupsweep/pkg/pool"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

var errMissingDirectory = errors.New("missing directory argument")

func newRootCmd(cfg *config.Config, a *app) *cobra.Command {
	opts := &a.opts

	rootCmd := &cobra.Command{
		Use:   "dupsweep <directory>",
		Short: "Find and remove duplicate files by content hash",
		Long: `dupsweep hashes every regular file below a directory in parallel, groups
files with identical content and, when asked to, deletes all but the copy
closest to the root of the tree.`,
		Version: fmt.Sprintf("%s (commit: %s, built at: %s by %s)", version, commit, date, builtBy),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errMissingDirectory
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args[0])
		},
	}

	rootCmd.Flags().BoolVar(&opts.showDuplicates, "show-duplicates", false, "Show every group of files sharing the same content")
	rootCmd.Flags().BoolVar(&opts.deleteFlag, "delete", false, "Delete duplicates, keeping the copy closest to the root")
	rootCmd.Flags().BoolVar(&opts.yes, "yes", false, "Skip confirmation prompts")
	rootCmd.Flags().BoolVar(&opts.dryRun, "dryrun", false, "Shows deletions without executing")
	rootCmd.Flags().StringSliceVar(&opts.excludes, "exclude", cfg.Excludes, "Exclude patterns (multiple allowed)")
	rootCmd.Flags().IntVar(&opts.workers, "workers", cfg.Workers, fmt.Sprintf("Number of hashing workers (0 = number of CPUs, %d if unknown)", pool.FallbackWorkers))
	rootCmd.Flags().StringVar(&opts.algorithm, "algorithm", cfg.Algorithm, "Hash algorithm: md5, sha1, sha256 or sha512")
	rootCmd.Flags().BoolVar(&opts.progress, "progress", cfg.Progress, "Show a progress bar while hashing")
	rootCmd.Flags().BoolVar(&opts.quiet, "quiet", false, "Suppress non-error output")
	rootCmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Log every phase and skipped file")
	rootCmd.Flags().StringVar(&opts.reportFile, "report-file", cfg.ReportFile, "Path to output the report (JSON, or YAML for .yaml/.yml)")
	rootCmd.Flags().StringVar(&opts.reportS3URI, "report-s3-uri", cfg.ReportS3URI, "Upload the JSON report under this S3 URI (s3://bucket/prefix)")
	rootCmd.Flags().StringVar(&opts.profile, "profile", cfg.Profile, "AWS profile to use for the report upload")
	rootCmd.Flags().StringVar(&opts.region, "region", cfg.Region, "AWS region (uses default if not specified)")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	return rootCmd
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), newRootCmd(cfg, a)); err != nil {
		os.Exit(1)
	}
}
