package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/yuya-takeyama/dupsweep/internal/fixture"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func newRootCmd(fs afero.Fs) *cobra.Command {
	opts := fixture.DefaultOptions()
	var workers int

	rootCmd := &cobra.Command{
		Use:   "dupgen <root>",
		Short: "Generate a directory tree with a share of duplicated files",
		Long: `dupgen fills a directory with nested subdirectories of random text files.
A percentage of the files is written in groups with identical content so
duplicate detection can be tried on a known layout.`,
		Version: fmt.Sprintf("%s (commit: %s, built at: %s by %s)", version, commit, date, builtBy),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if opts.Seed == 0 {
				opts.Seed = uint64(time.Now().UnixNano())
			}

			plan, err := fixture.NewPlan(root, opts)
			if err != nil {
				return err
			}
			if err := fixture.Write(cmd.Context(), fs, plan, workers); err != nil {
				return fmt.Errorf("failed to generate tree: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated directory structure in %s with depth %d.\n", root, opts.Depth)
			fmt.Fprintf(cmd.OutOrStdout(), "%d files in %d directories, %d of them in %d duplicate groups (seed %d).\n",
				len(plan.Files), len(plan.Dirs), plan.Duplicates(), plan.Groups, opts.Seed)
			return nil
		},
	}

	rootCmd.Flags().IntVar(&opts.Dirs, "dirs", opts.Dirs, "Number of subdirectories in each directory")
	rootCmd.Flags().IntVar(&opts.FilesPerDir, "files", opts.FilesPerDir, "Number of files per directory")
	rootCmd.Flags().IntVar(&opts.Depth, "depth", opts.Depth, "Depth of the directory structure")
	rootCmd.Flags().IntVar(&opts.Length, "length", opts.Length, "Length of random text in each file")
	rootCmd.Flags().IntVar(&opts.DuplicatePercent, "duplicates", opts.DuplicatePercent, "Percentage of files that should have duplicate content")
	rootCmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one from the clock)")
	rootCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of concurrent file writers")

	return rootCmd
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(afero.NewOsFs())); err != nil {
		os.Exit(1)
	}
}
