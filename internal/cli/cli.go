// Package cli is the sam-demultiplex command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maschon0/SAM-demultiplex/internal/barcode"
	"github.com/maschon0/SAM-demultiplex/internal/config"
	"github.com/maschon0/SAM-demultiplex/internal/demux"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitUsage  = 2
	ExitCancel = 130
)

type options struct {
	cfg        config.Config
	configFile string
	cpuProfile string
	memProfile string
}

// NewCommand builds the root command. Log lines go to stderr; stdout is left for help text.
func NewCommand(ctx context.Context, stdout, stderr io.Writer) *cobra.Command {
	opt := &options{cfg: config.Default()}
	cmd := &cobra.Command{
		Use:   "sam-demultiplex -S pool.sam -T indices.tsv [flags]",
		Short: "Split an unaligned multiplexed SAM file into per-sample FASTQ files",
		Long: `Split an unaligned multiplexed SAM file into per-sample FASTQ files.

Each record is assigned to a sample by its i5 (B2 tag) and/or i7 (BC tag) index
read, allowing up to --mismatch substitutions. Reads that match no sample, or
more than one, are written to unassigned.fastq.

The index table is tab-separated: label, i7, i5 (or label, index for a
single-index run). Settings can also be read from a JSON or TOML file with
--config; flags given on the command line take precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opt.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			if p := opt.profiler(); p != nil {
				defer p.Stop()
			}
			logger := log.New(stderr, "", log.LstdFlags)
			_, err = demux.Run(ctx, cfg, logger)
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&opt.cfg.SAM, "sam", "S", opt.cfg.SAM, "multiplexed SAM input (.gz accepted, - for stdin)")
	f.StringVarP(&opt.cfg.Table, "table", "T", opt.cfg.Table, "tab-separated sample index table")
	f.StringVarP(&opt.cfg.Indices, "indices", "I", opt.cfg.Indices, "index reads to use: i5, i7 or both")
	f.IntVarP(&opt.cfg.Mismatch, "mismatch", "M", opt.cfg.Mismatch, fmt.Sprintf("barcode mismatches tolerated (0-%d)", config.MaxMismatch))
	f.StringVarP(&opt.cfg.Output, "output", "O", opt.cfg.Output, "output directory")
	f.BoolVar(&opt.cfg.Paired, "paired", opt.cfg.Paired, "write mate 1 and mate 2 to separate files")
	f.BoolVar(&opt.cfg.Gzip, "gzip", opt.cfg.Gzip, "gzip the FASTQ outputs")
	f.StringVar(&opt.configFile, "config", "", "JSON or TOML run file")
	f.StringVar(&opt.cfg.MetricsFile, "metrics-file", opt.cfg.MetricsFile, "write Prometheus metrics to this text file")
	f.StringVar(&opt.cfg.SummaryFile, "summary", opt.cfg.SummaryFile, "write a JSON run summary to this file")
	f.BoolVar(&opt.cfg.Progress, "progress", opt.cfg.Progress, "show a progress bar on stderr")
	f.BoolVarP(&opt.cfg.Quiet, "quiet", "q", opt.cfg.Quiet, "suppress warnings and the progress bar")
	f.IntVar(&opt.cfg.CacheSize, "cache-size", opt.cfg.CacheSize, "corrected barcodes remembered (0 disables)")
	f.IntVar(&opt.cfg.BatchSize, "batch-size", opt.cfg.BatchSize, "records buffered per output file")
	f.StringVar(&opt.cpuProfile, "cpuprofile", "", "write a CPU profile to this directory")
	f.StringVar(&opt.memProfile, "memprofile", "", "write a memory profile to this directory")
	cmd.MarkFlagsMutuallyExclusive("cpuprofile", "memprofile")
	return cmd
}

// resolve layers the run file under the flags the user actually set.
func (o *options) resolve(flags *pflag.FlagSet) (config.Config, error) {
	if o.configFile == "" {
		return o.cfg, nil
	}
	cfg := config.Default()
	if err := config.ReadFile(o.configFile, &cfg); err != nil {
		return cfg, err
	}
	flags.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "sam":
			cfg.SAM = o.cfg.SAM
		case "table":
			cfg.Table = o.cfg.Table
		case "indices":
			cfg.Indices = o.cfg.Indices
		case "mismatch":
			cfg.Mismatch = o.cfg.Mismatch
		case "output":
			cfg.Output = o.cfg.Output
		case "paired":
			cfg.Paired = o.cfg.Paired
		case "gzip":
			cfg.Gzip = o.cfg.Gzip
		case "metrics-file":
			cfg.MetricsFile = o.cfg.MetricsFile
		case "summary":
			cfg.SummaryFile = o.cfg.SummaryFile
		case "progress":
			cfg.Progress = o.cfg.Progress
		case "quiet":
			cfg.Quiet = o.cfg.Quiet
		case "cache-size":
			cfg.CacheSize = o.cfg.CacheSize
		case "batch-size":
			cfg.BatchSize = o.cfg.BatchSize
		}
	})
	return cfg, nil
}

func (o *options) profiler() interface{ Stop() } {
	switch {
	case o.cpuProfile != "":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(o.cpuProfile), profile.NoShutdownHook, profile.Quiet)
	case o.memProfile != "":
		return profile.Start(profile.MemProfile, profile.ProfilePath(o.memProfile), profile.NoShutdownHook, profile.Quiet)
	}
	return nil
}

// RunContext executes the command with argv and returns the process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cmd := NewCommand(ctx, stdout, stderr)
	cmd.SetArgs(argv)
	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(stderr, "sam-demultiplex:", err)
	var cfgErr *barcode.ConfigError
	switch {
	case errors.Is(err, context.Canceled):
		return ExitCancel
	case errors.As(err, &cfgErr):
		return ExitUsage
	}
	return ExitFailed
}
