// Package demux runs one demultiplexing pass: it loads the index table, opens the outputs and
// streams every SAM record through the classifier into its FASTQ file.
package demux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/maschon0/SAM-demultiplex/internal/barcode"
	"github.com/maschon0/SAM-demultiplex/internal/classify"
	"github.com/maschon0/SAM-demultiplex/internal/config"
	"github.com/maschon0/SAM-demultiplex/internal/match"
	"github.com/maschon0/SAM-demultiplex/internal/metrics"
	"github.com/maschon0/SAM-demultiplex/internal/output"
	"github.com/maschon0/SAM-demultiplex/internal/samrec"
)

// maxFlagWarnings caps the per-record warnings about unrecognized flags.
const maxFlagWarnings = 10

const progressEvery = 1 << 14

// Run demultiplexes cfg.SAM into cfg.Output. The returned summary is filled in as far as the run
// got, even when an error is returned. Cancelling ctx stops the run between records; files
// written so far are closed and left in place.
func Run(ctx context.Context, cfg config.Config, logger *log.Logger) (*Summary, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	sum := &Summary{
		RunID:    uuid.NewString(),
		Input:    cfg.SAM,
		Table:    cfg.Table,
		Indices:  cfg.Indices,
		Mismatch: cfg.Mismatch,
		Paired:   cfg.Paired,
		Started:  time.Now().UTC(),
	}
	if err := cfg.Validate(); err != nil {
		return sum, err
	}
	sel, err := cfg.Selector()
	if err != nil {
		return sum, err
	}

	logger.Println("Reading index table", cfg.Table)
	lookup, err := barcode.LoadTable(cfg.Table, sel)
	if err != nil {
		return sum, err
	}
	sum.Samples = len(lookup.Labels())
	warnTable(logger, cfg, lookup)

	cls, err := classify.New(lookup, sel, cfg.Mismatch, cfg.CacheSize)
	if err != nil {
		return sum, err
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return sum, fmt.Errorf("create output directory: %w", err)
	}
	in, err := samrec.Open(cfg.SAM)
	if err != nil {
		return sum, fmt.Errorf("open SAM input: %w", err)
	}
	defer in.Close()

	dests, err := output.Open(cfg.Output, lookup, output.Options{
		Paired:    cfg.Paired,
		Gzip:      cfg.Gzip,
		BatchSize: cfg.BatchSize,
	})
	if err != nil {
		return sum, err
	}
	defer dests.Close()

	rec := metrics.New(sum.RunID, sel.String(), cfg.Mismatch)
	bar := startProgress(cfg, logger.Writer())

	logger.Printf("Starting demux of %s (indices=%s mismatch=%d paired=%t, %d samples)",
		cfg.SAM, sel, cfg.Mismatch, cfg.Paired, sum.Samples)
	loopErr := stream(ctx, cfg, logger, in, cls, dests, rec, sum, bar)
	if bar != nil {
		bar.SetCurrent(in.BytesRead())
		bar.Finish()
	}

	closeErr := dests.Close()
	sum.Finished = time.Now().UTC()
	sum.Orphans = dests.Orphans()
	for _, f := range dests.Files() {
		sum.Files = append(sum.Files, FileSummary{Path: f.Path(), Records: f.Count(), Bytes: f.Bytes()})
		rec.File(f.Path(), f.Count(), f.Bytes())
	}
	rec.Orphans(sum.Orphans)
	rec.Cache(cls.CacheStats())

	if err := errors.Join(loopErr, closeErr); err != nil {
		return sum, err
	}
	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			return sum, fmt.Errorf("write metrics: %w", err)
		}
	}
	if cfg.SummaryFile != "" {
		if err := sum.WriteJSON(cfg.SummaryFile); err != nil {
			return sum, fmt.Errorf("write summary: %w", err)
		}
	}
	logSummary(logger, sum)
	return sum, nil
}

func stream(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
	in *samrec.Reader,
	cls *classify.Classifier,
	dests *output.Destinations,
	rec *metrics.Recorder,
	sum *Summary,
	bar *pb.ProgressBar,
) error {
	done := ctx.Done()
	for {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
		r, err := in.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.SAM, err)
		}
		sum.Records++

		dec, outcome, err := cls.ClassifyOutcome(r)
		var flagErr *samrec.FlagError
		switch {
		case errors.As(err, &flagErr):
			sum.UnrecognizedFlags++
			if sum.UnrecognizedFlags <= maxFlagWarnings {
				warnf(logger, cfg.Quiet, "%s line %d (%s): %v, sent to %s", cfg.SAM, in.Line(), r.QueryName, err, output.UnassignedName)
			}
		case err != nil:
			return fmt.Errorf("%s line %d: %w", cfg.SAM, in.Line(), err)
		case outcome == classify.Exact:
			sum.Exact++
		case outcome == classify.Corrected:
			sum.Corrected++
		default:
			sum.Unmatched++
		}
		rec.Record(outcome.String())

		if err := dests.Route(dec, r); err != nil {
			return err
		}
		if bar != nil && sum.Records%progressEvery == 0 {
			bar.SetCurrent(in.BytesRead())
		}
	}
}

func warnTable(logger *log.Logger, cfg config.Config, lookup *barcode.Lookup) {
	if lookup.Len() == 0 {
		warnf(logger, cfg.Quiet, "index table %s has no samples; every read goes to %s", cfg.Table, output.UnassignedName)
	}
	for _, key := range lookup.Duplicates() {
		label, _ := lookup.Label(key)
		warnf(logger, cfg.Quiet, "index %s listed more than once in %s; using the last row (%s)", key, cfg.Table, label)
	}
	for _, c := range match.Collisions(lookup.Keys(), cfg.Mismatch) {
		warnf(logger, cfg.Quiet, "indices %s and %s are %d apart; reads between them may be ambiguous at mismatch %d",
			c.A, c.B, c.Distance, cfg.Mismatch)
	}
}

func startProgress(cfg config.Config, w io.Writer) *pb.ProgressBar {
	if !cfg.Progress || cfg.Quiet {
		return nil
	}
	var total int64
	if cfg.SAM != "-" && !strings.HasSuffix(cfg.SAM, ".gz") {
		if fi, err := os.Stat(cfg.SAM); err == nil {
			total = fi.Size()
		}
	}
	bar := pb.New64(total)
	bar.Set(pb.Bytes, true)
	bar.SetWriter(w)
	return bar.Start()
}

func logSummary(logger *log.Logger, sum *Summary) {
	logger.Printf("Records: %s (exact %s, corrected %s, unmatched %s, unrecognized flags %s)",
		humanize.Comma(sum.Records), humanize.Comma(sum.Exact), humanize.Comma(sum.Corrected),
		humanize.Comma(sum.Unmatched), humanize.Comma(sum.UnrecognizedFlags))
	logger.Printf("Assigned %s, unassigned %s, %d files, %s written",
		humanize.Comma(sum.Assigned()), humanize.Comma(sum.Unassigned()), len(sum.Files),
		humanize.Bytes(uint64(sum.Bytes())))
	if sum.Orphans > 0 {
		logger.Printf("%s unpaired reads matched a sample in a paired run and went to %s",
			humanize.Comma(sum.Orphans), output.UnassignedName)
	}
	logger.Println("done")
}

func warnf(logger *log.Logger, quiet bool, format string, a ...any) {
	if quiet {
		return
	}
	logger.Printf("WARN: "+format, a...)
}
