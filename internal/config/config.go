// Package config holds the settings of a demultiplexing run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/maschon0/SAM-demultiplex/internal/barcode"
	"github.com/maschon0/SAM-demultiplex/internal/classify"
	"github.com/maschon0/SAM-demultiplex/internal/output"
)

// MaxMismatch is the largest barcode mismatch tolerance accepted.
const MaxMismatch = 3

// Config is a specification of one run: the multiplexed input, the sample table and where the
// per-sample FASTQ files go.
type Config struct {
	// Multiplexed SAM input; "-" is standard input.
	SAM string `json:"sam" toml:"sam"`

	// Sample index table.
	Table string `json:"table" toml:"table"`

	// Index reads to demultiplex on: i5, i7 or both.
	Indices string `json:"indices" toml:"indices"`

	// Barcode mismatches tolerated, 0 to MaxMismatch.
	Mismatch int `json:"mismatch" toml:"mismatch"`

	// Output directory, created if missing.
	Output string `json:"output" toml:"output"`

	// Split each sample into mate 1 and mate 2 files.
	Paired bool `json:"paired" toml:"paired"`

	// Write gzip-compressed FASTQ.
	Gzip bool `json:"gzip" toml:"gzip"`

	// Corrected barcodes remembered between reads; 0 disables the memo.
	CacheSize int `json:"cache_size" toml:"cache_size"`

	// Records buffered per output file before they are handed to its writer.
	BatchSize int `json:"batch_size" toml:"batch_size"`

	// Optional Prometheus text file and JSON run summary.
	MetricsFile string `json:"metrics_file" toml:"metrics_file"`
	SummaryFile string `json:"summary_file" toml:"summary_file"`

	Progress bool `json:"progress" toml:"progress"`
	Quiet    bool `json:"quiet" toml:"quiet"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Indices:   "both",
		Mismatch:  0,
		Output:    ".",
		CacheSize: classify.DefaultCacheSize,
		BatchSize: output.DefaultBatchSize,
	}
}

// ReadFile overlays the settings found in a JSON or TOML run file (chosen by extension) on c.
func ReadFile(filename string, c *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
	default:
		return fmt.Errorf("%s: unknown config format (want .json or .toml)", filename)
	}
	return nil
}

// Selector parses Indices.
func (c Config) Selector() (barcode.Selector, error) {
	return barcode.ParseSelector(c.Indices)
}

// Validate checks the settings before any file is touched.
func (c Config) Validate() error {
	if c.SAM == "" {
		return &barcode.ConfigError{Field: "sam", Reason: "a SAM input is required"}
	}
	if c.Table == "" {
		return &barcode.ConfigError{Field: "table", Reason: "an index table is required"}
	}
	if _, err := c.Selector(); err != nil {
		return err
	}
	if c.Mismatch < 0 || c.Mismatch > MaxMismatch {
		return &barcode.ConfigError{Field: "mismatch", Reason: fmt.Sprintf("%d is outside 0..%d", c.Mismatch, MaxMismatch)}
	}
	if c.Output == "" {
		return &barcode.ConfigError{Field: "output", Reason: "an output directory is required"}
	}
	if c.CacheSize < 0 {
		return &barcode.ConfigError{Field: "cache_size", Reason: "must be >= 0"}
	}
	return nil
}
