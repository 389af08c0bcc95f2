package demux

import (
	"encoding/json"
	"os"
	"time"
)

// FileSummary is the final size of one output file.
type FileSummary struct {
	Path    string `json:"path"`
	Records int64  `json:"records"`
	Bytes   int64  `json:"bytes"`
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	RunID    string    `json:"run_id"`
	Input    string    `json:"input"`
	Table    string    `json:"table"`
	Indices  string    `json:"indices"`
	Mismatch int       `json:"mismatch"`
	Paired   bool      `json:"paired"`
	Samples  int       `json:"samples"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	Records           int64 `json:"records"`
	Exact             int64 `json:"exact"`
	Corrected         int64 `json:"corrected"`
	Unmatched         int64 `json:"unmatched"`
	UnrecognizedFlags int64 `json:"unrecognized_flags"`
	Orphans           int64 `json:"orphans"`

	Files []FileSummary `json:"files"`
}

// Assigned is the number of records written to a sample file.
func (s *Summary) Assigned() int64 { return s.Exact + s.Corrected - s.Orphans }

// Unassigned is the number of records written to the unassigned file.
func (s *Summary) Unassigned() int64 { return s.Records - s.Assigned() }

// Bytes is the uncompressed size of every output.
func (s *Summary) Bytes() int64 {
	var n int64
	for _, f := range s.Files {
		n += f.Bytes
	}
	return n
}

// WriteJSON writes the summary as indented JSON.
func (s *Summary) WriteJSON(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
