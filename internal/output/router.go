// Package output owns the FASTQ files of a run and routes classified reads into them.
//
// Files live in one directory: unassigned.fastq plus <label>.fastq per sample, or
// <label>.1.fastq and <label>.2.fastq when mates are split. Every physical file has exactly
// one RecordWriter, even when several lookup keys share a label.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maschon0/SAM-demultiplex/internal/barcode"
	"github.com/maschon0/SAM-demultiplex/internal/classify"
	"github.com/maschon0/SAM-demultiplex/internal/samrec"
)

// UnassignedName is the base name of the catch-all output.
const UnassignedName = "unassigned"

// Options control how destinations are opened.
type Options struct {
	Paired    bool
	Gzip      bool
	BatchSize int
}

func (o Options) ext() string {
	if o.Gzip {
		return ".fastq.gz"
	}
	return ".fastq"
}

type slot struct {
	key  string
	role samrec.MateRole
}

// Destinations is the registry of open outputs for one run.
type Destinations struct {
	paired     bool
	sinks      map[slot]*RecordWriter
	unassigned *RecordWriter
	files      []*RecordWriter
	orphans    int64
	closed     bool
}

// Open creates the output files for every sample in lookup under dir. The directory must exist.
// On failure the files opened so far are closed and the error is returned.
func Open(dir string, lookup *barcode.Lookup, opt Options) (*Destinations, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("open output: %s is not a directory", dir)
	}
	d := &Destinations{
		paired: opt.Paired,
		sinks:  make(map[slot]*RecordWriter, 2*lookup.Len()),
	}
	byPath := make(map[string]*RecordWriter)
	open := func(name string) (*RecordWriter, error) {
		path := filepath.Join(dir, name+opt.ext())
		if w, ok := byPath[path]; ok {
			return w, nil
		}
		w, err := NewRecordWriter(path, opt.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		byPath[path] = w
		d.files = append(d.files, w)
		return w, nil
	}

	if d.unassigned, err = open(UnassignedName); err != nil {
		return nil, err
	}
	for _, key := range lookup.Keys() {
		label, _ := lookup.Label(key)
		if opt.Paired {
			one, err := open(label + ".1")
			if err != nil {
				_ = d.Close()
				return nil, err
			}
			two, err := open(label + ".2")
			if err != nil {
				_ = d.Close()
				return nil, err
			}
			d.sinks[slot{key, samrec.MateOne}] = one
			d.sinks[slot{key, samrec.MateTwo}] = two
			continue
		}
		w, err := open(label)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		d.sinks[slot{key, samrec.Unpaired}] = w
	}
	return d, nil
}

// Resolve returns the file a decision is written to. In paired mode an assigned read without a
// mate role has no sample file and resolves to the unassigned output.
func (d *Destinations) Resolve(dec classify.Decision) *RecordWriter {
	if !dec.IsAssigned() {
		return d.unassigned
	}
	role := dec.Role
	if !d.paired {
		role = samrec.Unpaired
	}
	if w, ok := d.sinks[slot{dec.Key, role}]; ok {
		return w
	}
	return nil
}

// Route writes rec as a FASTQ record to the destination of dec. The header is the query name
// followed by the mate suffix.
func (d *Destinations) Route(dec classify.Decision, rec samrec.Record) error {
	if d.closed {
		return errors.New("route after close")
	}
	w := d.Resolve(dec)
	if w == nil {
		d.orphans++
		w = d.unassigned
	}
	if err := w.Write(NewRecord(rec.QueryName+dec.Role.Suffix(), rec.Sequence, rec.Quality)); err != nil {
		return fmt.Errorf("write %s: %w", w.Path(), err)
	}
	return nil
}

// Orphans is the number of assigned reads that had no sample file for their mate role.
func (d *Destinations) Orphans() int64 { return d.orphans }

// Files returns every open file, the unassigned one first.
func (d *Destinations) Files() []*RecordWriter { return d.files }

// Close closes every file once and returns the first error.
func (d *Destinations) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var first error
	for _, w := range d.files {
		if err := w.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", w.Path(), err)
		}
	}
	return first
}
