// Package samrec reads the handful of SAM fields needed to route a read.
package samrec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"

	"github.com/maschon0/SAM-demultiplex/internal/barcode"
)

// Positions of the fields used for routing (0-based).
const (
	fieldQName = 0
	fieldFlag  = 1
	fieldSeq   = 9
	fieldQual  = 10
	fieldI5    = 11
	fieldI7    = 13

	// MinFields is the number of tab-separated fields a data line must carry.
	MinFields = 16
)

// Flags of unaligned demultiplexing input. Anything else has no mate role.
const (
	FlagUnpaired = sam.Unmapped
	FlagMateOne  = sam.Paired | sam.Unmapped | sam.MateUnmapped | sam.Read1
	FlagMateTwo  = sam.Paired | sam.Unmapped | sam.MateUnmapped | sam.Read2
)

// MateRole is the position of a read in its pair.
type MateRole int

const (
	Unpaired MateRole = iota
	MateOne
	MateTwo
)

// Suffix is appended to the read name in the FASTQ header.
func (r MateRole) Suffix() string {
	switch r {
	case MateOne:
		return "/1"
	case MateTwo:
		return "/2"
	}
	return ""
}

func (r MateRole) String() string {
	switch r {
	case MateOne:
		return "mate1"
	case MateTwo:
		return "mate2"
	}
	return "unpaired"
}

// RoleOf maps a flag to its mate role.
func RoleOf(f sam.Flags) (MateRole, error) {
	switch f {
	case FlagUnpaired:
		return Unpaired, nil
	case FlagMateOne:
		return MateOne, nil
	case FlagMateTwo:
		return MateTwo, nil
	}
	return Unpaired, &FlagError{Flag: strconv.Itoa(int(f))}
}

// FlagError reports a flag outside the unpaired / mate 1 / mate 2 vocabulary.
type FlagError struct {
	Flag string
}

func (e *FlagError) Error() string {
	return fmt.Sprintf("unrecognized flag %q", e.Flag)
}

// ParseError reports a data line that is not a SAM record.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Record is one alignment line reduced to its routing fields.
type Record struct {
	QueryName string
	Flag      string
	Sequence  string
	Quality   string
	I5        string
	I7        string
}

// Role parses the record flag and maps it to a mate role.
func (r Record) Role() (MateRole, error) {
	f, err := strconv.ParseUint(r.Flag, 10, 16)
	if err != nil {
		return Unpaired, &FlagError{Flag: r.Flag}
	}
	return RoleOf(sam.Flags(f))
}

// Parse splits one data line. line is used for error reporting only.
func Parse(text string, line int) (Record, error) {
	f := strings.Split(strings.TrimRight(text, "\r\n"), "\t")
	if len(f) < MinFields {
		return Record{}, &ParseError{Line: line, Reason: fmt.Sprintf("want at least %d tab-separated fields, got %d", MinFields, len(f))}
	}
	return Record{
		QueryName: f[fieldQName],
		Flag:      f[fieldFlag],
		Sequence:  f[fieldSeq],
		Quality:   f[fieldQual],
		I5:        barcode.Truncate(StripTag(f[fieldI5])),
		I7:        barcode.Truncate(StripTag(f[fieldI7])),
	}, nil
}

// StripTag removes a SAM optional-field prefix such as "BC:Z:".
func StripTag(field string) string {
	if len(field) >= 5 && field[2] == ':' && field[4] == ':' {
		return field[5:]
	}
	return field
}
