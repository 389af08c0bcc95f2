package barcode

import (
	"fmt"
	"strings"
)

// MaxLen is the number of barcode characters kept from a table row or a read.
const MaxLen = 8

// Separator joins the i5 and i7 halves of a dual-index key. It never occurs in a nucleotide
// barcode.
const Separator = "_"

// Selector says which index reads are used to demultiplex.
type Selector struct {
	I5 bool
	I7 bool
}

// Named selectors accepted by ParseSelector.
var (
	SelectI5   = Selector{I5: true}
	SelectI7   = Selector{I7: true}
	SelectBoth = Selector{I5: true, I7: true}
)

// ParseSelector parses "i5", "i7" or "both".
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i5":
		return SelectI5, nil
	case "i7":
		return SelectI7, nil
	case "both":
		return SelectBoth, nil
	}
	return Selector{}, &ConfigError{Field: "indices", Reason: fmt.Sprintf("%q is not one of i5, i7, both", s)}
}

func (s Selector) String() string {
	switch {
	case s.I5 && s.I7:
		return "both"
	case s.I5:
		return "i5"
	case s.I7:
		return "i7"
	}
	return "none"
}

// Validate rejects a selector with both indices switched off.
func (s Selector) Validate() error {
	if !s.I5 && !s.I7 {
		return &ConfigError{Field: "indices", Reason: "cannot use neither index to demultiplex"}
	}
	return nil
}

// TableKey builds the lookup key of a three-field table row.
func (s Selector) TableKey(i5, i7 string) string {
	switch {
	case s.I5 && s.I7:
		return i5 + Separator + i7
	case s.I5:
		return i5
	default:
		return i7
	}
}

// ObservedKey builds the key of a read from its observed barcodes. Unselected barcodes are left
// out, and so is the separator when one side ends up empty.
func (s Selector) ObservedKey(i5, i7 string) string {
	var left, right string
	if s.I5 {
		left = i5
	}
	if s.I7 {
		right = i7
	}
	return strings.Trim(left+Separator+right, Separator)
}

// Truncate cuts a barcode to MaxLen characters.
func Truncate(bc string) string {
	if len(bc) > MaxLen {
		return bc[:MaxLen]
	}
	return bc
}
