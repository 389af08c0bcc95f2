// Package match finds the sample key an observed barcode belongs to when it is not an exact hit.
//
// Keys are compared by Hamming distance. A read is only corrected when exactly one key lies
// within the allowed distance; two or more candidates make the read ambiguous and it stays
// unassigned, however much closer one of them is.
package match

import "fmt"

// Unassigned is returned by BestMatch when no single key can be chosen.
const Unassigned = "unassigned"

// LengthError reports two keys of different lengths being compared. Barcodes are cut to a fixed
// length, so this points at a table or selector mix-up rather than at a bad read.
type LengthError struct {
	Observed  string
	Candidate string
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("barcode length mismatch: observed %q (%d) vs key %q (%d)",
		e.Observed, len(e.Observed), e.Candidate, len(e.Candidate))
}

// Within reports whether a and b differ in at most d positions. Counting stops as soon as d is
// exceeded.
func Within(a, b string, d int) (bool, error) {
	if len(a) != len(b) {
		return false, &LengthError{Observed: a, Candidate: b}
	}
	if a == b {
		return true, nil
	}
	mm := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			mm++
			if mm > d {
				return false, nil
			}
		}
	}
	return true, nil
}

// Distance is the Hamming distance between a and b.
func Distance(a, b string) (int, error) {
	if len(a) != len(b) {
		return 0, &LengthError{Observed: a, Candidate: b}
	}
	mm := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			mm++
		}
	}
	return mm, nil
}

// BestMatch returns the only candidate within maxDistance of observed, or Unassigned.
//
// Zero tolerance always yields Unassigned: exact hits are resolved by the caller's lookup before
// the matcher is consulted. Candidates are scanned in the order given, which callers keep sorted.
func BestMatch(observed string, candidates []string, maxDistance int) (string, error) {
	if maxDistance <= 0 {
		return Unassigned, nil
	}
	match := Unassigned
	for _, c := range candidates {
		ok, err := Within(observed, c, maxDistance)
		if err != nil {
			return Unassigned, err
		}
		if !ok {
			continue
		}
		if match != Unassigned {
			return Unassigned, nil
		}
		match = c
	}
	return match, nil
}

// Collision is a pair of keys close enough that a read between them can be ambiguous.
type Collision struct {
	A, B     string
	Distance int
}

// Collisions lists key pairs at most 2*maxDistance apart. Reads whose barcode falls within
// maxDistance of both keys of a pair are left unassigned. Keys of different lengths are never
// compared.
func Collisions(keys []string, maxDistance int) []Collision {
	if maxDistance <= 0 {
		return nil
	}
	var out []Collision
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			d, err := Distance(keys[i], keys[j])
			if err != nil {
				continue
			}
			if d <= 2*maxDistance {
				out = append(out, Collision{A: keys[i], B: keys[j], Distance: d})
			}
		}
	}
	return out
}
