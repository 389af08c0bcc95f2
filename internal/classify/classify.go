// Package classify decides which sample, if any, a read belongs to.
package classify

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/maschon0/SAM-demultiplex/internal/barcode"
	"github.com/maschon0/SAM-demultiplex/internal/match"
	"github.com/maschon0/SAM-demultiplex/internal/samrec"
)

// DefaultCacheSize bounds the number of corrected barcodes remembered between reads.
const DefaultCacheSize = 100_000

// Decision is the routing outcome of one read. Key is only meaningful when the read is
// assigned; the empty string is a valid lookup key.
type Decision struct {
	Key      string
	Role     samrec.MateRole
	assigned bool
}

// Assigned routes a read to the sample with the given lookup key.
func Assigned(key string, role samrec.MateRole) Decision {
	return Decision{Key: key, Role: role, assigned: true}
}

// Unassigned routes a read to the catch-all output.
func Unassigned(role samrec.MateRole) Decision { return Decision{Role: role} }

// IsAssigned reports whether the read belongs to a sample.
func (d Decision) IsAssigned() bool { return d.assigned }

// Outcome says how a decision was reached.
type Outcome int

const (
	Exact Outcome = iota
	Corrected
	NoMatch
	BadFlag
)

func (o Outcome) String() string {
	switch o {
	case Exact:
		return "exact"
	case Corrected:
		return "corrected"
	case NoMatch:
		return "unmatched"
	}
	return "unrecognized_flag"
}

// Classifier holds the read-only lookup and the memo of previously corrected barcodes.
// It is not safe for concurrent use; the memo is per classifier.
type Classifier struct {
	lookup      *barcode.Lookup
	sel         barcode.Selector
	maxDistance int
	cache       *lru.Cache[string, string]
	hits        uint64
	misses      uint64
}

// New builds a classifier. cacheSize <= 0 disables the memo.
func New(lookup *barcode.Lookup, sel barcode.Selector, maxDistance, cacheSize int) (*Classifier, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{lookup: lookup, sel: sel, maxDistance: maxDistance}
	if cacheSize > 0 && maxDistance > 0 {
		cache, err := lru.New[string, string](cacheSize)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// Classify routes one record. A record with an unrecognized flag comes back unassigned together
// with a *samrec.FlagError so the caller can count it and carry on. A *match.LengthError is
// fatal.
func (c *Classifier) Classify(rec samrec.Record) (Decision, error) {
	d, _, err := c.ClassifyOutcome(rec)
	return d, err
}

// ClassifyOutcome is Classify that also says how the decision was reached.
func (c *Classifier) ClassifyOutcome(rec samrec.Record) (Decision, Outcome, error) {
	role, err := rec.Role()
	if err != nil {
		return Unassigned(samrec.Unpaired), BadFlag, err
	}
	key := c.sel.ObservedKey(rec.I5, rec.I7)
	if _, ok := c.lookup.Label(key); ok {
		return Assigned(key, role), Exact, nil
	}
	best, err := c.correct(key)
	if err != nil {
		return Decision{}, NoMatch, err
	}
	if best == match.Unassigned {
		return Unassigned(role), NoMatch, nil
	}
	return Assigned(best, role), Corrected, nil
}

func (c *Classifier) correct(key string) (string, error) {
	if c.cache != nil {
		if best, ok := c.cache.Get(key); ok {
			c.hits++
			return best, nil
		}
		c.misses++
	}
	best, err := match.BestMatch(key, c.lookup.Keys(), c.maxDistance)
	if err != nil {
		return match.Unassigned, err
	}
	if c.cache != nil {
		c.cache.Add(key, best)
	}
	return best, nil
}

// CacheStats returns memo hits and misses so far.
func (c *Classifier) CacheStats() (hits, misses uint64) { return c.hits, c.misses }
