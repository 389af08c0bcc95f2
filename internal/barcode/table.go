package barcode

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/shenwei356/xopen"
)

// Entry is one configured sample.
type Entry struct {
	Label string
	I5    string
	I7    string
	Key   string
}

// Lookup maps lookup keys to sample labels. It is read-only once built and safe to share.
type Lookup struct {
	labels     map[string]string
	keys       []string
	duplicates []string
}

// Label returns the sample label of an exact key.
func (l *Lookup) Label(key string) (string, bool) {
	label, ok := l.labels[key]
	return label, ok
}

// Keys returns every key in ascending order. The slice is shared; do not modify it.
func (l *Lookup) Keys() []string { return l.keys }

// Len is the number of distinct keys.
func (l *Lookup) Len() int { return len(l.keys) }

// Duplicates lists keys that appeared on more than one row, in table order. The last row won.
func (l *Lookup) Duplicates() []string { return l.duplicates }

// Labels returns the distinct sample labels in ascending order.
func (l *Lookup) Labels() []string {
	seen := make(map[string]struct{}, len(l.labels))
	out := make([]string, 0, len(l.labels))
	for _, label := range l.labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// ParseRow interprets one non-comment table row. line is only used for error reporting.
func ParseRow(row string, line int, sel Selector) (Entry, error) {
	f := strings.Split(row, "\t")
	switch len(f) {
	case 3:
		e := Entry{Label: f[0], I7: Truncate(f[1]), I5: Truncate(f[2])}
		e.Key = sel.TableKey(e.I5, e.I7)
		return e, nil
	case 2:
		return Entry{Label: f[0], Key: Truncate(f[1])}, nil
	}
	return Entry{}, &RowError{Line: line, Fields: len(f), Row: row}
}

// Build reads an index table and returns its lookup. A malformed row fails the whole table.
func Build(r io.Reader, sel Selector) (*Lookup, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	l := &Lookup{labels: make(map[string]string)}
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		row := strings.TrimRightFunc(sc.Text(), unicode.IsSpace)
		if row == "" || row[0] == '#' {
			continue
		}
		e, err := ParseRow(row, ln, sel)
		if err != nil {
			return nil, err
		}
		if _, dup := l.labels[e.Key]; dup {
			l.duplicates = append(l.duplicates, e.Key)
		}
		l.labels[e.Key] = e.Label
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	l.keys = make([]string, 0, len(l.labels))
	for k := range l.labels {
		l.keys = append(l.keys, k)
	}
	sort.Strings(l.keys)
	return l, nil
}

// LoadTable opens an index table (plain or gzip) and builds its lookup.
func LoadTable(path string, sel Selector) (*Lookup, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("open index table %s: %w", path, err)
	}
	defer fh.Close()
	l, err := Build(fh, sel)
	if err != nil {
		return nil, fmt.Errorf("index table %s: %w", path, err)
	}
	return l, nil
}
