package barcode

import "fmt"

// ConfigError reports an invalid or contradictory run setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RowError reports an index table row that is neither "label, i7, i5" nor "label, sequence".
type RowError struct {
	Line   int
	Fields int
	Row    string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: want 2 or 3 tab-separated fields, got %d: %q", e.Line, e.Fields, e.Row)
}
