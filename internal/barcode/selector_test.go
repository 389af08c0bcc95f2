package barcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{"i5", SelectI5, false},
		{"i7", SelectI7, false},
		{"both", SelectBoth, false},
		{"BOTH", SelectBoth, false},
		{"none", Selector{}, true},
		{"", Selector{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSelector(tt.in)
		if tt.wantErr {
			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr), "ParseSelector(%q)", tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, "ParseSelector(%q)", tt.in)
	}
}

func TestObservedKey(t *testing.T) {
	tests := []struct {
		sel    Selector
		i5, i7 string
		want   string
	}{
		{SelectBoth, "TTGGTTGG", "ACGTACGT", "TTGGTTGG_ACGTACGT"},
		{SelectI5, "TTGGTTGG", "ACGTACGT", "TTGGTTGG"},
		{SelectI7, "TTGGTTGG", "ACGTACGT", "ACGTACGT"},
		{SelectBoth, "", "ACGTACGT", "ACGTACGT"},
		{SelectBoth, "TTGGTTGG", "", "TTGGTTGG"},
		{SelectBoth, "", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sel.ObservedKey(tt.i5, tt.i7), "%s %q %q", tt.sel, tt.i5, tt.i7)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "ACGTACGT", Truncate("ACGTACGTAA"))
	assert.Equal(t, "ACG", Truncate("ACG"))
	assert.Equal(t, "", Truncate(""))
}
