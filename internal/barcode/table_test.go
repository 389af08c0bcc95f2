package barcode

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dualTable = `# label	i7	i5
SampleX	ACGTACGT	TTGGTTGG
SampleY	GGGGCCCCAA	AAAATTTT

SampleZ	CATCATCA	GTAGTAGT
`

func TestBuildKeysBySelector(t *testing.T) {
	tests := []struct {
		sel  Selector
		want map[string]string
	}{
		{SelectBoth, map[string]string{
			"TTGGTTGG_ACGTACGT": "SampleX",
			"AAAATTTT_GGGGCCCC": "SampleY",
			"GTAGTAGT_CATCATCA": "SampleZ",
		}},
		{SelectI7, map[string]string{
			"ACGTACGT": "SampleX",
			"GGGGCCCC": "SampleY",
			"CATCATCA": "SampleZ",
		}},
		{SelectI5, map[string]string{
			"TTGGTTGG": "SampleX",
			"AAAATTTT": "SampleY",
			"GTAGTAGT": "SampleZ",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			l, err := Build(strings.NewReader(dualTable), tt.sel)
			require.NoError(t, err)
			require.Equal(t, len(tt.want), l.Len())
			for key, label := range tt.want {
				got, ok := l.Label(key)
				assert.True(t, ok, "key %s", key)
				assert.Equal(t, label, got)
			}
		})
	}
}

func TestBuildSortsKeys(t *testing.T) {
	l, err := Build(strings.NewReader(dualTable), SelectI7)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACGTACGT", "CATCATCA", "GGGGCCCC"}, l.Keys())
	assert.Equal(t, []string{"SampleX", "SampleY", "SampleZ"}, l.Labels())
}

func TestBuildTwoFieldRowsIgnoreSelector(t *testing.T) {
	table := "A\tACGTACGTTT\nB\tTTTTGGGG\n"
	for _, sel := range []Selector{SelectI5, SelectI7, SelectBoth} {
		l, err := Build(strings.NewReader(table), sel)
		require.NoError(t, err)
		assert.Equal(t, []string{"ACGTACGT", "TTTTGGGG"}, l.Keys(), sel.String())
	}
}

func TestBuildTrailingWhitespace(t *testing.T) {
	l, err := Build(strings.NewReader("A\tACGTACGT\tTTGGTTGG \r\n"), SelectBoth)
	require.NoError(t, err)
	label, ok := l.Label("TTGGTTGG_ACGTACGT")
	require.True(t, ok)
	assert.Equal(t, "A", label)
}

func TestBuildDuplicateKeyLastWins(t *testing.T) {
	l, err := Build(strings.NewReader("first\tACGTACGT\nsecond\tACGTACGT\n"), SelectI7)
	require.NoError(t, err)
	label, _ := l.Label("ACGTACGT")
	assert.Equal(t, "second", label)
	assert.Equal(t, []string{"ACGTACGT"}, l.Duplicates())
	assert.Equal(t, 1, l.Len())
}

func TestBuildMalformedRow(t *testing.T) {
	_, err := Build(strings.NewReader("A\tACGTACGT\tTTGGTTGG\nbroken\n"), SelectBoth)
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr), "got %v", err)
	assert.Equal(t, 2, rowErr.Line)
	assert.Equal(t, 1, rowErr.Fields)

	_, err = Build(strings.NewReader("A\tB\tC\tD\n"), SelectBoth)
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 4, rowErr.Fields)
}

func TestBuildRejectsEmptySelector(t *testing.T) {
	_, err := Build(strings.NewReader(dualTable), Selector{})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "indices", cfgErr.Field)
}

func TestRoundTripExactLookup(t *testing.T) {
	l, err := Build(strings.NewReader(dualTable), SelectBoth)
	require.NoError(t, err)
	rows := [][3]string{
		{"SampleX", "ACGTACGT", "TTGGTTGG"},
		{"SampleY", "GGGGCCCCAA", "AAAATTTT"},
		{"SampleZ", "CATCATCA", "GTAGTAGT"},
	}
	for _, r := range rows {
		key := SelectBoth.ObservedKey(Truncate(r[2]), Truncate(r[1]))
		label, ok := l.Label(key)
		require.True(t, ok, key)
		assert.Equal(t, r[0], label)
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indices.tsv")
	require.NoError(t, os.WriteFile(path, []byte(dualTable), 0o644))
	l, err := LoadTable(path, SelectI7)
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.tsv"), SelectI7)
	assert.Error(t, err)
}
