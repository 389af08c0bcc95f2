package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maschon0/SAM-demultiplex/internal/barcode"
)

func valid() Config {
	c := Default()
	c.SAM = "in.sam"
	c.Table = "indices.tsv"
	return c
}

func TestValidate(t *testing.T) {
	require.NoError(t, valid().Validate())

	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"sam", func(c *Config) { c.SAM = "" }},
		{"table", func(c *Config) { c.Table = "" }},
		{"indices", func(c *Config) { c.Indices = "neither" }},
		{"mismatch", func(c *Config) { c.Mismatch = 4 }},
		{"mismatch", func(c *Config) { c.Mismatch = -1 }},
		{"output", func(c *Config) { c.Output = "" }},
		{"cache_size", func(c *Config) { c.CacheSize = -5 }},
	}
	for _, tt := range tests {
		c := valid()
		tt.mutate(&c)
		var cfgErr *barcode.ConfigError
		err := c.Validate()
		require.True(t, errors.As(err, &cfgErr), "%s: %v", tt.field, err)
		assert.Equal(t, tt.field, cfgErr.Field)
	}
}

func TestMismatchBounds(t *testing.T) {
	for mm := 0; mm <= MaxMismatch; mm++ {
		c := valid()
		c.Mismatch = mm
		assert.NoError(t, c.Validate(), "mismatch %d", mm)
	}
}

func TestReadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sam":"lane1.sam","table":"idx.tsv","indices":"i7","mismatch":1,"paired":true}`), 0o644))
	c := Default()
	require.NoError(t, ReadFile(path, &c))
	assert.Equal(t, "lane1.sam", c.SAM)
	assert.Equal(t, "i7", c.Indices)
	assert.Equal(t, 1, c.Mismatch)
	assert.True(t, c.Paired)
	assert.Equal(t, ".", c.Output, "unset keys keep their defaults")
	sel, err := c.Selector()
	require.NoError(t, err)
	assert.Equal(t, barcode.SelectI7, sel)
}

func TestReadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte("sam = \"lane2.sam\"\ntable = \"idx.tsv\"\noutput = \"out\"\ngzip = true\ncache_size = 0\n"), 0o644))
	c := Default()
	require.NoError(t, ReadFile(path, &c))
	assert.Equal(t, "lane2.sam", c.SAM)
	assert.Equal(t, "out", c.Output)
	assert.True(t, c.Gzip)
	assert.Equal(t, 0, c.CacheSize)
	assert.Equal(t, "both", c.Indices)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	c := Default()
	assert.Error(t, ReadFile(filepath.Join(dir, "missing.json"), &c))

	bad := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sam: x\n"), 0o644))
	assert.Error(t, ReadFile(bad, &c))

	broken := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))
	assert.Error(t, ReadFile(broken, &c))
}
