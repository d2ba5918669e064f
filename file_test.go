package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			"toml by extension",
			"app.toml",
			"[server]\nhost = \"localhost\"\nport = 8080\n",
		},
		{
			"json by extension",
			"app.json",
			`{"server": {"host": "localhost", "port": 8080}}`,
		},
		{
			"yaml by extension",
			"app.yaml",
			"server:\n  host: localhost\n  port: 8080\n",
		},
		{
			"toml by content",
			"app.conf",
			"[server]\nhost = \"localhost\"\nport = 8080\n",
		},
		{
			"json by content",
			"app.conf",
			`{"server": {"host": "localhost", "port": 8080}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, tt.file, tt.content)
			tree, err := LoadFile(path)
			require.NoError(t, err)

			s := New()
			var srv serverRec
			require.NoError(t, s.LoadSection(tree, "server", &srv))
			assert.Equal(t, "localhost", srv.Host)
			assert.Equal(t, 8080, srv.Port)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeTestFile(t, "bad.toml", "[server\nhost =")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := writeTestFile(t, "range.toml", "min = 1\nmax = 5\n")

	s := New()
	var r rangeRec
	require.NoError(t, s.LoadFromFile(path, &r))
	assert.Equal(t, rangeRec{Min: 1, Max: 5}, r)
}

func TestSaveFileRoundTrip(t *testing.T) {
	s := New()
	var src containerRec
	require.NoError(t, s.Load(map[string]any{
		"rules":   []any{map[string]any{"min": 1, "max": 2}},
		"by_name": map[string]any{"wide": map[string]any{"min": 0, "max": 9}},
		"flags":   []any{"b", "a"},
		"extras":  map[string]any{"mime": []any{"toml"}},
	}, &src))

	path := filepath.Join(t.TempDir(), "out", "state.toml")
	require.NoError(t, s.SaveFile(path, &src))

	// No temp files left behind by the atomic write.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var back containerRec
	require.NoError(t, s.LoadFromFile(path, &back))
	assert.Equal(t, src, back)
}
