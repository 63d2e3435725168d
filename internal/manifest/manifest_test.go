package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CommentsAndTrailingCommas(t *testing.T) {
	data := []byte(`{
  // package identity
  "name": "@pkg/a",
  "exports": {
    ".": "./mod.ts",
    "./util": "./util.ts", /* subpath */
  },
  "imports": {
    "@std/path": "jsr:@std/path@1.0.8",
    "@pkg/b": "jsr:@pkg/b@1.0.0",
    "ignored": 42,
  },
  "tasks": { "dev": "deno run -A dev.ts" },
}
`)

	m, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "@pkg/a", m.Name)
	assert.True(t, m.IsPackage())
	assert.True(t, m.HasImports())

	wantExports := []Entry{{".", "./mod.ts"}, {"./util", "./util.ts"}}
	if diff := cmp.Diff(wantExports, m.Exports.Entries()); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}

	wantImports := []Entry{
		{"@std/path", "jsr:@std/path@1.0.8"},
		{"@pkg/b", "jsr:@pkg/b@1.0.0"},
	}
	if diff := cmp.Diff(wantImports, m.Imports.Entries()); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NotAPackage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no name", `{"exports": {".": "./mod.ts"}}`},
		{"no exports", `{"name": "@pkg/a"}`},
		{"exports is a string", `{"name": "@pkg/a", "exports": "./mod.ts"}`},
		{"name is not a string", `{"name": 1, "exports": {".": "./mod.ts"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			assert.False(t, m.IsPackage())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, data := range []string{
		`{"name": "a",`,
		`[1, 2]`,
		`null`,
		``,
	} {
		_, err := Parse([]byte(data))
		assert.Error(t, err, "input %q", data)
	}
}

func TestParse_NoImports(t *testing.T) {
	m, err := Parse([]byte(`{"name": "a", "imports": null}`))
	require.NoError(t, err)
	assert.False(t, m.HasImports())
}

func TestTable(t *testing.T) {
	tbl := NewTable()
	tbl.Set("b", "1")
	tbl.Set("a", "2")
	tbl.Set("b", "3")

	assert.Equal(t, []string{"b", "a"}, tbl.Keys())
	v, ok := tbl.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	other := NewTable()
	other.Set("a", "override")
	other.Set("c", "new")
	tbl.Merge(other)
	assert.Equal(t, []string{"b", "a", "c"}, tbl.Keys())
	assert.Equal(t, map[string]string{"b": "3", "a": "override", "c": "new"}, tbl.Map())

	tbl.Delete("a")
	tbl.Delete("missing")
	assert.Equal(t, []string{"b", "c"}, tbl.Keys())
	assert.Equal(t, 2, tbl.Len())

	clone := tbl.Clone()
	clone.Set("d", "x")
	assert.False(t, tbl.Has("d"))
}
