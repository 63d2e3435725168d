package specifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw          string
		wantRegistry string
		wantScope    string
		wantName     string
		wantFullName string
		wantVersion  string
		wantSubpath  string
	}{
		{"jsr:@scope/name@1.2.3/deep/path", "jsr", "@scope", "name", "@scope/name", "1.2.3", "/deep/path"},
		{"jsr:@scope/name@1.2.3", "jsr", "@scope", "name", "@scope/name", "1.2.3", ""},
		{"jsr:name@^0.4.0", "jsr", "", "name", "name", "^0.4.0", ""},
		{"npm:chalk@5.3.0/ansi", "npm", "", "chalk", "chalk", "5.3.0", "/ansi"},
		{"jsr:@std/path@1.0.8/", "jsr", "@std", "path", "@std/path", "1.0.8", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ref, ok := Parse(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.wantRegistry, ref.Registry)
			assert.Equal(t, tt.wantScope, ref.Scope)
			assert.Equal(t, tt.wantName, ref.Name)
			assert.Equal(t, tt.wantFullName, ref.FullName)
			assert.Equal(t, tt.wantVersion, ref.Version)
			assert.Equal(t, tt.wantSubpath, ref.Subpath)
			assert.Equal(t, tt.raw, ref.FullSpecifier)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"jsr:@scope/name",
		"jsr:name",
		"jsr:@scope/name@",
		"./local/mod.ts",
		"../a/mod.ts",
		"https://deno.land/x/oak@v12.6.1/mod.ts",
		"@scope/name@1.0.0",
		"",
	} {
		t.Run(raw, func(t *testing.T) {
			_, ok := Parse(raw)
			assert.False(t, ok)
			assert.False(t, IsSpecifier(raw))
		})
	}
}

func TestRef_ImportKey(t *testing.T) {
	t.Parallel()

	ref, ok := Parse("jsr:@pkg/a@1.0.0/util")
	require.True(t, ok)
	assert.Equal(t, "@pkg/a/util", ref.ImportKey())

	ref, ok = Parse("jsr:@pkg/a@1.0.0")
	require.True(t, ok)
	assert.Equal(t, "@pkg/a", ref.ImportKey())
}

func TestRef_PURL(t *testing.T) {
	t.Parallel()

	ref, ok := Parse("jsr:@scope/name@1.2.3")
	require.True(t, ok)

	purl := ref.PURL()
	assert.True(t, strings.HasPrefix(purl, "pkg:jsr/"), purl)
	assert.Contains(t, purl, "name@1.2.3")
}

func TestScanAll(t *testing.T) {
	t.Parallel()

	text := `// shared deps
export * as a from "jsr:@pkg/a@1.0.0";
export { join } from 'jsr:@std/path@1.0.8/join';

export * as broken from "jsr:@pkg/c";
export const note = "see jsr:@pkg/b@2.0.0 for details";
`
	refs := ScanAll(text, "jsr")
	require.Len(t, refs, 3)

	assert.Equal(t, "jsr:@pkg/a@1.0.0", refs[0].FullSpecifier)
	assert.Equal(t, 2, refs[0].Line)

	assert.Equal(t, "@std/path", refs[1].FullName)
	assert.Equal(t, "/join", refs[1].Subpath)
	assert.Equal(t, 3, refs[1].Line)

	// Embedded in an unrelated literal; still reported.
	assert.Equal(t, "@pkg/b", refs[2].FullName)
	assert.Equal(t, 6, refs[2].Line)
}

func TestScanAll_OtherScheme(t *testing.T) {
	t.Parallel()

	text := `import x from "npm:left-pad@1.3.0";
import y from "jsr:@pkg/a@1.0.0";`
	refs := ScanAll(text, "npm")
	require.Len(t, refs, 1)
	assert.Equal(t, "left-pad", refs[0].FullName)
	assert.Equal(t, 1, refs[0].Line)
}
