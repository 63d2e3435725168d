// Package textblock edits the imports block of a manifest as raw text.
//
// The structured parser drops comments and formatting, so the manifest is
// never re-serialized. Instead the file is handled as a list of lines: the
// imports object is located by brace-depth scanning and spliced in place,
// and the pre-rewrite block is kept in a delimited comment so it can be
// restored byte for byte.
package textblock

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/danieljhkim/importsync/internal/manifest"
)

const (
	importsKey = `"imports"`

	// BeginMarker opens the preserved original imports block.
	BeginMarker = "// BEGIN ORIGINAL IMPORTS"
	// EndMarker closes the preserved original imports block.
	EndMarker = "// END ORIGINAL IMPORTS"

	commentOpen   = "/*"
	commentClose  = "*/"
	commentPrefix = "// "
)

// Range is the line span of the imports object.
type Range struct {
	// KeyLine holds the "imports" key.
	KeyLine int
	// BraceStart holds the opening brace.
	BraceStart int
	// BraceEnd holds the matching closing brace.
	BraceEnd int
}

// MarkerRange is the line span of a preserved original block.
type MarkerRange struct {
	// Start and End bound the lines to remove, including a wrapping
	// block comment when there is one.
	Start int
	End   int

	// Begin and Finish are the sentinel lines themselves.
	Begin  int
	Finish int
}

// SplitLines splits text into lines. Joining the result with "\n" gives
// back text unchanged.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// LineEnding returns "\r" when line is from a CRLF file, "" otherwise.
// SplitLines leaves the carriage return on each line.
func LineEnding(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}
	return ""
}

// TerminateLines appends eol to every line in place and returns lines.
func TerminateLines(lines []string, eol string) []string {
	if eol == "" {
		return lines
	}
	for i := range lines {
		lines[i] += eol
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// FindImportsBlockRange locates the imports object: the first line with the
// "imports" key, the first "{" from there, and the line where brace depth
// returns to zero. Braces are counted per character without regard to JSON
// strings. It returns false when there is no key or the braces never balance.
func FindImportsBlockRange(lines []string) (Range, bool) {
	keyLine := -1
	keyCol := 0
	for i, line := range lines {
		if idx := strings.Index(line, importsKey); idx >= 0 {
			keyLine, keyCol = i, idx+len(importsKey)
			break
		}
	}
	if keyLine < 0 {
		return Range{}, false
	}

	braceStart, braceCol := -1, 0
	for i := keyLine; i < len(lines); i++ {
		from := 0
		if i == keyLine {
			from = keyCol
		}
		if idx := strings.IndexByte(lines[i][from:], '{'); idx >= 0 {
			braceStart, braceCol = i, from+idx
			break
		}
	}
	if braceStart < 0 {
		return Range{}, false
	}

	depth := 0
	for i := braceStart; i < len(lines); i++ {
		from := 0
		if i == braceStart {
			from = braceCol
		}
		for _, c := range lines[i][from:] {
			switch c {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				return Range{KeyLine: keyLine, BraceStart: braceStart, BraceEnd: i}, true
			}
		}
	}
	return Range{}, false
}

// FindMarkerRange locates the BEGIN/END sentinel pair. When the lines right
// around the pair open and close a block comment, they are included.
func FindMarkerRange(lines []string) (MarkerRange, bool) {
	begin := -1
	for i, line := range lines {
		if strings.Contains(line, "BEGIN ORIGINAL IMPORTS") {
			begin = i
			break
		}
	}
	if begin < 0 {
		return MarkerRange{}, false
	}

	finish := -1
	for i := begin + 1; i < len(lines); i++ {
		if strings.Contains(lines[i], "END ORIGINAL IMPORTS") {
			finish = i
			break
		}
	}
	if finish < 0 {
		return MarkerRange{}, false
	}

	r := MarkerRange{Start: begin, End: finish, Begin: begin, Finish: finish}
	if begin > 0 && strings.TrimSpace(lines[begin-1]) == commentOpen &&
		finish+1 < len(lines) && strings.TrimSpace(lines[finish+1]) == commentClose {
		r.Start = begin - 1
		r.End = finish + 1
	}
	return r, true
}

// ExtractOriginalBlock returns the lines between the sentinels with one
// leading comment prefix removed from each non-blank line.
func ExtractOriginalBlock(lines []string, r MarkerRange) []string {
	out := make([]string, 0, r.Finish-r.Begin-1)
	for _, line := range lines[r.Begin+1 : r.Finish] {
		if strings.TrimSpace(line) == "" {
			out = append(out, line)
			continue
		}
		switch {
		case strings.HasPrefix(line, commentPrefix):
			line = line[len(commentPrefix):]
		case strings.HasPrefix(line, "//"):
			line = line[2:]
		}
		out = append(out, line)
	}
	return out
}

// InsertOriginalBlockCommented inserts block at index at, wrapped in a block
// comment and the sentinel pair, with every non-blank line commented out.
// indent is applied to the wrapper and sentinel lines, eol is appended to
// them. block lines keep their own endings.
func InsertOriginalBlockCommented(lines, block []string, at int, indent, eol string) []string {
	commented := make([]string, 0, len(block)+4)
	commented = append(commented, indent+commentOpen+eol, indent+BeginMarker+eol)
	for _, line := range block {
		if strings.TrimSpace(line) == "" {
			commented = append(commented, line)
			continue
		}
		commented = append(commented, commentPrefix+line)
	}
	commented = append(commented, indent+EndMarker+eol, indent+commentClose+eol)

	return Splice(lines, at, at, commented)
}

// GenerateImportsBlock renders importMap as an "imports" member indented
// by indent, with entries one level deeper. trailingComma appends "," to
// the closing brace.
func GenerateImportsBlock(indent string, importMap *manifest.Table, trailingComma bool) []string {
	closing := "}"
	if trailingComma {
		closing += ","
	}
	if importMap == nil || importMap.Len() == 0 {
		return []string{indent + importsKey + ": {" + closing}
	}

	inner := indent + indentUnit(indent)
	entries := importMap.Entries()
	out := make([]string, 0, len(entries)+2)
	out = append(out, indent+importsKey+": {")
	for i, e := range entries {
		line := inner + quote(e.Key) + ": " + quote(e.Value)
		if i < len(entries)-1 {
			line += ","
		}
		out = append(out, line)
	}
	out = append(out, indent+closing)
	return out
}

// Splice replaces lines[start:end] with repl and returns the new slice.
func Splice(lines []string, start, end int, repl []string) []string {
	out := make([]string, 0, len(lines)-(end-start)+len(repl))
	out = append(out, lines[:start]...)
	out = append(out, repl...)
	out = append(out, lines[end:]...)
	return out
}

// LeadingWhitespace returns the indentation of line.
func LeadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// HasTrailingComma reports whether line ends with a comma, ignoring
// trailing whitespace.
func HasTrailingComma(line string) bool {
	return strings.HasSuffix(strings.TrimRight(line, " \t\r"), ",")
}

func indentUnit(indent string) string {
	switch {
	case strings.HasPrefix(indent, "\t"):
		return "\t"
	case indent == "":
		return "  "
	default:
		return indent
	}
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
