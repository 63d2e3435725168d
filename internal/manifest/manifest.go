// Package manifest provides the structured view of a package manifest.
//
// Manifests are JSON with comments and trailing commas. The structured view
// is used for decisions only (name, exports, imports); it is never written
// back, since standardizing the document discards comments and formatting.
// Edits happen on the raw text (see package textblock).
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tailscale/hujson"
)

// Manifest is the decision-making view of a manifest file.
type Manifest struct {
	// Name is the package name; empty when absent or not a string.
	Name string

	// Exports maps export keys ("." or "./sub") to relative file paths.
	// Nil when the manifest has no exports object.
	Exports *Table

	// Imports holds the string-valued entries of the imports object.
	// Nil when the manifest has no imports object.
	Imports *Table
}

// HasImports reports whether the manifest declares an imports object.
func (m *Manifest) HasImports() bool {
	return m.Imports != nil
}

// IsPackage reports whether the manifest describes an importable package,
// i.e. it has both a name and an exports object.
func (m *Manifest) IsPackage() bool {
	return m.Name != "" && m.Exports != nil
}

// Parse parses manifest content. The top level must be an object.
func Parse(data []byte) (*Manifest, error) {
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(std, &top); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("parsing manifest: top level is not an object")
	}

	m := &Manifest{}
	if raw, ok := top["name"]; ok {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			m.Name = name
		}
	}
	if raw, ok := top["exports"]; ok {
		if m.Exports, err = decodeTable(raw); err != nil {
			return nil, fmt.Errorf("parsing manifest exports: %w", err)
		}
	}
	if raw, ok := top["imports"]; ok {
		if m.Imports, err = decodeTable(raw); err != nil {
			return nil, fmt.Errorf("parsing manifest imports: %w", err)
		}
	}
	return m, nil
}

// decodeTable decodes a JSON object into a Table, keeping member order and
// skipping non-string values. It returns nil when raw is not an object.
func decodeTable(raw json.RawMessage) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	t := NewTable()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		var s string
		if json.Unmarshal(value, &s) == nil {
			t.Set(key, s)
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return t, nil
}
