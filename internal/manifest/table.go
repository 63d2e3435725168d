package manifest

// Table is an insertion-ordered string map. Overwriting a key keeps its
// original position, the way a JSON object literal behaves when a key is
// assigned twice.
type Table struct {
	keys   []string
	values map[string]string
}

// Entry is a single key/value pair of a Table.
type Entry struct {
	Key   string
	Value string
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{values: make(map[string]string)}
}

// Set assigns value to key.
func (t *Table) Set(key, value string) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value for key.
func (t *Table) Get(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Delete removes key.
func (t *Table) Delete(key string) {
	if _, ok := t.values[key]; !ok {
		return
	}
	delete(t.values, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Entries returns the entries in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, Entry{Key: k, Value: t.values[k]})
	}
	return out
}

// Merge copies every entry of other into t. Entries of other win.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		t.Set(k, other.values[k])
	}
}

// Clone returns a copy of t.
func (t *Table) Clone() *Table {
	c := NewTable()
	c.Merge(t)
	return c
}

// Map returns the entries as a plain map.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, len(t.keys))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}
