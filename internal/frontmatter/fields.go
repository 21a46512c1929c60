package frontmatter

// Fields is an insertion-ordered front matter mapping.
//
// Order is kept so that rewritten documents list keys the way their scaffold
// did. The zero value is ready to use.
type Fields struct {
	keys   []string
	values map[string]any
}

// NewFields returns an empty mapping.
func NewFields() *Fields {
	return &Fields{values: map[string]any{}}
}

// FieldsFromMap copies m, adding keys in sorted order.
func FieldsFromMap(m map[string]any) *Fields {
	f := NewFields()
	for _, k := range sortedKeys(m) {
		f.Set(k, m[k])
	}
	return f
}

// Set stores v under k, appending k if it is new.
func (f *Fields) Set(k string, v any) {
	if f.values == nil {
		f.values = map[string]any{}
	}
	if _, ok := f.values[k]; !ok {
		f.keys = append(f.keys, k)
	}
	f.values[k] = v
}

func (f *Fields) Get(k string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.values[k]
	return v, ok
}

func (f *Fields) Has(k string) bool {
	_, ok := f.Get(k)
	return ok
}

// Delete removes k.
func (f *Fields) Delete(k string) {
	if f == nil {
		return
	}
	if _, ok := f.values[k]; !ok {
		return
	}
	delete(f.values, k)
	for i, key := range f.keys {
		if key == k {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Map returns a plain copy of the mapping.
func (f *Fields) Map() map[string]any {
	out := make(map[string]any, f.Len())
	if f == nil {
		return out
	}
	for k, v := range f.values {
		out[k] = v
	}
	return out
}
