package phylodm

// IndexTable is an ordered, injective mapping between taxon names and dense
// integer indices. Keys are added one at a time and keep the order in which
// they were inserted; that order becomes the canonical row/column order of
// every matrix built over the table.
type IndexTable struct {
	keys      []string
	keysToIdx map[string]int
}

// NewIndexTable returns an empty table.
func NewIndexTable() *IndexTable {
	return &IndexTable{keysToIdx: make(map[string]int)}
}

// Len reports the number of keys in the table.
func (t *IndexTable) Len() int { return len(t.keys) }

// Keys returns the keys in canonical (insertion) order. The returned slice
// must not be mutated by the caller.
func (t *IndexTable) Keys() []string { return t.keys }

// Contains reports whether key is present.
func (t *IndexTable) Contains(key string) bool {
	_, ok := t.keysToIdx[key]
	return ok
}

// Index returns the dense index of key, or UnknownKey if key is absent.
func (t *IndexTable) Index(key string) (int, error) {
	i, ok := t.keysToIdx[key]
	if !ok {
		return 0, newErrf(UnknownKey, "key %q not in index table", key)
	}
	return i, nil
}

// AddKey inserts key and returns its new index. It returns DuplicateTaxon if
// key is already present; the name reflects the table's primary consumer
// (taxon labels) even though the structure itself is general-purpose.
func (t *IndexTable) AddKey(key string) (int, error) {
	if _, ok := t.keysToIdx[key]; ok {
		return 0, newErrf(DuplicateTaxon, "duplicate key %q", key)
	}
	idx := len(t.keys)
	t.keys = append(t.keys, key)
	t.keysToIdx[key] = idx
	return idx, nil
}

// clone returns a deep copy of t.
func (t *IndexTable) clone() *IndexTable {
	c := &IndexTable{
		keys:      append([]string(nil), t.keys...),
		keysToIdx: make(map[string]int, len(t.keysToIdx)),
	}
	for k, v := range t.keysToIdx {
		c.keysToIdx[k] = v
	}
	return c
}

// equal reports whether t and o have identical keys in identical order.
func (t *IndexTable) equal(o *IndexTable) bool {
	if len(t.keys) != len(o.keys) {
		return false
	}
	for i, k := range t.keys {
		if o.keys[i] != k {
			return false
		}
	}
	return true
}
