package dedupe

// OrderedSet keeps the first occurrence of each key in insertion order.
// It is not safe for concurrent use; the merge runs on a single goroutine.
type OrderedSet struct {
	items map[string]struct{}
	order []string
}

// NewOrderedSet creates a set seeded with the provided keys.
func NewOrderedSet(keys ...string) *OrderedSet {
	s := &OrderedSet{
		items: make(map[string]struct{}, len(keys)),
		order: make([]string, 0, len(keys)),
	}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// IsSeen returns true when the key is already in the set.
func (s *OrderedSet) IsSeen(key string) bool {
	_, ok := s.items[key]
	return ok
}

// Add records key and reports whether it was new.
func (s *OrderedSet) Add(key string) bool {
	if s.IsSeen(key) {
		return false
	}
	s.items[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Len returns the number of distinct keys.
func (s *OrderedSet) Len() int {
	return len(s.order)
}

// Values returns a copy of the keys in first-seen order.
func (s *OrderedSet) Values() []string {
	return append([]string(nil), s.order...)
}

// AppendUnique appends the entries of add to base, skipping anything already
// present, and returns the result in first-seen order.
func AppendUnique(base []string, add ...string) []string {
	s := NewOrderedSet(base...)
	for _, k := range add {
		s.Add(k)
	}
	return s.Values()
}
