package apperror

import "iter"

// ErrorMap accumulates error values per key, keeping both the order in which
// keys were first seen and the order of values within each key.
// A key is only present once it has at least one value.
//
// The zero value is ready to use. ErrorMap is not safe for concurrent use.
type ErrorMap[K comparable, V any] struct {
	keys   []K
	values map[K][]V
}

// FieldErrors maps form field names to validation messages.
type FieldErrors = ErrorMap[string, string]

// NewErrorMap returns an empty ErrorMap.
func NewErrorMap[K comparable, V any]() *ErrorMap[K, V] {
	return &ErrorMap[K, V]{values: make(map[K][]V)}
}

// NewFieldErrors returns an empty FieldErrors.
func NewFieldErrors() *FieldErrors {
	return NewErrorMap[string, string]()
}

// AddError appends value to the sequence stored under key.
func (m *ErrorMap[K, V]) AddError(key K, value V) *ErrorMap[K, V] {
	if m.values == nil {
		m.values = make(map[K][]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append(m.values[key], value)
	return m
}

// Merge appends every value of other after the values already held for the
// same key. A nil other is a no-op.
func (m *ErrorMap[K, V]) Merge(other *ErrorMap[K, V]) *ErrorMap[K, V] {
	if other == nil {
		return m
	}
	for _, key := range other.keys {
		for _, value := range other.values[key] {
			m.AddError(key, value)
		}
	}
	return m
}

// Get returns a copy of the values stored under key.
func (m *ErrorMap[K, V]) Get(key K) ([]V, bool) {
	if m == nil {
		return nil, false
	}
	values, ok := m.values[key]
	if !ok {
		return nil, false
	}
	out := make([]V, len(values))
	copy(out, values)
	return out, true
}

// Keys returns the keys in first-seen order.
func (m *ErrorMap[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates over (key, values) pairs in first-seen key order.
func (m *ErrorMap[K, V]) All() iter.Seq2[K, []V] {
	return func(yield func(K, []V) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// Len returns the number of keys.
func (m *ErrorMap[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *ErrorMap[K, V]) IsEmpty() bool {
	return m.Len() == 0
}
