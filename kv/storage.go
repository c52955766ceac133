package kv

import "github.com/indigo-web/utils/strcomp"

type Pair struct {
	Key, Value string
}

// Storage is an associative structure for (string, string) pairs. Entries keep
// their insertion order, lookup is case-insensitive and linear. On the amounts
// of headers an ordinary request carries a linear scan beats a map.
type Storage struct {
	pairs      []Pair
	valuesBuff []string
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns a Storage with pre-allocated space for n pairs.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// Add appends a new pair, keeping all the previously added values of the key.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Value returns the first value of the key, or an empty string.
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns the first value of the key, or the fallback.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

func (s *Storage) Get(key string) (value string, found bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Has tells whether at least one value of the key is present.
func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Values returns all values of the key in their original order, nil if none.
//
// WARNING: the returned slice is reused by the next Values call. Copy it for
// safe keeping.
func (s *Storage) Values(key string) []string {
	s.valuesBuff = s.valuesBuff[:0]

	for _, pair := range s.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			s.valuesBuff = append(s.valuesBuff, pair.Value)
		}
	}

	if len(s.valuesBuff) == 0 {
		return nil
	}

	return s.valuesBuff
}

// Keys returns all the distinct keys in their insertion order.
func (s *Storage) Keys() []string {
	keys := make([]string, 0, len(s.pairs))

	for _, pair := range s.pairs {
		if !contains(keys, pair.Key) {
			keys = append(keys, pair.Key)
		}
	}

	return keys
}

// Expose grants direct access to the underlying pairs.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

func (s *Storage) Len() int {
	return len(s.pairs)
}

// Clear empties the storage, keeping the underlying memory.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	return s
}

func contains(collection []string, key string) bool {
	for _, element := range collection {
		if strcomp.EqualFold(element, key) {
			return true
		}
	}

	return false
}
