package host

import (
	"github.com/knadh/koanf/v2"
)

// Store is the application's key-value configuration store. Keys are
// dot-delimited paths ("plugin::request-schema.schemas"). Values read back
// are deep copies; store plain data (maps, slices, scalars), not pointers
// to live objects.
type Store struct {
	k *koanf.Koanf
}

func NewStore() *Store {
	return &Store{k: koanf.New(".")}
}

// Get returns the value at key, or def when the key is not set.
func (s *Store) Get(key string, def any) any {
	if !s.k.Exists(key) {
		return def
	}
	return s.k.Get(key)
}

// Set stores v at key, replacing any previous value.
func (s *Store) Set(key string, v any) error {
	return s.k.Set(key, v)
}

func (s *Store) Exists(key string) bool { return s.k.Exists(key) }

// Keys lists every leaf key in the store.
func (s *Store) Keys() []string { return s.k.Keys() }
