package fields

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// AddResult reports the outcome of registering a named field
type AddResult int

const (
	// OutOfMemory means the array could not be allocated
	OutOfMemory AddResult = iota
	// Existed means a field with that name was already registered
	Existed
	// Added means the field was created
	Added
)

func (r AddResult) String() string {
	switch r {
	case OutOfMemory:
		return "OutOfMemory"
	case Existed:
		return "Existed"
	case Added:
		return "Added"
	}
	return fmt.Sprintf("AddResult(%d)", int(r))
}

var ErrNotFound = errors.New("field not found")

// MaxLength bounds a single field allocation
const MaxLength = math.MaxInt32

// Store maps names to fixed length arrays. Arrays are never resized once
// added.
type Store struct {
	data map[string][]float64
}

func NewStore() *Store {
	return &Store{data: make(map[string][]float64)}
}

// Add registers a zeroed array of the given length under name
func (s *Store) Add(name string, length int) AddResult {
	return s.add(name, length, 0)
}

// AddNaN registers an array filled with NaN, so reads of a field that was
// never initialized are visible
func (s *Store) AddNaN(name string, length int) AddResult {
	return s.add(name, length, math.NaN())
}

func (s *Store) add(name string, length int, fill float64) (res AddResult) {
	if _, ok := s.data[name]; ok {
		return Existed
	}
	field, ok := allocate(length)
	if !ok {
		return OutOfMemory
	}
	if fill != 0 {
		for i := range field {
			field[i] = fill
		}
	}
	s.data[name] = field
	return Added
}

func allocate(length int) (field []float64, ok bool) {
	if length < 0 || length > MaxLength {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			field, ok = nil, false
		}
	}()
	return make([]float64, length), true
}

// Get returns the array stored under name, or nil
func (s *Store) Get(name string) []float64 {
	return s.data[name]
}

// MustGet returns the array stored under name or an ErrNotFound error
func (s *Store) MustGet(name string) ([]float64, error) {
	f, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return f, nil
}

func (s *Store) Has(name string) bool {
	_, ok := s.data[name]
	return ok
}

// Delete removes name, reporting whether it was present
func (s *Store) Delete(name string) bool {
	if _, ok := s.data[name]; !ok {
		return false
	}
	delete(s.data, name)
	return true
}

func (s *Store) Len() int { return len(s.data) }

// Names returns the registered names in ascending byte order
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Range calls fn for every field whose name starts with prefix, in
// ascending name order, stopping at the first error
func (s *Store) Range(prefix string, fn func(name string, field []float64) error) error {
	for _, name := range s.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := fn(name, s.data[name]); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every array
func (s *Store) Clear() {
	s.data = make(map[string][]float64)
}
