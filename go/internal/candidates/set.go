package candidates

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrDuplicateName   = errors.New("name already in list")
	ErrIndexOutOfRange = errors.New("name index out of range")
)

// MinDrawSize is the smallest candidate set a spin can be run on.
const MinDrawSize = 2

// Set is an ordered list of unique, trimmed, non-empty names.
// It is not safe for concurrent use.
type Set struct {
	names []string
}

// New builds a set from names, applying the same rules as Add.
func New(names ...string) (*Set, error) {
	s := &Set{}
	for _, name := range names {
		if err := s.Add(name); err != nil {
			return nil, fmt.Errorf("add %q: %w", name, err)
		}
	}
	return s, nil
}

// Add appends a trimmed name.
func (s *Set) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if s.Contains(name) {
		return ErrDuplicateName
	}
	s.names = append(s.names, name)
	return nil
}

// RemoveAt removes and returns the name at index i.
func (s *Set) RemoveAt(i int) (string, error) {
	if i < 0 || i >= len(s.names) {
		return "", ErrIndexOutOfRange
	}
	name := s.names[i]
	s.names = append(s.names[:i:i], s.names[i+1:]...)
	return name, nil
}

// Without returns a copy of the set with name removed, if present.
func (s *Set) Without(name string) *Set {
	out := &Set{names: make([]string, 0, len(s.names))}
	for _, n := range s.names {
		if n != name {
			out.names = append(out.names, n)
		}
	}
	return out
}

func (s *Set) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns a copy of the names in insertion order.
func (s *Set) Names() []string {
	return append([]string{}, s.names...)
}

func (s *Set) Len() int {
	return len(s.names)
}

// CanDraw reports whether the set is large enough to spin.
func (s *Set) CanDraw() bool {
	return len(s.names) >= MinDrawSize
}
