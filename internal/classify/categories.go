package classify

import (
	"fmt"
	"strings"
)

// CategorySet is the closed, immutable set of categories a classification may return.
type CategorySet struct {
	names    []string
	members  map[string]struct{}
	fallback string
}

// NewCategorySet builds a set from names (lowercased and trimmed, order kept,
// duplicates dropped). fallback must be a member.
func NewCategorySet(names []string, fallback string) (*CategorySet, error) {
	s := &CategorySet{members: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, dup := s.members[n]; dup {
			continue
		}
		s.members[n] = struct{}{}
		s.names = append(s.names, n)
	}
	if len(s.names) == 0 {
		return nil, fmt.Errorf("category set is empty")
	}
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if _, ok := s.members[fallback]; !ok {
		return nil, fmt.Errorf("default category %q is not in the category set", fallback)
	}
	s.fallback = fallback
	return s, nil
}

// Contains reports whether name is a member. name must already be normalized.
func (s *CategorySet) Contains(name string) bool {
	_, ok := s.members[name]
	return ok
}

// Names returns the members in configured order.
func (s *CategorySet) Names() []string {
	return append([]string(nil), s.names...)
}

// Default returns the fallback category.
func (s *CategorySet) Default() string {
	return s.fallback
}
