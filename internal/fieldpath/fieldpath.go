// Package fieldpath parses and matches the dot-separated field paths used
// in state assertions and contract field whitelists (§4.6): a path is a
// sequence of components, each either a plain name, a `*` wildcard
// (matches any field at that level), or a numeric index (matches an array
// position). A single component may not mix wildcard and index syntax.
//
// Generalized from the teacher's interface-based match-engine abstraction
// (internal/matcher.Matcher: any engine returns a set of matches over an
// input) to path-component matching: here the "engine" is always
// structural comparison, but the same split between a value type (Result)
// and a matching predicate carries over.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
)

// ComponentKind discriminates the three path-component shapes §4.6 allows.
type ComponentKind int

const (
	Name ComponentKind = iota
	Wildcard
	Index
)

// Component is one dot-separated segment of a field path.
type Component struct {
	Kind  ComponentKind
	Name  string // meaningful when Kind == Name
	Index int    // meaningful when Kind == Index
}

func (c Component) String() string {
	switch c.Kind {
	case Wildcard:
		return "*"
	case Index:
		return strconv.Itoa(c.Index)
	default:
		return c.Name
	}
}

// Path is a parsed, well-formed field path.
type Path []Component

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, ".")
}

// Parse splits raw on '.' and classifies each component. A component that
// is exactly "*" is a Wildcard; a component consisting only of digits is
// an Index; anything else must be a valid identifier-shaped Name. Mixed
// syntax within one component (e.g. "3*" or "*3") is rejected.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty field path")
	}
	segments := strings.Split(raw, ".")
	path := make(Path, 0, len(segments))
	for _, seg := range segments {
		c, err := parseComponent(seg)
		if err != nil {
			return nil, fmt.Errorf("field path %q: %w", raw, err)
		}
		path = append(path, c)
	}
	return path, nil
}

func parseComponent(seg string) (Component, error) {
	if seg == "" {
		return Component{}, fmt.Errorf("empty path component")
	}
	if seg == "*" {
		return Component{Kind: Wildcard}, nil
	}
	hasDigit, hasStar, hasOther := false, false, false
	for _, r := range seg {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '*':
			hasStar = true
		default:
			hasOther = true
		}
	}
	if hasStar {
		return Component{}, fmt.Errorf("component %q mixes wildcard syntax with other characters", seg)
	}
	if hasDigit && !hasOther {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return Component{}, fmt.Errorf("component %q looks numeric but does not parse: %w", seg, err)
		}
		return Component{Kind: Index, Index: n}, nil
	}
	if !isIdentShaped(seg) {
		return Component{}, fmt.Errorf("component %q is not a valid name, wildcard, or index", seg)
	}
	return Component{Kind: Name, Name: seg}, nil
}

func isIdentShaped(s string) bool {
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if i > 0 && !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// Matches reports whether concrete (an actual field path from collected
// data, containing no wildcards) satisfies pattern (typically a
// contract's whitelist entry or a state assertion's declared path).
// A Wildcard component in pattern matches any single Name or Index
// component in concrete at the same position; an Index component must
// match exactly.
func Matches(pattern, concrete Path) bool {
	if len(pattern) != len(concrete) {
		return false
	}
	for i, pc := range pattern {
		cc := concrete[i]
		switch pc.Kind {
		case Wildcard:
			continue
		case Index:
			if cc.Kind != Index || cc.Index != pc.Index {
				return false
			}
		default:
			if cc.Kind != Name || cc.Name != pc.Name {
				return false
			}
		}
	}
	return true
}

// Set is an ordered, de-duplicated collection of field paths, used to
// represent a contract's whitelist (§4.8) or a bound state's declared
// field set.
type Set struct {
	order []Path
	seen  map[string]bool
}

// NewSet builds a Set from raw path strings, in first-seen order.
func NewSet(raw ...string) (*Set, error) {
	s := &Set{seen: make(map[string]bool)}
	for _, r := range raw {
		p, err := Parse(r)
		if err != nil {
			return nil, err
		}
		s.Add(p)
	}
	return s, nil
}

// Add inserts p if its string form has not been seen before.
func (s *Set) Add(p Path) {
	key := p.String()
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.order = append(s.order, p)
}

// Contains reports whether any pattern in the set matches concrete.
func (s *Set) Contains(concrete Path) bool {
	for _, pattern := range s.order {
		if Matches(pattern, concrete) {
			return true
		}
	}
	return false
}

// Paths returns the set's members in first-seen order.
func (s *Set) Paths() []Path {
	out := make([]Path, len(s.order))
	copy(out, s.order)
	return out
}
