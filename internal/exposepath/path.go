// internal/exposepath/path.go
package exposepath

import (
	"fmt"
	"slices"
	"strings"
)

// String serializes the path into its canonical dotted form.
func (p *Path) String() string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range p.Segments {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}
	return sb.String()
}

// Root returns the name of the exposing node the path starts at.
func (p *Path) Root() string {
	if p == nil || len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0].Name
}

// Equal checks two paths for equality.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return slices.Equal(p.Segments, other.Segments)
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p *Path) HasPrefix(prefix *Path) bool {
	if p == nil || prefix == nil {
		return false
	}
	return isPrefix(prefix.Segments, p.Segments)
}

// Related reports whether one of a and b is a prefix of the other: a change
// at either address is visible at the other.
func Related(a, b *Path) bool {
	return a.HasPrefix(b) || b.HasPrefix(a)
}

func isPrefix(prefix, segments []Segment) bool {
	if len(prefix) > len(segments) {
		return false
	}
	for i, s := range prefix {
		if segments[i] == s {
			continue
		}
		// An unindexed final segment covers every index of that name.
		if i != len(prefix)-1 || s.HasIndex() || segments[i].Name != s.Name {
			return false
		}
	}
	return true
}
