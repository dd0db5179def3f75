// internal/exposepath/parser.go
package exposepath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// segmentRegex is used to parse a single segment of a path, e.g., `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-"
}

// Parse creates a Path from its canonical string representation.
func Parse(raw string) (*Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	p := &Path{}
	for _, segmentStr := range strings.Split(raw, ".") {
		if segmentStr == "" {
			return nil, fmt.Errorf("path contains empty segment")
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}

		name := matches[1]
		if !isValidSegmentName(name) {
			return nil, fmt.Errorf("invalid segment name: %q", name)
		}

		segment := NewSegment(name)
		if len(matches) > 2 && matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				// Unreachable due to regex `\d+`
				return nil, fmt.Errorf("internal error parsing index: %w", err)
			}
			segment.Index = index
		}
		p.Segments = append(p.Segments, segment)
	}

	return p, nil
}

// MustParse is Parse for paths known to be valid. It panics on error.
func MustParse(raw string) *Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// FromTraversal converts the static prefix of an HCL traversal into a path.
// Conversion stops at the first step that cannot be expressed as a segment:
// splats, non-literal keys, or a second index on the same segment.
func FromTraversal(tr hcl.Traversal) *Path {
	p := &Path{}
	for _, step := range tr {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			p.Segments = append(p.Segments, NewSegment(s.Name))
		case hcl.TraverseAttr:
			p.Segments = append(p.Segments, NewSegment(s.Name))
		case hcl.TraverseIndex:
			if !s.Key.IsKnown() || s.Key.IsNull() {
				return p
			}
			switch s.Key.Type() {
			case cty.String:
				p.Segments = append(p.Segments, NewSegment(s.Key.AsString()))
			case cty.Number:
				last := len(p.Segments) - 1
				if last < 0 || p.Segments[last].HasIndex() {
					return p
				}
				bf := s.Key.AsBigFloat()
				index, acc := bf.Int64()
				if acc != 0 || index < 0 {
					return p
				}
				p.Segments[last].Index = int(index)
			default:
				return p
			}
		default:
			return p
		}
	}
	return p
}
