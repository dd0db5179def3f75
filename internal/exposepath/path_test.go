// internal/exposepath/path_test.go
package exposepath

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_String(t *testing.T) {
	testCases := []struct {
		name        string
		path        *Path
		expectedStr string
	}{
		{
			name:        "simple path",
			path:        &Path{Segments: []Segment{NewSegment("input1"), NewSegment("value")}},
			expectedStr: "input1.value",
		},
		{
			name: "path with indices",
			path: &Path{
				Segments: []Segment{NewSegment("table1"), NewSegmentWithIndex("data", 0), NewSegment("name")},
			},
			expectedStr: "table1.data[0].name",
		},
		{
			name:        "nil path",
			path:        nil,
			expectedStr: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.path.String())
		})
	}
}

func TestPath_RoundTrip(t *testing.T) {
	for _, raw := range []string{"x", "input1.value", "table1.data[0].name", "query-1.data[15]"} {
		t.Run(raw, func(t *testing.T) {
			p, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestPath_Equal(t *testing.T) {
	a := MustParse("a.b[0]")
	assert.True(t, a.Equal(MustParse("a.b[0]")))
	assert.False(t, a.Equal(MustParse("a.b[1]")))
	assert.False(t, a.Equal(MustParse("a.b")))
	assert.False(t, a.Equal(MustParse("a.b[0].c")))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*Path)(nil).Equal(nil))
}

func TestRelated(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected bool
	}{
		{a: "x", b: "x", expected: true},
		{a: "input1", b: "input1.value", expected: true},
		{a: "input1.value", b: "input1", expected: true},
		{a: "input1.value", b: "input1.label", expected: false},
		{a: "table1.data[0]", b: "table1.data[1]", expected: false},
		{a: "table1.data", b: "table1.data[1].name", expected: true},
		{a: "x", b: "xy", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.a+"~"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.expected, Related(MustParse(tc.a), MustParse(tc.b)))
		})
	}
}

func TestPath_Root(t *testing.T) {
	assert.Equal(t, "table1", MustParse("table1.data[0]").Root())
	assert.Equal(t, "", (*Path)(nil).Root())
}

func TestFromTraversal(t *testing.T) {
	testCases := []struct {
		expr     string
		expected string
	}{
		{expr: "x", expected: "x"},
		{expr: "input1.value", expected: "input1.value"},
		{expr: "table1.data[0].name", expected: "table1.data[0].name"},
		{expr: `obj["key"].v`, expected: "obj.key.v"},
		{expr: "grid[0][1]", expected: "grid[0]"},
		{expr: "rows[*].id", expected: "rows"},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			expr, diags := hclsyntax.ParseExpression([]byte(tc.expr), "test.hcl", hcl.InitialPos)
			require.False(t, diags.HasErrors(), diags.Error())

			vars := expr.Variables()
			require.Len(t, vars, 1)
			assert.Equal(t, tc.expected, FromTraversal(vars[0]).String())
		})
	}
}
