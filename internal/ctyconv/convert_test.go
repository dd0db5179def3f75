package ctyconv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty-debug/ctydebug"
	"github.com/zclconf/go-cty/cty"
)

func TestToCty(t *testing.T) {
	type point struct {
		X int `cty:"x"`
		Y int `cty:"y"`
	}

	testCases := []struct {
		name     string
		in       any
		expected cty.Value
	}{
		{name: "nil", in: nil, expected: cty.NullVal(cty.DynamicPseudoType)},
		{name: "string", in: "hello", expected: cty.StringVal("hello")},
		{name: "int", in: 5, expected: cty.NumberIntVal(5)},
		{name: "float", in: 1.5, expected: cty.NumberFloatVal(1.5)},
		{name: "bool", in: true, expected: cty.True},
		{name: "passthrough", in: cty.StringVal("x"), expected: cty.StringVal("x")},
		{
			name: "generic map",
			in:   map[string]any{"value": "hello", "n": 2},
			expected: cty.ObjectVal(map[string]cty.Value{
				"value": cty.StringVal("hello"),
				"n":     cty.NumberIntVal(2),
			}),
		},
		{
			name:     "mixed slice",
			in:       []any{"a", 1},
			expected: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}),
		},
		{
			name: "struct",
			in:   point{X: 1, Y: 2},
			expected: cty.ObjectVal(map[string]cty.Value{
				"x": cty.NumberIntVal(1),
				"y": cty.NumberIntVal(2),
			}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToCty(tc.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, got, ctydebug.CmpOptions); diff != "" {
				t.Errorf("wrong result\n%s", diff)
			}
		})
	}
}

func TestToCty_Unsupported(t *testing.T) {
	_, err := ToCty(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in attribute 'ch'")
}

func TestFromCty(t *testing.T) {
	testCases := []struct {
		name     string
		in       cty.Value
		expected any
	}{
		{name: "null", in: cty.NullVal(cty.String), expected: nil},
		{name: "unknown", in: cty.UnknownVal(cty.String), expected: nil},
		{name: "whole number", in: cty.NumberIntVal(50), expected: int64(50)},
		{name: "fraction", in: cty.NumberFloatVal(2.5), expected: 2.5},
		{name: "bool", in: cty.False, expected: false},
		{
			name: "object",
			in: cty.ObjectVal(map[string]cty.Value{
				"value": cty.StringVal("hello"),
				"tags":  cty.ListVal([]cty.Value{cty.StringVal("a")}),
			}),
			expected: map[string]any{"value": "hello", "tags": []any{"a"}},
		},
		{
			name:     "marked",
			in:       cty.StringVal("secret").Mark("sensitive"),
			expected: "secret",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromCty(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDecode(t *testing.T) {
	type target struct {
		Name  string `cty:"name"`
		Count int    `cty:"count"`
	}

	var out target
	err := Decode(cty.ObjectVal(map[string]cty.Value{
		"name":  cty.StringVal("axis"),
		"count": cty.StringVal("3"),
	}), &out)
	require.NoError(t, err)
	assert.Equal(t, target{Name: "axis", Count: 3}, out)

	var anyOut any
	require.NoError(t, Decode(cty.NumberIntVal(7), &anyOut))
	assert.Equal(t, int64(7), anyOut)

	assert.Error(t, Decode(cty.StringVal("x"), out))
	assert.Error(t, Decode(cty.StringVal("nope"), new(int)))
}

func TestAttributeNames(t *testing.T) {
	v := cty.ObjectVal(map[string]cty.Value{"b": cty.True, "a": cty.False})
	assert.Equal(t, []string{"a", "b"}, AttributeNames(v))
	assert.Nil(t, AttributeNames(cty.StringVal("x")))
	assert.Nil(t, AttributeNames(cty.NilVal))
}
