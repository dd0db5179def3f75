package yamlstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty-debug/ctydebug"
	"github.com/zclconf/go-cty/cty"
)

func TestParse(t *testing.T) {
	state, err := Parse([]byte(`
x: 6
state:
  label: draft
  tags: [a, b]
`))
	require.NoError(t, err)

	want := map[string]cty.Value{
		"x": cty.NumberIntVal(6),
		"state": cty.ObjectVal(map[string]cty.Value{
			"label": cty.StringVal("draft"),
			"tags":  cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
		}),
	}
	if diff := cmp.Diff(want, state, ctydebug.CmpOptions); diff != "" {
		t.Errorf("wrong state\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	state, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, state)
}

func TestParse_NotAMapping(t *testing.T) {
	_, err := Parse([]byte("- 1\n- 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state must be a mapping")
}

func TestLoadState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x: 1\n"), 0o644))

	state, err := Loader{}.LoadState(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, state["x"].RawEquals(cty.NumberIntVal(1)))

	_, err = Loader{}.LoadState(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
