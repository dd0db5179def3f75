package integration_tests

import (
	"testing"

	"github.com/specialistvlad/evalgraph/internal/runtime"
	"github.com/specialistvlad/evalgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// A binding with a fallback holds user edits until the expression it was
// derived from changes, then resets to the recomputed value.
func TestCoreExecution_FallbackResetsWhenMainChanges(t *testing.T) {
	t.Parallel()

	files := map[string]string{"main.hcl": `
expose "x" {
  value = 5
}

expose "draft" {
  value = "initial"
}

binding "view" {
  code     = x * 10
  fallback = "draft"
}
`}

	result := testutil.RunIntegrationTest(t, files,
		nil,
		testutil.Step{runtime.Set{Name: "draft", Value: cty.StringVal("user edit")}},
		testutil.Step{runtime.Set{Name: "x", Value: cty.NumberIntVal(6)}},
		testutil.Step{runtime.Set{Name: "draft", Value: cty.StringVal("again")}},
	)

	testutil.AssertOutput(t, result, 1, "view", float64(50))
	testutil.AssertOutput(t, result, 2, "view", "user edit")
	testutil.AssertOutput(t, result, 3, "view", float64(60))
	testutil.AssertOutput(t, result, 4, "view", "again")
}

// Setting a value equal to the current one does not re-run anything.
func TestCoreExecution_EqualSetIsNotAChange(t *testing.T) {
	t.Parallel()

	files := map[string]string{"main.hcl": `
expose "x" {
  value = 5
}

binding "double" {
  code   = x * 2
  cached = true
}
`}

	result := testutil.RunIntegrationTest(t, files,
		nil,
		testutil.Step{runtime.Set{Name: "x", Value: cty.NumberIntVal(5)}},
		testutil.Step{runtime.Set{Name: "x", Value: cty.NumberIntVal(7)}},
	)

	testutil.AssertEvaluated(t, result, 1, "double")
	testutil.AssertEvaluated(t, result, 2)
	testutil.AssertEvaluated(t, result, 3, "double")
	testutil.AssertOutput(t, result, 3, "double", map[string]any{"value": float64(14), "is_cached": false})
}

// A cached binding left alone by a change reports that its value was reused.
func TestCoreExecution_CachedBindingReportsReuse(t *testing.T) {
	t.Parallel()

	files := map[string]string{"main.hcl": `
expose "x" {
  value = 5
}

expose "y" {
  value = 1
}

binding "double" {
  code   = x * 2
  cached = true
}

binding "touch" {
  code = y
}
`}

	result := testutil.RunIntegrationTest(t, files,
		nil,
		testutil.Step{runtime.Set{Name: "y", Value: cty.NumberIntVal(2)}},
		testutil.Step{runtime.Set{Name: "x", Value: cty.NumberIntVal(6)}},
	)

	testutil.AssertOutput(t, result, 1, "double", map[string]any{"value": float64(10), "is_cached": false})
	testutil.AssertEvaluated(t, result, 2, "touch")
	testutil.AssertOutput(t, result, 2, "double", map[string]any{"value": float64(10), "is_cached": true})
	testutil.AssertEvaluated(t, result, 3, "double")
	testutil.AssertOutput(t, result, 3, "double", map[string]any{"value": float64(12), "is_cached": false})
}
