package integration_tests

import (
	"testing"

	"github.com/specialistvlad/evalgraph/internal/runtime"
	"github.com/specialistvlad/evalgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

const dashboardHCL = `
expose "input1" {
  value = { value = "hello" }
}

expose "x" {
  value = 5
}

expose "axis" {
  value = "month"
}

expose "double" {
  code = x * 2
}

binding "title" {
  code = "Hello ${input1.value}"
}

binding "chart" {
  code  = double + 1
  reset = ["axis"]
}

binding "label" {
  code = axis == null ? "none" : axis
}
`

// Only bindings reading a changed exposing node, directly or through another
// exposing expression, are re-evaluated.
func TestCoreExecution_OnlyDependentsReevaluate(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": dashboardHCL},
		nil,
		testutil.Step{runtime.Merge{Name: "input1", Patch: map[string]any{"value": "bye"}}},
		testutil.Step{runtime.Set{Name: "x", Value: cty.NumberIntVal(10)}},
	)

	testutil.AssertEvaluated(t, result, 1, "chart", "label", "title")
	testutil.AssertOutput(t, result, 1, "title", "Hello hello")
	testutil.AssertOutput(t, result, 1, "chart", float64(11))

	testutil.AssertEvaluated(t, result, 2, "title")
	testutil.AssertOutput(t, result, 2, "title", "Hello bye")

	testutil.AssertEvaluated(t, result, 3, "chart")
	testutil.AssertOutput(t, result, 3, "chart", float64(21))
}

// Follow-up mutations requested in one round are applied at the start of the
// next one, never within the round that requested them.
func TestCoreExecution_FollowUpsApplyNextRound(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": dashboardHCL},
		nil,
		testutil.Step{runtime.Set{Name: "x", Value: cty.NumberIntVal(10)}},
		nil,
	)

	testutil.AssertOutput(t, result, 2, "label", "month")
	testutil.AssertEvaluated(t, result, 2, "chart")

	testutil.AssertEvaluated(t, result, 3, "label")
	testutil.AssertOutput(t, result, 3, "label", "none")
}
