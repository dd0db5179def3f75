package integration_tests

import (
	"testing"

	"github.com/specialistvlad/evalgraph/internal/runtime"
	"github.com/specialistvlad/evalgraph/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestErrorHandling_InvalidHCLIsRejected(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": `
binding "b" {
  code = 1
`})

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "application startup panicked")
	require.Contains(t, result.Err.Error(), "failed to parse HCL file")
}

func TestErrorHandling_UnknownFallbackIsRejected(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": `
binding "b" {
  code     = 1
  fallback = "nowhere"
}
`})

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), `fallback "nowhere" is not an exposing node`)
}

func TestErrorHandling_CycleIsADiagnostic(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": `
expose "a" {
  code = b + 1
}

expose "b" {
  code = a + 1
}

binding "c" {
  code = a
}
`})

	testutil.AssertEvaluated(t, result, 1, "c")
	testutil.AssertDiagnostic(t, result, 1, "c", "Dependency has errors")
	testutil.AssertDiagnostic(t, result, 1, "c", "Dependency cycle")
}

func TestErrorHandling_DeletedDependency(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": `
expose "x" {
  value = 5
}

binding "double" {
  code = x * 2
}
`},
		nil,
		testutil.Step{runtime.Delete{Name: "x"}},
	)

	testutil.AssertEvaluated(t, result, 2, "double")
	testutil.AssertDiagnostic(t, result, 2, "double", "Unknown variable")
}

func TestErrorHandling_MergeIntoScalarFailsTheRound(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": `
expose "x" {
  value = 5
}

binding "double" {
  code = x * 2
}
`},
		nil,
		testutil.Step{runtime.Merge{Name: "x", Patch: map[string]any{"a": 1}}},
	)

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "not an object")
	require.Len(t, result.Rounds, 2, "the failed round still reports")
}
