package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func round(t *testing.T, result *HarnessResult, n int) map[string]any {
	t.Helper()
	require.NoError(t, result.Err)
	require.GreaterOrEqual(t, len(result.Rounds), n, "round %d was not run", n)
	return result.Rounds[n-1]
}

// AssertOutput checks the JSON-decoded output of a binding after round n,
// counted from 1.
func AssertOutput(t *testing.T, result *HarnessResult, n int, binding string, expected any) {
	t.Helper()
	outputs, _ := round(t, result, n)["outputs"].(map[string]any)
	assert.Equal(t, expected, outputs[binding], "output of %q after round %d", binding, n)
}

// AssertEvaluated checks the exact set of bindings evaluated in round n.
func AssertEvaluated(t *testing.T, result *HarnessResult, n int, bindings ...string) {
	t.Helper()
	got, _ := round(t, result, n)["evaluated"].([]any)
	want := make([]any, 0, len(bindings))
	for _, b := range bindings {
		want = append(want, b)
	}
	assert.ElementsMatch(t, want, got, "bindings evaluated in round %d", n)
}

// AssertDiagnostic checks that binding reported a diagnostic containing
// substr in round n.
func AssertDiagnostic(t *testing.T, result *HarnessResult, n int, binding, substr string) {
	t.Helper()
	diags, _ := round(t, result, n)["diagnostics"].(map[string]any)
	list, _ := diags[binding].([]any)
	for _, d := range list {
		if s, ok := d.(string); ok && strings.Contains(s, substr) {
			return
		}
	}
	assert.Fail(t, fmt.Sprintf("no diagnostic of %q in round %d contains %q", binding, n, substr), "diagnostics: %v", diags)
}
