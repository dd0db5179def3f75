package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/evalgraph/internal/hcl_adapter"
	"github.com/specialistvlad/evalgraph/internal/runtime"
	"github.com/specialistvlad/evalgraph/internal/yamlstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const definition = `
expose "x" {
  value = 5
}

expose "input1" {
  value = { value = "hello" }
}

expose "state" {
  value = "user edit"
}

expose "axis" {
  value = "month"
}

binding "total" {
  code   = x * 10
  cached = true
}

binding "title" {
  code = "Hello ${upper(input1.value)}"
}

binding "view" {
  code     = x * 2
  fallback = "state"
  reset    = ["axis"]
}
`

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &line), l)
		lines = append(lines, line)
	}
	return lines
}

func TestRun_FirstRound(t *testing.T) {
	a, out, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, definition)}})

	require.NoError(t, a.Run(context.Background()))

	lines := decodeLines(t, out.String())
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, float64(1), line["round"])
	assert.NotEmpty(t, line["id"])
	assert.ElementsMatch(t, []any{"title", "total", "view"}, line["evaluated"])

	outputs := line["outputs"].(map[string]any)
	assert.Equal(t, map[string]any{"value": float64(50), "is_cached": false}, outputs["total"])
	assert.Equal(t, "Hello HELLO", outputs["title"])
	assert.Equal(t, float64(10), outputs["view"])
}

func TestRun_SetsAndState(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(statePath, []byte("x: 2\ninput1:\n  value: bye\n"), 0o644))

	a, out, _ := SetupAppTest(t, &Config{
		Paths:     []string{writeDefinition(t, definition)},
		StatePath: statePath,
		Sets:      []string{"x=6"},
	})
	require.NoError(t, a.Run(context.Background()))

	outputs := decodeLines(t, out.String())[0]["outputs"].(map[string]any)
	assert.Equal(t, map[string]any{"value": float64(60), "is_cached": false}, outputs["total"])
	assert.Equal(t, "Hello BYE", outputs["title"])
}

func TestRun_LaterRoundsSkipUnchangedBindings(t *testing.T) {
	a, out, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, definition)}, Rounds: 2})
	require.NoError(t, a.Run(context.Background()))

	lines := decodeLines(t, out.String())
	require.Len(t, lines, 2)
	assert.Equal(t, []any{}, lines[1]["evaluated"])
	assert.ElementsMatch(t, []any{"title", "total", "view"}, lines[1]["skipped"])

	first := lines[0]["outputs"].(map[string]any)
	second := lines[1]["outputs"].(map[string]any)
	assert.Equal(t, first["title"], second["title"])
	assert.Equal(t, first["view"], second["view"])
	assert.Equal(t, map[string]any{"value": float64(50), "is_cached": true}, second["total"])
}

func TestApply_ChangeTriggersFollowUp(t *testing.T) {
	a, _, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, definition)}})
	ctx := context.Background()

	_, err := a.Apply(ctx)
	require.NoError(t, err)

	res, err := a.Apply(ctx, runtime.Set{Name: "x", Value: cty.NumberIntVal(7)})
	require.NoError(t, err)
	assert.Equal(t, []string{"total", "view"}, res.Evaluated)
	assert.Equal(t, []string{"title"}, res.Skipped)
	require.Len(t, res.Pending, 1)
	assert.Equal(t, "axis", res.Pending[0].Target())

	native, err := runtime.Native(res.Outputs["view"])
	require.NoError(t, err)
	assert.Equal(t, int64(14), native)
}

func TestRun_DiagnosticsAreReported(t *testing.T) {
	a, out, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, `
binding "broken" {
  code = missing + 1
}
`)}})
	require.NoError(t, a.Run(context.Background()))

	line := decodeLines(t, out.String())[0]
	diags := line["diagnostics"].(map[string]any)
	require.Contains(t, diags, "broken")
	assert.Contains(t, diags["broken"].([]any)[0], "Unknown variable")
}

func TestExplain(t *testing.T) {
	a, _, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, definition)}})

	var buf bytes.Buffer
	require.NoError(t, a.Explain(context.Background(), &buf, "total"))
	assert.Contains(t, buf.String(), "total (cached)")
	assert.Contains(t, buf.String(), "x = 5")

	assert.Error(t, a.Explain(context.Background(), &buf, "nope"))
}

func TestExplainPaths(t *testing.T) {
	a, _, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, definition)}})

	var buf bytes.Buffer
	require.NoError(t, a.ExplainPaths(context.Background(), &buf, "input1.value"))
	assert.Contains(t, buf.String(), "input1.value")
	assert.Contains(t, buf.String(), "title")
	assert.NotContains(t, buf.String(), "total")
}

func TestNewApp_PanicsOnInvalidDefinition(t *testing.T) {
	path := writeDefinition(t, `binding "b" {`)
	assert.Panics(t, func() {
		NewApp(&SafeBuffer{}, &SafeBuffer{}, &Config{Paths: []string{path}}, hcl_adapter.NewLoader(), yamlstate.Loader{})
	})
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	_, err = NewConfig(Config{Paths: []string{"."}, Sets: []string{"novalue"}})
	assert.ErrorContains(t, err, "expected name=value")

	cfg, err := NewConfig(Config{Paths: []string{"."}})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Rounds)
}

func TestParseSetValue(t *testing.T) {
	testCases := []struct {
		raw  string
		want cty.Value
	}{
		{raw: "6", want: cty.NumberIntVal(6)},
		{raw: "true", want: cty.True},
		{raw: `"quoted"`, want: cty.StringVal("quoted")},
		{raw: "plain", want: cty.StringVal("plain")},
		{raw: "[1, 2]", want: cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})},
		{raw: "{", want: cty.StringVal("{")},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got := parseSetValue(tc.raw)
			assert.True(t, tc.want.RawEquals(got), "got %#v", got)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	a, _, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, definition)}})
	_, err := a.Apply(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK round=1\n", rec.Body.String())
}

func TestReadyHandler(t *testing.T) {
	a, _, _ := SetupAppTest(t, &Config{Paths: []string{writeDefinition(t, definition)}})

	rec := httptest.NewRecorder()
	a.readyHandler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := a.Apply(context.Background())
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	a.readyHandler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY round=1\n", rec.Body.String())
}

func TestReadyHandler_Fetching(t *testing.T) {
	path := writeDefinition(t, `
expose "rows" {
  value    = []
  fetching = true
}

binding "table" {
  code = rows
}
`)
	a, _, _ := SetupAppTest(t, &Config{Paths: []string{path}})
	_, err := a.Apply(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.readyHandler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT READY round=1 fetching=1\n", rec.Body.String())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger("warn", "json", &buf).Info("hidden")
	newLogger("warn", "json", &buf).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger("debug", "text", &buf).Debug("human readable", "k", "v")
	assert.Contains(t, buf.String(), "human readable")
}
