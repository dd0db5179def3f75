package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/evalgraph/internal/app"
	"github.com/specialistvlad/evalgraph/internal/hcl_adapter"
	"github.com/specialistvlad/evalgraph/internal/runtime"
	"github.com/specialistvlad/evalgraph/internal/yamlstate"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	// Rounds holds one decoded JSON line per round, in order.
	Rounds []map[string]any
	Err    error
	App    *app.App
}

// Step is one round of an integration test: the mutations published before
// it runs.
type Step []runtime.Mutation

// RunIntegrationTest writes files into a temporary directory, loads them as
// the application definition and runs one round per step.
func RunIntegrationTest(t *testing.T, files map[string]string, steps ...Step) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, steps...)
}

// RunIntegrationTestWithContext is RunIntegrationTest with a caller-provided
// context.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, steps ...Step) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := &app.Config{
		Paths:     []string{tmpDir},
		LogLevel:  "debug",
		LogFormat: "text",
		Rounds:    1,
	}
	if _, ok := files["state.yaml"]; ok {
		cfg.StatePath = filepath.Join(tmpDir, "state.yaml")
	}

	outBuffer := &app.SafeBuffer{}
	logBuffer := &app.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(outBuffer, logBuffer, cfg, hcl_adapter.NewLoader(), yamlstate.Loader{})
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	if len(steps) == 0 {
		steps = []Step{nil}
	}
	var runErr error
	for _, step := range steps {
		if _, err := testApp.Apply(ctx, step...); err != nil && runErr == nil {
			runErr = err
		}
	}

	if os.Getenv("EVALGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Rounds:    decodeRounds(t, outBuffer.String()),
		Err:       runErr,
		App:       testApp,
	}
}

func decodeRounds(t *testing.T, out string) []map[string]any {
	t.Helper()
	var rounds []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var round map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &round), line)
		rounds = append(rounds, round)
	}
	return rounds
}
