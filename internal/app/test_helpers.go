package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/evalgraph/internal/hcl_adapter"
	"github.com/specialistvlad/evalgraph/internal/methods"
	"github.com/specialistvlad/evalgraph/internal/yamlstate"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing, returning the
// app together with its output and log buffers.
func SetupAppTest(t *testing.T, cfg *Config, modules ...methods.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}
	testApp := NewApp(outBuffer, logBuffer, cfg, hcl_adapter.NewLoader(), yamlstate.Loader{}, modules...)

	t.Cleanup(func() {
		if os.Getenv("EVALGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
