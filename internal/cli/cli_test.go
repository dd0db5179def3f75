package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Eval(t *testing.T) {
	out := &bytes.Buffer{}
	inv, shouldExit, err := Parse([]string{
		"eval", "-f", "defs", "--set", "x=[1,2]", "--set", "name=bob",
		"--rounds", "3", "--log-level", "DEBUG", "extra.hcl",
	}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, CommandEval, inv.Command)
	assert.Equal(t, []string{"defs", "extra.hcl"}, inv.Config.Paths)
	assert.Equal(t, []string{"x=[1,2]", "name=bob"}, inv.Config.Sets)
	assert.Equal(t, 3, inv.Config.Rounds)
	assert.Equal(t, "debug", inv.Config.LogLevel)
	assert.Equal(t, "text", inv.Config.LogFormat)
}

func TestParse_Deps(t *testing.T) {
	inv, _, err := Parse([]string{"deps", "-f", "app.hcl", "total", "title", "--path", "input1.value"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, CommandDeps, inv.Command)
	assert.Equal(t, []string{"app.hcl"}, inv.Config.Paths)
	assert.Equal(t, []string{"total", "title"}, inv.Bindings)
	assert.Equal(t, []string{"input1.value"}, inv.Paths)
}

func TestParse_Watch(t *testing.T) {
	inv, _, err := Parse([]string{"watch", "app.hcl", "--feed-url", "http://localhost:3000", "--healthcheck-port", "8080"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, CommandWatch, inv.Command)
	assert.Equal(t, "http://localhost:3000", inv.Config.FeedURL)
	assert.Equal(t, "expose", inv.Config.FeedEvent)
	assert.Equal(t, 8080, inv.Config.HealthcheckPort)

	_, _, err = Parse([]string{"watch", "app.hcl"}, &bytes.Buffer{})
	exitErr, ok := IsExitError(err)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("EVALGRAPH_LOG_FORMAT", "json")
	t.Setenv("EVALGRAPH_FILE", "from-env.hcl")

	inv, _, err := Parse([]string{"eval"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "json", inv.Config.LogFormat)
	assert.Equal(t, []string{"from-env.hcl"}, inv.Config.Paths)
}

func TestParse_ShouldExit(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "help", args: []string{"-h"}},
		{name: "eval without paths", args: []string{"eval"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			inv, shouldExit, err := Parse(tc.args, out)
			require.NoError(t, err)
			assert.True(t, shouldExit)
			assert.Nil(t, inv)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{name: "unknown flag", args: []string{"eval", "--nope"}, errMsg: "unknown flag: --nope"},
		{name: "bad log format", args: []string{"eval", "a.hcl", "--log-format", "xml"}, errMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"eval", "a.hcl", "--log-level", "loud"}, errMsg: "invalid log-level"},
		{name: "bad set", args: []string{"eval", "a.hcl", "--set", "novalue"}, errMsg: "expected name=value"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, shouldExit)
			exitErr, ok := IsExitError(err)
			require.True(t, ok)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.errMsg)
		})
	}
}
