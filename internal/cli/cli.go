package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/evalgraph/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that stand in for flags, e.g.
// EVALGRAPH_LOG_LEVEL for --log-level.
const EnvPrefix = "EVALGRAPH"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command names the action requested on the command line.
type Command string

const (
	CommandEval  Command = "eval"
	CommandDeps  Command = "deps"
	CommandWatch Command = "watch"
)

// Invocation is a parsed command line.
type Invocation struct {
	Command Command
	Config  *app.Config
	// Bindings are the bindings named by deps; empty means all of them.
	Bindings []string
	// Paths are the exposing paths passed to deps --path.
	Paths []string
}

// Parse processes command-line arguments. It returns the invocation, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")

	var inv *Invocation
	var parseErr error
	capture := func(c Command) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			inv, parseErr = buildInvocation(c, cmd, args)
			return nil
		}
	}

	root := newRootCommand()
	root.AddCommand(
		newEvalCommand(capture(CommandEval)),
		newDepsCommand(capture(CommandDeps)),
		newWatchCommand(capture(CommandWatch)),
	)
	// A nil slice would make cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if parseErr != nil {
		return nil, false, parseErr
	}
	if inv == nil {
		// Help was printed, or no command was given.
		slog.Debug("No command to run, exiting.")
		return nil, true, nil
	}
	if len(inv.Config.Paths) == 0 {
		slog.Debug("No definition path provided, printing usage and exiting.")
		_ = root.Usage()
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", inv.Command)
	return inv, false, nil
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "evalgraph",
		Short: "Evaluate reactive expression graphs",
		Long: `evalgraph evaluates the bindings of an application definition: named
expressions over exposing nodes, re-evaluated only when what they read
changes.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	flags := root.PersistentFlags()
	flags.StringSliceP("file", "f", nil, "Path to a definition file or directory (repeatable).")
	flags.String("state", "", "Path to a YAML file with seed values for exposing nodes.")
	flags.StringArray("set", nil, "Override an exposing value as name=value (repeatable).")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	return root
}

func newEvalCommand(run func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [PATH...]",
		Short: "Evaluate every binding and print each round as a JSON line",
		RunE:  run,
	}
	cmd.Flags().Int("rounds", 1, "Number of rounds to run; later rounds apply follow-up mutations.")
	return cmd
}

func newDepsCommand(run func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps [BINDING...]",
		Short: "Print the dependency tree of bindings",
		RunE:  run,
	}
	cmd.Flags().StringArray("path", nil, "List the bindings reading an exposing path instead (repeatable).")
	return cmd
}

func newWatchCommand(run func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [PATH...]",
		Short: "Re-evaluate bindings as an editor publishes changes over Socket.IO",
		RunE:  run,
	}
	flags := cmd.Flags()
	flags.String("feed-url", "", "Socket.IO server URL.")
	flags.String("feed-event", "expose", "Event carrying exposing changes.")
	flags.String("feed-namespace", "/", "Socket.IO namespace.")
	flags.String("feed-ack-event", "", "Event emitted after every round; empty disables acknowledgements.")
	flags.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	return cmd
}

// newViper binds the flags of cmd, with environment variables as fallback.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

func buildInvocation(c Command, cmd *cobra.Command, args []string) (*Invocation, error) {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(v.GetString("log-format"))
	if logFormat != "text" && logFormat != "json" {
		return nil, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(v.GetString("log-level"))
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	inv := &Invocation{Command: c}
	paths := v.GetStringSlice("file")
	switch c {
	case CommandDeps:
		inv.Bindings = args
		inv.Paths, _ = cmd.Flags().GetStringArray("path")
	default:
		paths = append(paths, args...)
	}

	cfg := app.Config{
		Paths:     paths,
		StatePath: v.GetString("state"),
		Sets:      stringArray(cmd.Flags(), v, "set"),
		LogFormat: logFormat,
		LogLevel:  logLevel,
	}
	if c == CommandEval {
		cfg.Rounds = v.GetInt("rounds")
	}
	if c == CommandWatch {
		cfg.FeedURL = v.GetString("feed-url")
		cfg.FeedEvent = v.GetString("feed-event")
		cfg.FeedNamespace = v.GetString("feed-namespace")
		cfg.FeedAckEvent = v.GetString("feed-ack-event")
		cfg.HealthcheckPort = v.GetInt("healthcheck-port")
		if cfg.FeedURL == "" {
			return nil, &ExitError{Code: 2, Message: "watch requires --feed-url"}
		}
	}
	slog.Debug("CLI parameter validation complete.")

	if len(cfg.Paths) == 0 {
		inv.Config = &cfg
		return inv, nil
	}
	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	inv.Config = config
	return inv, nil
}

// stringArray reads a repeatable flag verbatim when it was given, so values
// containing commas survive; otherwise the environment is split on spaces.
func stringArray(flags *pflag.FlagSet, v *viper.Viper, name string) []string {
	if flags.Changed(name) {
		out, _ := flags.GetStringArray(name)
		return out
	}
	return v.GetStringSlice(name)
}

// IsExitError reports whether err carries an exit code.
func IsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}
