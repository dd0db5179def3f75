package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/evalgraph/internal/app"
	"github.com/specialistvlad/evalgraph/internal/cli"
	"github.com/specialistvlad/evalgraph/internal/hcl_adapter"
	"github.com/specialistvlad/evalgraph/internal/yamlstate"
)

// main is the entrypoint for the evalgraph application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := cli.IsExitError(err); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Round output goes to outW and logs to logW.
func run(outW, logW io.Writer, args []string) (err error) {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical definition errors, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	evalgraphApp := app.NewApp(outW, logW, inv.Config, hcl_adapter.NewLoader(), yamlstate.Loader{})

	switch inv.Command {
	case cli.CommandDeps:
		if len(inv.Paths) > 0 {
			return evalgraphApp.ExplainPaths(ctx, outW, inv.Paths...)
		}
		return evalgraphApp.Explain(ctx, outW, inv.Bindings...)
	case cli.CommandWatch:
		return evalgraphApp.Watch(ctx)
	default:
		return evalgraphApp.Run(ctx)
	}
}
