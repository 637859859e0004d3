package cmd

import (
	"context"
	"os"

	"github.com/turbot/adfupgrade/internal/fperr"
)

// exitCode is set by the command handlers. A handler that produced a progress document which did
// not succeed still prints it, and the process then exits with ExitCodeRunFailed.
var exitCode int

// RunCLI executes the root command.
func RunCLI(ctx context.Context) {
	cmd, err := RootCommand(ctx)
	if err != nil {
		os.Exit(fperr.GetExitCode(err, false))
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(fperr.ExitCodeUnknownError)
	}
	os.Exit(exitCode)
}
