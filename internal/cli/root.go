// Package cli holds the cobra commands of the httpcall binary.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/httpcall/internal/app"
	"github.com/samvad-hq/httpcall/internal/logger"
	"github.com/spf13/cobra"
)

// Env carries the runtime dependencies shared by every command.
type Env struct {
	Runner    *app.Runner
	Log       logger.Logger
	Out       io.Writer
	Err       io.Writer
	NoColor   bool
	Version   string
	BuildTime string
}

// ExitError asks main to exit with Code without printing anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// NewRootCmd builds the command tree bound to env.
func NewRootCmd(env *Env) *cobra.Command {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	if env.Log == nil {
		env.Log = &logger.NopLogger{}
	}

	root := &cobra.Command{
		Use:   "httpcall",
		Short: "Issue one HTTP request and print the response.",
		Long: `httpcall sends a single GET, POST, PUT or DELETE request with form parameters
or a JSON body and prints the response. Parameters are sent exactly as given,
without percent-encoding.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Out)
	root.SetErr(env.Err)

	for _, m := range methods {
		root.AddCommand(newMethodCmd(env, m))
	}
	root.AddCommand(newRunCmd(env))
	root.AddCommand(newHistoryCmd(env))
	root.AddCommand(newVersionCmd(env))
	return root
}
