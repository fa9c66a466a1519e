package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/memoria/internal/client/config"
	"github.com/spf13/cobra"
)

// appKey carries the App from PersistentPreRunE to the subcommands.
type appKey struct{}

func appFrom(cmd *cobra.Command) *App {
	return cmd.Context().Value(appKey{}).(*App)
}

// NewRootCommand builds the memoria command tree. in and out replace stdin
// and stdout, which keeps the commands testable. The returned func releases
// whatever the executed command opened.
func NewRootCommand(in io.Reader, out io.Writer) (*cobra.Command, func()) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	var app *App
	cleanup := func() {
		if app != nil {
			app.Close()
			app = nil
		}
	}

	root := &cobra.Command{
		Use:           "memoria",
		Short:         "Compose memory pages from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Resolve(cmd.Flags(), cfg); err != nil {
				return err
			}
			a, err := NewApp(cmd.Context(), cfg, in, out)
			if err != nil {
				return err
			}
			app = a
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	config.BindFlags(root.PersistentFlags(), cfg)

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newEditCommand(),
		newUploadCommand(),
		newListCommand(),
		newStatsCommand(),
	)
	return root, cleanup
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out io.Writer) int {
	root, cleanup := NewRootCommand(in, out)
	defer cleanup()

	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(out, "error:", err)
		return 1
	}
	return 0
}
