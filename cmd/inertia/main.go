// Command inertia runs and inspects Inertia protocol servers.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	ierrors "github.com/vango-dev/inertia/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "inertia",
		Short: "Server-side adapter for the Inertia page protocol",
		Long: `inertia serves and inspects Go applications that speak the
Inertia page protocol.

First visits get a full HTML document, client-side navigations get the
Page Object as JSON, and stale clients are told to reload.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var noColor bool
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			ierrors.DisableColors()
		}
	}

	rootCmd.AddCommand(
		serveCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			ierrors.PrintError(os.Stderr, ierrors.Classify(err))
		}
		os.Exit(1)
	}
}

// errReported is returned by commands that already printed their error.
var errReported = errors.New("error already reported")

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
