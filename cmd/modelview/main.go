package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/modelview/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┌─┐┌┬┐┌─┐┬  ┬  ┬┬┌─┐┬ ┬
  ││││ │ ││├┤ │  └┐┌┘│├┤ │││
  ┴ ┴└─┘─┴┘└─┘┴─┘ └┘ ┴└─┘└┴┘
`

func main() {
	errors.SetColors(os.Getenv("NO_COLOR") == "")

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modelview",
		Short: "Serve model files to a browser-based viewer",
		Long: `modelview starts a small local web server that hands a model file
to the browser-based viewer and opens it in your browser.

  • One server per host and port, replaced when served again
  • Models from disk, stdin or s3://bucket/key
  • Optional live reload when the model file changes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
		codesCmd(),
	)

	return rootCmd
}

// exitCode maps an error to the process exit status. A missing model exits
// with 2 like a usage error.
func exitCode(err error) int {
	if errors.CodeOf(err) == errors.CodeModelNotFound {
		return 2
	}
	return 1
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
