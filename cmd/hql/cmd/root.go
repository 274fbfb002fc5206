package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Log is the shared structured logger used by every subcommand. Verbosity
// is raised to debug by the persistent --verbose flag in PersistentPreRun.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	Level(zerolog.InfoLevel).With().Timestamp().Logger()

var rootCmd = &cobra.Command{
	Use:   "hql",
	Short: "HQL compiler and toolchain",
	Long: `hql is the compiler and toolchain for HQL, a Lisp-family language
that compiles to modern JavaScript (or TypeScript, with type annotations).

The pipeline runs in eight stages: lexer, parser, macro expander, semantic
analyzer, AST-to-IR lowering, IR optimizer, codegen, and a module resolver
and bundler tying multi-file programs together.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			Log = Log.Level(zerolog.DebugLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
