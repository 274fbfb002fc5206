package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hql-lang/hql/internal/diag"
	"github.com/hql-lang/hql/pkg/hql"
	"github.com/spf13/cobra"
)

var (
	compileOutput  string
	compileTarget  string
	compileNoColor bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile an HQL file to JavaScript or TypeScript",
	Long: `Compile an HQL source file through the full pipeline - lexer, parser,
macro expander, semantic analyzer, lowering, optimizer, and codegen - and
write the resulting JavaScript (or, with --target ts, TypeScript) to a file.

Examples:
  # Compile a module to JavaScript next to it
  hql compile main.hql

  # Compile with a custom output path
  hql compile main.hql -o dist/main.js

  # Emit TypeScript with type annotations
  hql compile main.hql --target ts`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: <input> with .js/.ts extension)")
	compileCmd.Flags().StringVar(&compileTarget, "target", "js", "emission target: js or ts")
	compileCmd.Flags().BoolVar(&compileNoColor, "no-color", false, "disable colored diagnostics")
}

func compileScript(cmd *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	var target hql.Target
	switch strings.ToLower(compileTarget) {
	case "js":
		target = hql.TargetJS
	case "ts":
		target = hql.TargetTS
	default:
		return fmt.Errorf("unknown target %q (use js or ts)", compileTarget)
	}

	Log.Debug().Str("file", filename).Str("target", compileTarget).Msg("compiling")

	compiler := hql.New(hql.WithTarget(target), hql.WithFile(filename))
	result, compileErr := compiler.Compile(source)

	if len(result.Diagnostics) > 0 {
		fmt.Fprint(os.Stderr, diag.Format(result.Diagnostics, !compileNoColor))
		fmt.Fprintln(os.Stderr)
	}
	if compileErr != nil {
		return compileErr
	}

	outFile := compileOutput
	if outFile == "" {
		ext := ".js"
		if target == hql.TargetTS {
			ext = ".ts"
		}
		srcExt := filepath.Ext(filename)
		if srcExt != "" {
			outFile = strings.TrimSuffix(filename, srcExt) + ext
		} else {
			outFile = filename + ext
		}
	}

	if err := os.WriteFile(outFile, []byte(result.Code), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	Log.Info().Str("in", filename).Str("out", outFile).Int("helpers", len(result.ReferencedHelp)).Msg("compiled")
	fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	return nil
}
