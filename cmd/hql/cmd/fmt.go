package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
	"github.com/hql-lang/hql/pkg/printer"
	"github.com/spf13/cobra"
)

var (
	fmtWrite     bool
	fmtList      bool
	fmtDiff      bool
	fmtStyle     string
	fmtIndent    int
	fmtWidth     int
	fmtUseTabs   bool
	fmtRecursive bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files or directories...]",
	Short: "Format HQL source files",
	Long: `Format HQL source files using the AST-driven printer.

The formatter reads HQL source code, parses it into an AST, and then
pretty-prints it back to source code with consistent formatting.

By default, fmt formats the files named on the command line and writes
the result to standard output. If no path is provided, it reads from
standard input.

Flags:
  -w         write result to (source) file instead of stdout
  -l         list files whose formatting differs
  -d         display diffs instead of rewriting files
  -r         process directories recursively
  --style    formatting style: expanded (default) or compact
  --indent   number of spaces per indentation level (default: 2)
  --width    target line width for the expanded style (default: 80)
  --tabs     use tabs instead of spaces for indentation

Examples:
  # Format a single file to stdout
  hql fmt main.hql

  # Format and overwrite files
  hql fmt -w a.hql b.hql

  # List all files that need formatting
  hql fmt -l -r src/

  # Show what would change
  hql fmt -d main.hql`,
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to (source) file instead of stdout")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false, "list files whose formatting differs")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "display diffs instead of rewriting files")
	fmtCmd.Flags().BoolVarP(&fmtRecursive, "recursive", "r", false, "process directories recursively")
	fmtCmd.Flags().StringVar(&fmtStyle, "style", "expanded", "formatting style: expanded or compact")
	fmtCmd.Flags().IntVar(&fmtIndent, "indent", 2, "number of spaces per indentation level")
	fmtCmd.Flags().IntVar(&fmtWidth, "width", 80, "target line width for the expanded style")
	fmtCmd.Flags().BoolVar(&fmtUseTabs, "tabs", false, "use tabs instead of spaces for indentation")
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtWrite && fmtList {
		return fmt.Errorf("cannot use -w and -l together")
	}
	if fmtWrite && fmtDiff {
		return fmt.Errorf("cannot use -w and -d together")
	}

	var style printer.Style
	switch strings.ToLower(fmtStyle) {
	case "expanded":
		style = printer.StyleExpanded
	case "compact":
		style = printer.StyleCompact
	default:
		return fmt.Errorf("unknown style: %s (use expanded or compact)", fmtStyle)
	}

	opts := printer.Options{
		Style:       style,
		Width:       fmtWidth,
		IndentWidth: fmtIndent,
		UseTabs:     fmtUseTabs,
	}

	if len(args) == 0 {
		return formatStdin(opts)
	}

	hasErrors := false
	for _, path := range args {
		if err := processPath(path, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			hasErrors = true
		}
	}

	if hasErrors {
		return fmt.Errorf("formatting failed for one or more files")
	}

	return nil
}

func processPath(path string, opts printer.Options) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		if fmtRecursive {
			return processDirectory(path, opts)
		}
		return fmt.Errorf("%s is a directory (use -r to process recursively)", path)
	}

	return formatFile(path, opts)
}

func processDirectory(dir string, opts printer.Options) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".hql") {
			return nil
		}
		if err := formatFile(path, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting %s: %v\n", path, err)
		}
		return nil
	})
}

func formatStdin(opts printer.Options) error {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("error reading stdin: %w", err)
	}

	formatted, err := formatSource(string(src), opts)
	if err != nil {
		return err
	}

	fmt.Print(formatted)
	return nil
}

func formatFile(filename string, opts printer.Options) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	original := string(src)

	formatted, err := formatSource(original, opts)
	if err != nil {
		return err
	}

	changed := original != formatted

	switch {
	case fmtList:
		if changed {
			fmt.Println(filename)
		}

	case fmtDiff:
		if changed {
			fmt.Printf("--- %s (original)\n", filename)
			fmt.Printf("+++ %s (formatted)\n", filename)
			showDiff(original, formatted)
		}

	case fmtWrite:
		if changed {
			if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("error writing file: %w", err)
			}
			Log.Debug().Str("file", filename).Msg("formatted")
		}

	default:
		fmt.Print(formatted)
	}

	return nil
}

func formatSource(source string, opts printer.Options) (string, error) {
	p := parser.New(lexer.New(source))
	forms := p.ParseProgram()

	if len(p.Errors()) > 0 {
		var errMsg strings.Builder
		errMsg.WriteString("Parse errors:\n")
		for _, e := range p.Errors() {
			errMsg.WriteString(fmt.Sprintf("  %s\n", e.Error()))
		}
		return "", fmt.Errorf("%s", errMsg.String())
	}

	return printer.New(opts).PrintProgram(forms), nil
}

// showDiff shows a simple line-by-line diff.
func showDiff(original, formatted string) {
	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")

	maxLines := len(origLines)
	if len(fmtLines) > maxLines {
		maxLines = len(fmtLines)
	}

	for i := 0; i < maxLines; i++ {
		var origLine, fmtLine string
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}

		if origLine != fmtLine {
			if origLine != "" {
				fmt.Printf("- %s\n", origLine)
			}
			if fmtLine != "" {
				fmt.Printf("+ %s\n", fmtLine)
			}
		}
	}
}
