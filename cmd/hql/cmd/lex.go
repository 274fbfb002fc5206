package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hql-lang/hql/internal/lexer"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var (
	lexEval    string
	showPos    bool
	showType   bool
	onlyErrors bool
	lexDebug   bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an HQL file or expression",
	Long: `Tokenize (lex) an HQL program and print the resulting tokens.

This command is useful for debugging the lexer and understanding how
HQL source code is tokenized.

Examples:
  # Tokenize a script file
  hql lex main.hql

  # Tokenize an inline expression
  hql lex -e "(+ 1 2)"

  # Show token types and positions
  hql lex --show-type --show-pos main.hql

  # Show only errors (illegal tokens)
  hql lex --only-errors main.hql`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal/error tokens")
	lexCmd.Flags().BoolVar(&lexDebug, "debug", false, "dump tokens as pretty-printed JSON instead of text")
}

func lexScript(cmd *cobra.Command, args []string) error {
	var input string
	var filename string

	if lexEval != "" {
		input = lexEval
		filename = "<eval>"
	} else if len(args) == 1 {
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	} else {
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input, lexer.WithFile(filename))

	tokenCount := 0
	errorCount := 0
	var debugTokens []any

	for {
		tok := l.NextToken()

		if onlyErrors && tok.Type != lexer.ILLEGAL {
			if tok.Type == lexer.EOF {
				break
			}
			continue
		}

		tokenCount++
		if tok.Type == lexer.ILLEGAL {
			errorCount++
		}

		if lexDebug {
			debugTokens = append(debugTokens, map[string]any{
				"type":    tok.Type.String(),
				"literal": tok.Literal,
				"line":    tok.Pos.Line,
				"column":  tok.Pos.Column,
			})
		} else {
			printToken(tok)
		}

		if tok.Type == lexer.EOF {
			break
		}
	}

	if lexDebug {
		raw, err := json.Marshal(debugTokens)
		if err != nil {
			return fmt.Errorf("marshaling tokens to JSON: %w", err)
		}
		os.Stdout.Write(pretty.Pretty(raw))
	}

	for _, e := range l.Errors() {
		fmt.Fprintf(os.Stderr, "lex error: %s at %s\n", e.Message, e.Pos)
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if onlyErrors && errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}

	return nil
}

func printToken(tok lexer.Token) {
	var output string

	if showType {
		output = fmt.Sprintf("[%-12s]", tok.Type)
	}

	switch {
	case tok.Type == lexer.EOF:
		output += " EOF"
	case tok.Type == lexer.ILLEGAL:
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
	case tok.Literal == "":
		output += fmt.Sprintf(" %s", tok.Type)
	default:
		output += fmt.Sprintf(" %q", tok.Literal)
	}

	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}

	fmt.Println(output)
}
