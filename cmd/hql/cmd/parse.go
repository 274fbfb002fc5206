package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var (
	parseExpression bool
	parseDumpAST    bool
	parseDebugJSON  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse HQL source code and display the AST",
	Long: `Parse HQL source code and display the Abstract Syntax Tree (AST).

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.
Use --dump-ast to show the full AST structure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
	parseCmd.Flags().BoolVar(&parseDebugJSON, "debug", false, "dump the AST as pretty-printed JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input string

	if parseExpression {
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input = args[0]
	} else if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	p := parser.New(lexer.New(input))
	forms := p.ParseProgram()

	if len(p.Errors()) > 0 {
		fmt.Fprintf(os.Stderr, "Parser errors:\n")
		for _, e := range p.Errors() {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	switch {
	case parseDebugJSON:
		nodes := make([]any, len(forms))
		for i, f := range forms {
			nodes[i] = astNodeToJSON(f)
		}
		raw, err := json.Marshal(nodes)
		if err != nil {
			return fmt.Errorf("marshaling AST to JSON: %w", err)
		}
		os.Stdout.Write(pretty.Pretty(raw))
	case parseDumpAST:
		fmt.Println("Abstract Syntax Tree:")
		fmt.Println("=====================")
		for _, f := range forms {
			dumpASTNode(f, 0)
		}
	default:
		for _, f := range forms {
			fmt.Println(f.String())
		}
	}

	return nil
}

// astNodeToJSON renders an AST node as a JSON-marshalable value for the
// --debug dump, tagging each node with its kind so the pretty-printed
// output reads as a discriminated union rather than bare field bags.
func astNodeToJSON(node ast.Node) any {
	switch n := node.(type) {
	case *ast.Literal:
		return map[string]any{"kind": "literal", "type": literalKindName(n.Kind), "value": n.Value}
	case *ast.Symbol:
		return map[string]any{"kind": "symbol", "name": n.Name, "isKeyword": n.IsKeyword}
	case *ast.List:
		return map[string]any{"kind": "list", "elements": astNodesToJSON(n.Elements)}
	case *ast.Vector:
		return map[string]any{"kind": "vector", "elements": astNodesToJSON(n.Elements)}
	case *ast.Set:
		return map[string]any{"kind": "set", "elements": astNodesToJSON(n.Elements)}
	case *ast.Map:
		entries := make([]any, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = map[string]any{"key": astNodeToJSON(e.Key), "value": astNodeToJSON(e.Value)}
		}
		return map[string]any{"kind": "map", "entries": entries}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func astNodesToJSON(nodes []ast.Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = astNodeToJSON(n)
	}
	return out
}

func dumpASTNode(node ast.Node, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}

	switch n := node.(type) {
	case *ast.Literal:
		fmt.Printf("%sLiteral(%s): %v\n", pad, literalKindName(n.Kind), n.Value)
	case *ast.Symbol:
		kind := "Symbol"
		if n.IsKeyword {
			kind = "Keyword"
		}
		fmt.Printf("%s%s: %s\n", pad, kind, n.Name)
	case *ast.List:
		fmt.Printf("%sList (%d elements)\n", pad, len(n.Elements))
		for _, e := range n.Elements {
			dumpASTNode(e, indent+1)
		}
	case *ast.Vector:
		fmt.Printf("%sVector (%d elements)\n", pad, len(n.Elements))
		for _, e := range n.Elements {
			dumpASTNode(e, indent+1)
		}
	case *ast.Set:
		fmt.Printf("%sSet (%d elements)\n", pad, len(n.Elements))
		for _, e := range n.Elements {
			dumpASTNode(e, indent+1)
		}
	case *ast.Map:
		fmt.Printf("%sMap (%d entries)\n", pad, len(n.Entries))
		for _, entry := range n.Entries {
			fmt.Printf("%s  Key:\n", pad)
			dumpASTNode(entry.Key, indent+2)
			fmt.Printf("%s  Value:\n", pad)
			dumpASTNode(entry.Value, indent+2)
		}
	default:
		fmt.Printf("%s%T: %v\n", pad, node, node)
	}
}

func literalKindName(k ast.LiteralKind) string {
	switch k {
	case ast.NumberLit:
		return "Number"
	case ast.StringLit:
		return "String"
	case ast.BooleanLit:
		return "Boolean"
	default:
		return "Nil"
	}
}
