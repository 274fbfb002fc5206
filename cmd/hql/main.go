// Command hql is the HQL compiler CLI: lex, parse, compile, and format
// HQL source files.
package main

import (
	"os"

	"github.com/hql-lang/hql/cmd/hql/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
