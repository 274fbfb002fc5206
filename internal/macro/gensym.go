package macro

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// gensymCounter produces suffixes for hygienic renaming that are unique
// within one Expander (each Expander owns its counter). Every rename takes
// a fresh counter value, so two expansions of the same macro never collide
// even if the body introduces identically named bindings.
type gensymCounter struct{ n int }

func (g *gensymCounter) next(base string) string {
	g.n++
	return fmt.Sprintf("%s__g%d", norm.NFC.String(base), g.n)
}
