package codegen

import (
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestMain lets go-snaps prune obsolete snapshots after the package's
// tests finish, matching the "Emission determinism" testable property:
// the same source must always emit byte-identical output, so any drift
// shows up as a snapshot diff rather than a hand-maintained golden file.
func TestMain(m *testing.M) {
	code := m.Run()
	snaps.Clean(m)
	os.Exit(code)
}

func TestSnapshotFunctionDeclaration(t *testing.T) {
	r := compile(t, "(defn add [a b] (+ a b))")
	snaps.MatchSnapshot(t, r.Code)
}

func TestSnapshotClassDeclaration(t *testing.T) {
	r := compile(t, `(class Point
  (constructor [x y] (set! this.x x) (set! this.y y))
  (defn dist [] (+ this.x this.y)))`)
	snaps.MatchSnapshot(t, r.Code)
}

func TestSnapshotModuleExports(t *testing.T) {
	r := compile(t, "(defn square [x] (* x x)) (export [square])")
	snaps.MatchSnapshot(t, r.Code)
}
