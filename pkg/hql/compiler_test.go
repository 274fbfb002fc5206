package hql

import "testing"

func TestCompileEmitsJS(t *testing.T) {
	r, err := New().Compile(`(defn add [a b] (+ a b))`)
	if err != nil {
		t.Fatalf("Compile failed: %v, diags=%v", err, r.Diagnostics)
	}
	if r.Code == "" {
		t.Fatalf("expected non-empty code")
	}
}

func TestCompileReportsUnresolvedSymbol(t *testing.T) {
	r, err := New().Compile(`(defn f [] (+ unbound-thing 1))`)
	if err == nil {
		t.Fatalf("expected error for unresolved symbol, got code:\n%s", r.Code)
	}
	if len(r.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}

func TestCompileTargetTS(t *testing.T) {
	r, err := New(WithTarget(TargetTS)).Compile(`(defn f [x:Number] x)`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if r.Code == "" {
		t.Fatalf("expected non-empty code")
	}
}

func TestCompileReportsParseError(t *testing.T) {
	r, err := New().Compile(`(defn f [a b] `)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if len(r.Diagnostics) == 0 {
		t.Fatalf("expected diagnostics for unterminated form")
	}
}
