package semantic

// KernelPrimitives is the fixed set of special-form names that symbol
// resolution treats as always bound. Nothing reports shadowing one: a
// (defmacro ...) with one of these names is bound like any other macro,
// and a local binding of one is accepted without a diagnostic.
var KernelPrimitives = map[string]bool{
	"quote": true, "quasiquote": true, "unquote": true, "unquote-splice": true,
	"if": true, "cond": true, "case": true, "do": true,
	"let": true, "var": true, "const": true, "set!": true,
	"fn": true, "defn": true, "class": true, "enum": true, "new": true,
	"try": true, "catch": true, "finally": true, "throw": true,
	"import": true, "export": true,
	"loop": true, "recur": true, "for": true, "while": true, "doseq": true,
	"label": true, "break": true, "continue": true,
	"async": true, "await": true, "lazy-seq": true,
	"macro": true, "defmacro": true,
}

// OperatorTable is the fixed set of operator names recognized as
// first-class references (section 4.5's __hql_get_op path) as well as
// ordinary call-position operators.
var OperatorTable = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"=": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"and": true, "or": true, "not": true,
	"bit-and": true, "bit-or": true, "bit-xor": true, "bit-not": true,
	"bit-shift-left": true, "bit-shift-right": true,
}

// IsKernelOrOperator reports whether name is one of the never-overridable
// special forms or a first-class operator name.
func IsKernelOrOperator(name string) bool {
	return KernelPrimitives[name] || OperatorTable[name]
}
