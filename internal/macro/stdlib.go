package macro

// standardMacroSource is the embedded source table of macros written in
// HQL itself and loaded into every fresh Env. These are ordinary
// (defmacro ...) forms, parsed and bound exactly like user-authored ones;
// the only thing that makes them "standard" is that every Env starts with
// them already defined.
const standardMacroSource = `
(defmacro when [test & body]
  ` + "`" + `(if ,test (do ,@body) nil))

(defmacro unless [test & body]
  ` + "`" + `(if ,test nil (do ,@body)))

(defmacro while-not [test & body]
  ` + "`" + `(while (not ,test) ,@body))

(defmacro doto [x & forms]
  ` + "`" + `(let [it ,x] ,@forms it))
`
