package ir

// HelperNames is the fixed, closed set of runtime helper functions
// lowering and the optimizer may reference. Codegen emits only the
// subset actually referenced by a given bundle's output.
var HelperNames = []string{
	"__hql_get",
	"__hql_getNumeric",
	"__hql_range",
	"__hql_toSequence",
	"__hql_toIterable",
	"__hql_for_each",
	"__hql_hash_map",
	"__hql_throw",
	"__hql_deepFreeze",
	"__hql_match_obj",
	"__hql_trampoline",
	"__hql_trampoline_gen",
	"__hql_consume_async_iter",
	"__hql_lazy_seq",
	"__hql_delay",
	"__hql_get_op",
}

// helperSource holds each helper's JS source body, keyed by name, so
// codegen can prepend exactly the helpers a bundle references.
var helperSource = map[string]string{
	"__hql_get": `function __hql_get(obj, key) {
  if (obj == null) return undefined;
  if (typeof obj[key] === "function") return obj[key].bind(obj);
  return obj[key];
}`,
	"__hql_getNumeric": `function __hql_getNumeric(obj, index) {
  return obj == null ? undefined : obj[index];
}`,
	"__hql_range": `function __hql_range(a, b, c) {
  if (b === undefined) return { start: 0, end: a, step: 1 };
  if (c === undefined) return { start: a, end: b, step: 1 };
  return { start: a, end: b, step: c };
}`,
	"__hql_toSequence": `function __hql_toSequence(range) {
  var out = [];
  if (range.step > 0) {
    for (var i = range.start; i < range.end; i += range.step) out.push(i);
  } else {
    for (var i = range.start; i > range.end; i += range.step) out.push(i);
  }
  return out;
}`,
	"__hql_toIterable": `function __hql_toIterable(v) {
  if (v == null) return [];
  if (typeof v[Symbol.iterator] === "function") return v;
  if (Array.isArray(v)) return v;
  return Object.values(v);
}`,
	"__hql_for_each": `function __hql_for_each(seq, fn) {
  var i = 0;
  for (var v of __hql_toIterable(seq)) fn(v, i++);
  return null;
}`,
	"__hql_hash_map": `function __hql_hash_map() {
  var m = {};
  for (var i = 0; i < arguments.length; i += 2) m[arguments[i]] = arguments[i + 1];
  return m;
}`,
	"__hql_throw": `function __hql_throw(v) { throw v; }`,
	"__hql_deepFreeze": `function __hql_deepFreeze(obj) {
  if (obj && typeof obj === "object" && !Object.isFrozen(obj)) {
    Object.getOwnPropertyNames(obj).forEach(function (k) { __hql_deepFreeze(obj[k]); });
    Object.freeze(obj);
  }
  return obj;
}`,
	"__hql_match_obj": `function __hql_match_obj(value, pattern) {
  if (pattern == null) return true;
  for (var k in pattern) {
    if (!(k in value) || value[k] !== pattern[k]) return false;
  }
  return true;
}`,
	"__hql_trampoline": `function __hql_trampoline(thunk) {
  var result = thunk;
  while (typeof result === "function" && result.__hql_thunk) result = result();
  return result;
}`,
	"__hql_trampoline_gen": `function __hql_trampoline_gen(genFn) {
  return function () {
    var result = genFn.apply(this, arguments);
    return __hql_trampoline(result);
  };
}`,
	"__hql_consume_async_iter": `async function __hql_consume_async_iter(iter, fn) {
  for await (var v of iter) fn(v);
  return null;
}`,
	"__hql_lazy_seq": `function __hql_lazy_seq(thunk) {
  var cached, evaluated = false;
  return function () {
    if (!evaluated) { cached = thunk(); evaluated = true; }
    return cached;
  };
}`,
	"__hql_delay": `function __hql_delay(thunk) { return __hql_lazy_seq(thunk); }`,
	"__hql_get_op": `function __hql_get_op(name) {
  return __hql_operators[name];
}
var __hql_operators = {
  "+": function (a, b) { return a + b; },
  "-": function (a, b) { return b === undefined ? -a : a - b; },
  "*": function (a, b) { return a * b; },
  "/": function (a, b) { return a / b; },
  "%": function (a, b) { return a % b; },
  "=": function (a, b) { return a === b; },
  "!=": function (a, b) { return a !== b; },
  "<": function (a, b) { return a < b; },
  ">": function (a, b) { return a > b; },
  "<=": function (a, b) { return a <= b; },
  ">=": function (a, b) { return a >= b; },
  "and": function (a, b) { return a && b; },
  "or": function (a, b) { return a || b; },
  "not": function (a) { return !a; },
};`,
}

// HelperSource returns the JS source for a helper name, or "" if name is
// not one of HelperNames.
func HelperSource(name string) string { return helperSource[name] }
