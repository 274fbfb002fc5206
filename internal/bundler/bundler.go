// Package bundler implements the module resolver and bundler (S8): it
// orchestrates whole-program compilation, invoking the compiler pipeline
// once per source file, resolving and rewriting HQL imports to cached
// transpiled paths, breaking circular imports, and stitching the result
// into a dependency graph ready for an external JS bundler to pack.
package bundler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/maruel/natural"
	"github.com/rs/zerolog"

	"github.com/hql-lang/hql/internal/codegen"
	"github.com/hql-lang/hql/internal/diag"
	"github.com/hql-lang/hql/internal/ir"
	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/lowering"
	"github.com/hql-lang/hql/internal/macro"
	"github.com/hql-lang/hql/internal/optimizer"
	"github.com/hql-lang/hql/internal/parser"
	"github.com/hql-lang/hql/internal/semantic"
)

// FileResult is one source file's contribution to the bundle: its cached
// path, the code written there, and the diagnostics its compilation
// produced.
type FileResult struct {
	SourcePath  string
	CachePath   string
	FromCache   bool
	Diagnostics []*diag.Diagnostic
}

// BuildResult is the outcome of bundling from one entry file.
type BuildResult struct {
	EntryCachePath string
	Files          []FileResult
	Diagnostics    []*diag.Diagnostic
}

// Bundler holds the per-build state spec.md §5 calls out as shared
// across compilation units: the import-mapping table and the
// content-addressed cache. Everything else (the in-flight set, the
// traversal order) belongs to a single build: Build resets these shared
// fields under mu when it starts, so overlapping Build calls on the same
// Bundler interfere with each other.
type Bundler struct {
	cfg      Config
	cache    *Cache
	resolver *Resolver
	mapping  *ImportMap
	log      zerolog.Logger

	force bool

	mu       sync.Mutex
	inFlight map[string]bool
	order    []string
}

// New builds a Bundler over cfg, creating its cache directory if needed.
func New(cfg Config, log zerolog.Logger) (*Bundler, error) {
	cache, err := NewCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	mapping := NewImportMap()
	return &Bundler{
		cfg:      cfg,
		cache:    cache,
		resolver: NewResolver(cfg, mapping),
		mapping:  mapping,
		log:      log,
		inFlight: make(map[string]bool),
	}, nil
}

// SetForce makes every subsequent Build ignore cache hits and
// retranspile every file, matching the CLI's --force flag.
func (b *Bundler) SetForce(force bool) { b.force = force }

// Build compiles entryFile and every HQL file it (transitively) imports,
// rewriting import specifiers to point at cached transpiled paths.
func (b *Bundler) Build(entryFile string) (*BuildResult, error) {
	b.mu.Lock()
	b.inFlight = make(map[string]bool)
	b.order = nil
	b.mu.Unlock()

	abs, err := filepath.Abs(entryFile)
	if err != nil {
		return nil, fmt.Errorf("bundler: resolving entry path %s: %w", entryFile, err)
	}

	result := &BuildResult{Files: make([]FileResult, 0, 8)}
	cachePath, err := b.transpile(abs, result)
	if err != nil {
		return result, err
	}
	result.EntryCachePath = cachePath

	// Across files, diagnostics are reported in traversal order (entry
	// first, depth-first over imports); within a traversal level, sort
	// siblings naturally so file2.hql precedes file10.hql.
	b.sortFilesByTraversal(result)
	for _, f := range result.Files {
		result.Diagnostics = append(result.Diagnostics, f.Diagnostics...)
	}

	return result, nil
}

func (b *Bundler) sortFilesByTraversal(result *BuildResult) {
	order := make(map[string]int, len(b.order))
	for i, p := range b.order {
		order[p] = i
	}
	sort.SliceStable(result.Files, func(i, j int) bool {
		oi, oki := order[result.Files[i].SourcePath]
		oj, okj := order[result.Files[j].SourcePath]
		if oki && okj && oi != oj {
			return oi < oj
		}
		return natural.Less(result.Files[i].SourcePath, result.Files[j].SourcePath)
	})
}

// transpile compiles the file at path (if not already cached and fresh),
// recursively transpiling and rewriting its HQL imports, and returns the
// cached path the rest of the bundle should import it by.
func (b *Bundler) transpile(path string, result *BuildResult) (string, error) {
	b.mu.Lock()
	if cached, ok := b.mapping.Lookup(path); ok {
		b.mu.Unlock()
		return cached, nil
	}
	if b.inFlight[path] {
		// path is still being transpiled higher up this same call stack
		// (a circular import), and the Register call below always runs
		// before we recurse into a file's own imports, so this is
		// unreachable: resolveImport's mapping lookup (or the Lookup above)
		// has already returned the registered path. Guard
		// defensively rather than hand back a path nothing will ever write.
		b.mu.Unlock()
		return "", fmt.Errorf("bundler: circular import reached %s before its cache path was registered", path)
	}
	b.inFlight[path] = true
	b.order = append(b.order, path)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.inFlight, path)
		b.mu.Unlock()
	}()

	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("bundler: reading %s: %w", path, err)
	}

	basename := basenameNoExt(path)
	normalizedOpts := fmt.Sprintf("target=%s", b.cfg.Target)
	hash := HashSource(source, normalizedOpts)
	entry := b.cache.EntryFor(hash, basename)

	// Register the real cached path now, before recursing into path's own
	// imports below: if one of those imports resolves back to path (a
	// circular import), the mapping lookup in resolveImport must find the
	// path this call is actually going to write, not a
	// placeholder no Write call ever creates (spec.md §4.8's "a cached
	// path for that source is already registered in the import-mapping
	// table, rewrite the import to that cached path").
	b.mapping.Register(path, entry.TSPath)

	if !b.cache.NeedsRegeneration(hash, basename, b.force) {
		b.log.Debug().Str("file", path).Str("hash", hash).Msg("cache hit")
		result.Files = append(result.Files, FileResult{SourcePath: path, CachePath: entry.TSPath, FromCache: true})
		return entry.TSPath, nil
	}
	b.log.Debug().Str("file", path).Str("hash", hash).Msg("cache miss")

	prog, diags := compileToIR(path, string(source))
	fatal := hasFatalDiag(diags)

	dir := filepath.Dir(path)
	if !fatal {
		for _, n := range prog.Body {
			imp, ok := n.(*ir.Import)
			if !ok || imp.Source == "" {
				continue
			}
			rewritten, rerr := b.resolveImport(imp.Source, dir, result)
			if rerr != nil {
				diags = append(diags, &diag.Diagnostic{
					Severity: diag.SeverityError,
					Stage:    diag.StageBundler,
					Code:     "E_UNRESOLVED_IMPORT",
					Position: imp.Pos(),
					Message:  rerr.Error(),
				})
				continue
			}
			imp.Source = rewritten
		}
	}

	emitOpts := codegen.DefaultOptions()
	if b.cfg.Target == "ts" {
		emitOpts.Target = codegen.TargetTS
	}
	out := codegen.New(emitOpts).Emit(prog)
	tsText := out.Code + "\n//# sourceMappingURL=" + basename + ".ts.map\n"

	sourceMap, smErr := codegen.BuildSourceMap(basename+".hql", basename+".ts", string(source))
	if smErr != nil {
		b.log.Debug().Err(smErr).Str("file", path).Msg("source map build failed")
		sourceMap = ""
	}

	if _, werr := b.cache.Write(hash, basename, path, tsText, sourceMap); werr != nil {
		// Cache write failures are non-fatal: log and keep the in-memory
		// result, only the on-disk cache is stale for next time.
		b.log.Debug().Err(werr).Str("file", path).Msg("cache write failed")
	}

	result.Files = append(result.Files, FileResult{
		SourcePath:  path,
		CachePath:   entry.TSPath,
		Diagnostics: diags,
	})

	return entry.TSPath, nil
}

// resolveImport resolves a single HQL import specifier against dir,
// recursively transpiling the target file and returning the path the
// rewritten import should point at. Non-HQL and external specifiers pass
// through untouched.
func (b *Bundler) resolveImport(spec, dir string, result *BuildResult) (string, error) {
	if !strings.HasSuffix(spec, ".hql") {
		return spec, nil
	}

	if cached, ok := b.mapping.Lookup(spec); ok {
		return cached, nil
	}
	if cached, ok := b.mapping.Lookup(filepath.Join(dir, spec)); ok {
		return cached, nil
	}

	res := b.resolver.Resolve(spec, dir)
	if res.External {
		return spec, nil
	}

	return b.transpile(res.Path, result)
}

func compileToIR(file, source string) (*ir.Program, []*diag.Diagnostic) {
	var all []*diag.Diagnostic

	lx := lexer.New(source, lexer.WithFile(file))
	p := parser.New(lx)
	forms := p.ParseProgram()
	for _, pe := range p.Errors() {
		all = append(all, &diag.Diagnostic{
			Severity: diag.SeverityError, Stage: diag.StageParser,
			Code: pe.Code, Position: pe.Pos, Length: pe.Length, Message: pe.Message, Source: source,
		})
	}
	if hasFatalDiag(all) {
		return &ir.Program{}, all
	}

	env, macroDiags := macro.NewEnv()
	all = append(all, macroDiags...)
	expanded, expandDiags := macro.NewExpander(env).Expand(forms)
	all = append(all, expandDiags...)
	if hasFatalDiag(all) {
		return &ir.Program{}, withSourceDiag(all, source)
	}

	ctx := semantic.New(env.Names(), nil).Analyze(expanded)
	all = append(all, ctx.Diags.All()...)
	if hasFatalDiag(all) {
		return &ir.Program{}, withSourceDiag(all, source)
	}

	lw := lowering.New()
	prog := lw.Lower(expanded)
	all = append(all, lw.Diagnostics()...)
	withSourceDiag(all, source)
	if hasFatalDiag(all) {
		return prog, all
	}

	prog = optimizer.Optimize(prog)
	prog = optimizer.Trampoline(prog)

	return prog, all
}

func hasFatalDiag(items []*diag.Diagnostic) bool {
	for _, d := range items {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

func withSourceDiag(items []*diag.Diagnostic, source string) []*diag.Diagnostic {
	for _, d := range items {
		if d.Source == "" {
			d.Source = source
		}
	}
	return items
}

func basenameNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
