package toolchain

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"typewatch/internal/diag"
	"typewatch/internal/snapshot"
)

// Options configures a Program.
type Options struct {
	// ModulePath is the import path prefix under which project-local
	// packages are addressed. Defaults to "project".
	ModulePath string
	// DisableCache turns the persistent diagnostics cache off.
	DisableCache bool
}

// Program is the live compiler session: one position table, a parse
// cache keyed by snapshot version, and a per-package type-check cache.
// It is the single owned mutable resource of a session and must never
// be shared across goroutines.
//
// Staleness is decided purely by snapshot versions: a path whose
// version did not move never reparses, a package whose member versions
// did not move never rechecks.
type Program struct {
	root       string // absolute, slash-normalized
	modulePath string
	src        Source

	fset     *token.FileSet
	parsed   map[string]*parsedFile
	packages map[string]*checkedPackage
	checking map[string]bool // import-cycle guard during type check
	fallback types.Importer
	dcache   *DiskCache

	reparses     int // stale reparses since the last compaction
	compactAfter int
}

// Every reparse leaves a dead token.File in the position table. Compact
// once enough of them pile up; a watch session on a hot file gets here
// in a few hours.
const defaultCompactAfter = 4096

type parsedFile struct {
	version uint64
	digest  Digest
	file    *ast.File
	diags   []diag.Diagnostic // syntax only
}

type checkedPackage struct {
	key          string // member path@version join
	digest       Digest
	pkg          *types.Package // nil for disk-cache hits and broken syntax
	diags        []diag.Diagnostic
	syntaxBroken bool
}

// NewProgram builds an empty program rooted at root. The disk cache is
// best effort: if it cannot be opened the program runs without it.
func NewProgram(root string, src Source, opts Options) *Program {
	fset := token.NewFileSet()
	p := &Program{
		root:       snapshot.NormalizePath(root),
		modulePath: opts.ModulePath,
		src:        src,
		fset:       fset,
		parsed:     make(map[string]*parsedFile),
		packages:   make(map[string]*checkedPackage),
		checking:   make(map[string]bool),
		fallback:   importer.ForCompiler(fset, "source", nil),

		compactAfter: defaultCompactAfter,
	}
	if p.modulePath == "" {
		p.modulePath = "project"
	}
	if !opts.DisableCache {
		if dc, err := OpenDiskCache(CacheApp); err == nil {
			p.dcache = dc
		}
	}
	return p
}

// FileDiagnostics returns the union of syntactic and semantic
// diagnostics attributed to path, in the order the compiler produced
// them. The surrounding package is (re)checked as needed.
func (p *Program) FileDiagnostics(path string) ([]diag.Diagnostic, error) {
	p.maybeCompact()
	norm := snapshot.NormalizePath(path)
	dir := snapshot.NormalizePath(filepath.Dir(norm))
	cp, err := p.ensurePackage(dir, norm, false)
	if err != nil {
		return nil, err
	}
	var out []diag.Diagnostic
	for _, d := range cp.diags {
		if d.Path == norm {
			out = append(out, d)
		}
	}
	return out, nil
}

// ProjectDiagnostics checks every package owned by the project and
// returns all diagnostics, package by package in root-list order.
func (p *Program) ProjectDiagnostics() ([]diag.Diagnostic, error) {
	p.maybeCompact()
	roots, err := p.src.Roots()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range roots {
		d := snapshot.NormalizePath(filepath.Dir(f))
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	var out []diag.Diagnostic
	for _, d := range dirs {
		cp, err := p.ensurePackage(d, "", false)
		if err != nil {
			return nil, err
		}
		out = append(out, cp.diags...)
	}
	return out, nil
}

// Invalidate drops every cached artefact, including the position
// table, which otherwise grows with each reparse across a long watch
// session. The next query rebuilds whatever it touches.
func (p *Program) Invalidate() {
	p.fset = token.NewFileSet()
	p.fallback = importer.ForCompiler(p.fset, "source", nil)
	p.parsed = make(map[string]*parsedFile)
	p.packages = make(map[string]*checkedPackage)
	p.checking = make(map[string]bool)
	p.reparses = 0
}

func (p *Program) maybeCompact() {
	if p.reparses >= p.compactAfter {
		p.Invalidate()
	}
}

// Forget evicts one path from the parse cache along with its package
// entry. Called when a snapshot is pruned, so a path that reappears at
// a restarted version number cannot collide with stale state.
func (p *Program) Forget(path string) {
	norm := snapshot.NormalizePath(path)
	delete(p.parsed, norm)
	delete(p.packages, snapshot.NormalizePath(filepath.Dir(norm)))
}

// parseFile returns the cached parse for path when its snapshot
// version is unchanged, otherwise reparses.
func (p *Program) parseFile(path string) (*parsedFile, error) {
	norm := snapshot.NormalizePath(path)
	content, version, ok := p.src.Lookup(norm)
	if !ok {
		return nil, fmt.Errorf("%s: snapshot unavailable", norm)
	}
	if pf, hit := p.parsed[norm]; hit && pf.version == version {
		return pf, nil
	}
	if _, hit := p.parsed[norm]; hit {
		p.reparses++
	}

	pf := &parsedFile{version: version, digest: Digest(sha256.Sum256(content))}
	file, err := parser.ParseFile(p.fset, norm, content, parser.AllErrors|parser.SkipObjectResolution)
	pf.file = file
	if err != nil {
		var list scanner.ErrorList
		if errors.As(err, &list) {
			for _, e := range list {
				if !e.Pos.IsValid() {
					continue // unattributable, dropped
				}
				pf.diags = append(pf.diags, diag.Diagnostic{
					Severity: diag.SevError,
					Code:     classifySyntax(e.Msg),
					Path:     snapshot.NormalizePath(e.Pos.Filename),
					Line:     toU32(e.Pos.Line),
					Col:      toU32(e.Pos.Column),
					Message:  e.Msg,
				})
			}
		}
	}
	p.parsed[norm] = pf
	return pf, nil
}

// ensurePackage returns the checked package for dir, reusing caches
// keyed by member versions. extraFile joins the member list when it is
// not already enumerated by the roots (single-file queries). needTypes
// forces a live *types.Package even when the disk cache could answer.
func (p *Program) ensurePackage(dir, extraFile string, needTypes bool) (*checkedPackage, error) {
	members, err := p.packageMembers(dir, extraFile)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no source files in %s", dir)
	}

	parsed := make([]*parsedFile, 0, len(members))
	var syntax []diag.Diagnostic
	broken := false
	keyParts := make([]string, 0, len(members))
	for _, m := range members {
		pf, err := p.parseFile(m)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, pf)
		syntax = append(syntax, pf.diags...)
		if len(pf.diags) > 0 {
			broken = true
		}
		keyParts = append(keyParts, fmt.Sprintf("%s@%d", m, pf.version))
	}
	key := strings.Join(keyParts, ";")

	if cp, ok := p.packages[dir]; ok && cp.key == key {
		if !needTypes || cp.pkg != nil || cp.syntaxBroken {
			return cp, nil
		}
		// The cached entry came from disk without a live types.Package;
		// fall through and materialize one.
	}

	cp := &checkedPackage{key: key, syntaxBroken: broken}
	cp.digest = p.packageDigest(dir, members, parsed, make(map[string]bool))

	if broken {
		// Семантика поверх сломанного синтаксиса только шумит.
		cp.diags = syntax
		p.packages[dir] = cp
		return cp, nil
	}

	if !needTypes && p.dcache != nil {
		var payload DiskPayload
		if ok, _ := p.dcache.Get(cp.digest, &payload); ok {
			cp.diags = p.fromDiskDiagnostics(payload.Diags)
			p.packages[dir] = cp
			return cp, nil
		}
	}

	p.checking[dir] = true
	pkg, semDiags := p.typeCheck(dir, parsed)
	delete(p.checking, dir)

	cp.pkg = pkg
	cp.diags = append(syntax, semDiags...)
	p.packages[dir] = cp

	if p.dcache != nil {
		_ = p.dcache.Put(cp.digest, &DiskPayload{
			Schema: diskCacheSchemaVersion,
			Dir:    p.relPath(dir),
			Digest: cp.digest,
			Diags:  p.toDiskDiagnostics(semDiags),
		})
	}
	return cp, nil
}

func (p *Program) typeCheck(dir string, parsed []*parsedFile) (*types.Package, []diag.Diagnostic) {
	var collected []diag.Diagnostic
	conf := types.Config{
		Importer:    &projectImporter{p: p},
		FakeImportC: true,
		Error: func(err error) {
			var te types.Error
			if !errors.As(err, &te) {
				return
			}
			if d, ok := p.positioned(te); ok {
				collected = append(collected, d)
			}
		},
	}
	files := make([]*ast.File, 0, len(parsed))
	for _, pf := range parsed {
		if pf.file != nil {
			files = append(files, pf.file)
		}
	}
	// Errors land in the handler; the returned error repeats the first one.
	pkg, _ := conf.Check(p.importPathFor(dir), p.fset, files, nil)
	return pkg, collected
}

// positioned converts a types.Error into a Diagnostic, dropping
// compiler output that carries no usable source location or points
// outside the project root (global/config-level noise that cannot be
// attributed to a user file).
func (p *Program) positioned(te types.Error) (diag.Diagnostic, bool) {
	pos := p.fset.Position(te.Pos)
	if !pos.IsValid() || pos.Filename == "" {
		return diag.Diagnostic{}, false
	}
	norm := snapshot.NormalizePath(pos.Filename)
	if norm != p.root && !strings.HasPrefix(norm, p.root+"/") {
		return diag.Diagnostic{}, false
	}
	sev := diag.SevError
	if te.Soft {
		sev = diag.SevWarning
	}
	return diag.Diagnostic{
		Severity: sev,
		Code:     classifyType(te.Msg),
		Path:     norm,
		Line:     toU32(pos.Line),
		Col:      toU32(pos.Column),
		Message:  flatten(te.Msg),
	}, true
}

// flatten collapses go/types multi-line messages (have/want blocks)
// into the single-line form the external shape requires.
func flatten(msg string) string {
	if !strings.Contains(msg, "\n") {
		return msg
	}
	return strings.Join(strings.Fields(msg), " ")
}

func (p *Program) packageMembers(dir, extraFile string) ([]string, error) {
	roots, err := p.src.Roots()
	if err != nil {
		return nil, err
	}
	var members []string
	for _, f := range roots {
		if snapshot.NormalizePath(filepath.Dir(f)) == dir {
			members = append(members, snapshot.NormalizePath(f))
		}
	}
	if extraFile != "" && !slices.Contains(members, extraFile) {
		members = append(members, extraFile)
	}
	return members, nil
}

// packageDigest combines member paths and content digests with the
// digests of project-local dependency packages, so a dependency edit
// invalidates the disk-cache entry of every package that imports it.
// Paths enter root-relative: renaming a member changes the key even
// when the bytes are identical, while relocating the whole checkout
// does not.
func (p *Program) packageDigest(dir string, members []string, parsed []*parsedFile, visiting map[string]bool) Digest {
	visiting[dir] = true
	defer delete(visiting, dir)

	var own Digest
	for i, pf := range parsed {
		name := Digest(sha256.Sum256([]byte(p.relPath(members[i]))))
		own = Combine(own, name, pf.digest)
	}

	deps := p.importDirs(dir, parsed)
	depDigests := make([]Digest, 0, len(deps))
	for _, dep := range deps {
		if visiting[dep] {
			continue
		}
		depDigests = append(depDigests, p.dirDigest(dep, visiting))
	}
	return Combine(own, depDigests...)
}

func (p *Program) dirDigest(dir string, visiting map[string]bool) Digest {
	members, err := p.packageMembers(dir, "")
	if err != nil || len(members) == 0 {
		return Digest{}
	}
	parsed := make([]*parsedFile, 0, len(members))
	for _, m := range members {
		pf, err := p.parseFile(m)
		if err != nil {
			return Digest{}
		}
		parsed = append(parsed, pf)
	}
	return p.packageDigest(dir, members, parsed, visiting)
}

// importDirs resolves project-local imports of a package to their
// directories, sorted, excluding the package itself.
func (p *Program) importDirs(dir string, parsed []*parsedFile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pf := range parsed {
		if pf.file == nil {
			continue
		}
		for _, imp := range pf.file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			depDir, ok := p.dirForImport(path)
			if !ok || depDir == dir || seen[depDir] {
				continue
			}
			seen[depDir] = true
			out = append(out, depDir)
		}
	}
	sort.Strings(out)
	return out
}

// dirForImport maps a project-local import path to its directory.
func (p *Program) dirForImport(path string) (string, bool) {
	if path == p.modulePath {
		return p.root, true
	}
	if strings.HasPrefix(path, p.modulePath+"/") {
		return p.root + "/" + strings.TrimPrefix(path, p.modulePath+"/"), true
	}
	return "", false
}

func (p *Program) importPathFor(dir string) string {
	rel, err := filepath.Rel(filepath.FromSlash(p.root), filepath.FromSlash(dir))
	if err != nil || rel == "." {
		return p.modulePath
	}
	return p.modulePath + "/" + filepath.ToSlash(rel)
}

// relPath strips the project root. Cached diagnostics carry relative
// paths so an entry survives relocating the checkout.
func (p *Program) relPath(path string) string {
	if path == p.root {
		return "."
	}
	return strings.TrimPrefix(path, p.root+"/")
}

func (p *Program) absPath(rel string) string {
	if strings.HasPrefix(rel, "/") {
		return rel
	}
	return p.root + "/" + rel
}

func (p *Program) toDiskDiagnostics(in []diag.Diagnostic) []DiskDiagnostic {
	out := make([]DiskDiagnostic, len(in))
	for i, d := range in {
		out[i] = DiskDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Path:     p.relPath(d.Path),
			Line:     d.Line,
			Col:      d.Col,
			Message:  d.Message,
		}
	}
	return out
}

func (p *Program) fromDiskDiagnostics(in []DiskDiagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(in))
	for i, d := range in {
		out[i] = diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Path:     p.absPath(d.Path),
			Line:     d.Line,
			Col:      d.Col,
			Message:  d.Message,
		}
	}
	return out
}

func toU32(v int) uint32 {
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		panic(fmt.Errorf("position overflow: %w", err))
	}
	return u
}
