package loader

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/tools/go/packages"

	"github.com/codellm-devkit/typeextractor-go/internal/observability"
	"github.com/codellm-devkit/typeextractor-go/pkg/schema"
)

// ErrStdlibNotFound is returned by VerifyStdlib when the go command cannot
// see the standard library sources.
var ErrStdlibNotFound = errors.New("go standard library not found")

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedTypesSizes |
	packages.NeedImports | packages.NeedModule

// Unit is one type-checked compilation unit.
type Unit struct {
	Path    string
	File    *ast.File
	Package *packages.Package
}

// LoadResult contiene l'output di go/packages per i file richiesti.
type LoadResult struct {
	Root     string
	Fset     *token.FileSet
	Packages []*packages.Package
	Units    []Unit // nello stesso ordine di Program.Files
	Problems []schema.Issue
}

// Unit returns the unit for path, matched on the cleaned absolute path or,
// failing that, on the file base name.
func (r *LoadResult) Unit(path string) (Unit, bool) {
	if abs, err := filepath.Abs(path); err == nil {
		for _, u := range r.Units {
			if samePath(u.Path, abs) {
				return u, true
			}
		}
	}
	for _, u := range r.Units {
		if filepath.Base(u.Path) == path {
			return u, true
		}
	}
	return Unit{}, false
}

// LoadTyped carica e fa il type-check dei pacchetti che contengono i file del programma.
func LoadTyped(ctx context.Context, prog *Program, opts Options) (*LoadResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "loader.LoadTyped",
		trace.WithAttributes(attribute.Int("files", len(prog.Files))))
	defer span.End()

	if len(prog.Files) == 0 {
		return nil, fmt.Errorf("no Go files to load")
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     prog.Root,
		Tests:   opts.IncludeTest,
		Env:     os.Environ(),
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.BuildTags, ",")}
	}

	patterns := make([]string, 0, len(prog.Files))
	for _, f := range prog.Files {
		patterns = append(patterns, "file="+f)
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("packages.Load: %w", err)
	}

	res := &LoadResult{Root: prog.Root, Packages: pkgs}
	if len(pkgs) > 0 {
		res.Fset = pkgs[0].Fset
	} else {
		res.Fset = token.NewFileSet()
	}

	byFile := indexSyntax(pkgs)
	for _, f := range prog.Files {
		u, ok := lookup(byFile, f)
		if !ok {
			res.Problems = append(res.Problems, schema.Issue{
				Severity: "warning",
				Code:     "FILE_NOT_LOADED",
				Message:  fmt.Sprintf("%s is not part of any loaded package (build constraints?)", f),
			})
			continue
		}
		res.Units = append(res.Units, u)
	}

	for _, p := range pkgs {
		for _, e := range p.Errors {
			res.Problems = append(res.Problems, issueOf(e))
		}
	}
	slog.Debug("packages loaded", "packages", len(pkgs), "units", len(res.Units), "problems", len(res.Problems))
	return res, nil
}

// indexSyntax mappa il nome fisico di ogni file al suo *ast.File. A parità di
// file si preferisce la variante non di test del pacchetto.
func indexSyntax(pkgs []*packages.Package) map[string]Unit {
	out := map[string]Unit{}
	for _, p := range pkgs {
		if p == nil {
			continue
		}
		for _, f := range p.Syntax {
			tf := p.Fset.File(f.Pos())
			if tf == nil {
				continue
			}
			name := canonical(tf.Name())
			if prev, ok := out[name]; ok && !isTestVariant(prev.Package) {
				continue
			}
			out[name] = Unit{Path: tf.Name(), File: f, Package: p}
		}
	}
	return out
}

func lookup(byFile map[string]Unit, path string) (Unit, bool) {
	u, ok := byFile[canonical(path)]
	return u, ok
}

func isTestVariant(p *packages.Package) bool {
	return p != nil && p.ID != p.PkgPath
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return filepath.Clean(path)
}

func samePath(a, b string) bool {
	return canonical(a) == canonical(b)
}

func issueOf(e packages.Error) schema.Issue {
	code := "LOAD_ERROR"
	switch e.Kind {
	case packages.ParseError:
		code = "PARSE_ERROR"
	case packages.TypeError:
		code = "TYPE_ERROR"
	case packages.ListError:
		code = "LIST_ERROR"
	}
	iss := schema.Issue{Severity: "error", Code: code, Message: e.Msg}
	if p, ok := parsePos(e.Pos); ok {
		iss.Position = &p
	}
	return iss
}

// parsePos interpreta "file:line:col" o "file:line" come prodotto da go/packages.
func parsePos(s string) (schema.Position, bool) {
	if s == "" || s == "-" {
		return schema.Position{}, false
	}
	parts := strings.Split(s, ":")
	nums := []int{}
	for len(parts) > 1 && len(nums) < 2 {
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			break
		}
		nums = append([]int{n}, nums...)
		parts = parts[:len(parts)-1]
	}
	if len(nums) == 0 {
		return schema.Position{}, false
	}
	p := schema.Position{File: strings.Join(parts, ":"), Line: nums[0]}
	if len(nums) == 2 {
		p.Column = nums[1]
	}
	return p, true
}

// VerifyStdlib controlla che il comando go veda i sorgenti della standard library.
func VerifyStdlib(ctx context.Context, dir string) error {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles,
		Dir:     dir,
		Env:     os.Environ(),
	}
	pkgs, err := packages.Load(cfg, "runtime")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStdlibNotFound, err)
	}
	if len(pkgs) == 0 || len(pkgs[0].GoFiles) == 0 || len(pkgs[0].Errors) > 0 {
		return ErrStdlibNotFound
	}
	return nil
}
