// Package query runs one type-at-position query: it loads the requested
// files with the chosen backend, picks the compilation unit and asks
// resolve for the typed name under the cursor.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/codellm-devkit/typeextractor-go/internal/astx"
	"github.com/codellm-devkit/typeextractor-go/internal/errors"
	"github.com/codellm-devkit/typeextractor-go/internal/loader"
	"github.com/codellm-devkit/typeextractor-go/internal/observability"
	"github.com/codellm-devkit/typeextractor-go/internal/resolve"
	"github.com/codellm-devkit/typeextractor-go/internal/sitterx"
	"github.com/codellm-devkit/typeextractor-go/pkg/schema"
)

// Backend names.
const (
	BackendTypes  = "types"
	BackendSyntax = "syntax"
)

// Request describes one query.
type Request struct {
	Paths   []string // files or directories
	Unit    string   // file to query; empty means the first collected file
	Line    int
	Column  int
	Backend string // types (default) or syntax
	Load    loader.Options
}

// Runner executes queries. The zero value is usable.
type Runner struct {
	Version string
	Logger  *slog.Logger
}

// tree is what both providers expose to the runner.
type tree interface {
	Root() resolve.Node
	Size() int
}

type loaded struct {
	tree   tree
	unit   string
	units  int
	issues []schema.Issue
}

// Run executes req. A position with no typed name yields a result whose
// Match is nil and a nil error.
func (r *Runner) Run(ctx context.Context, req Request) (*schema.TypeQuery, error) {
	backend := req.Backend
	if backend == "" {
		backend = BackendTypes
	}
	ctx, span := observability.Tracer.Start(ctx, "query.Run", trace.WithAttributes(
		attribute.String("backend", backend),
		attribute.Int("line", req.Line),
		attribute.Int("column", req.Column),
	))
	defer span.End()

	res, err := r.run(ctx, req, backend)
	if err != nil {
		observability.QueriesTotal.WithLabelValues(backend, observability.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	outcome := observability.OutcomeNoMatch
	if res.Match != nil {
		outcome = observability.OutcomeMatch
	}
	observability.QueriesTotal.WithLabelValues(backend, outcome).Inc()
	span.SetAttributes(attribute.String("outcome", outcome))
	return res, nil
}

func (r *Runner) run(ctx context.Context, req Request, backend string) (*schema.TypeQuery, error) {
	log := r.logger()

	prog, err := loader.CollectFiles(req.Paths, req.Load)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "collect files")
	}
	if len(prog.Files) == 0 {
		return nil, errors.New(errors.CodeUsage, "no Go files to query")
	}

	start := time.Now()
	var l *loaded
	switch backend {
	case BackendTypes:
		l, err = loadTypes(ctx, prog, req)
	case BackendSyntax:
		l, err = loadSyntax(prog, req)
	default:
		return nil, errors.Newf(errors.CodeUsage, "unknown backend %q", backend)
	}
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxBackend, backend)
	}
	loadTime := time.Since(start)
	observability.LoadDuration.WithLabelValues(backend).Observe(loadTime.Seconds())
	observability.TreeNodes.WithLabelValues(backend).Set(float64(l.tree.Size()))

	for _, iss := range l.issues {
		observability.LoadProblemsTotal.WithLabelValues(iss.Code).Inc()
		log.Warn(iss.String(), "code", iss.Code, "severity", iss.Severity)
	}

	_, span := observability.Tracer.Start(ctx, "resolve")
	t0 := time.Now()
	tn, ok := resolve.Resolve(l.tree.Root(), req.Line, req.Column)
	resolveTime := time.Since(t0)
	span.End()
	observability.ResolveDuration.Observe(resolveTime.Seconds())

	out := &schema.TypeQuery{
		Metadata: schema.Metadata{
			Tool:             "typeextractor-go",
			Version:          r.Version,
			Language:         "go",
			Backend:          backend,
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
			GoVersion:        runtime.Version(),
			LoadDurationMs:   loadTime.Milliseconds(),
			ResolveDuration:  resolveTime.String(),
			TreeSize:         l.tree.Size(),
			CompilationUnits: l.units,
		},
		Query:  schema.Query{Unit: l.unit, Line: req.Line, Column: req.Column},
		Issues: l.issues,
	}
	if out.Issues == nil {
		out.Issues = []schema.Issue{}
	}
	if ok {
		out.Match = describe(tn)
	}
	log.Debug("query done", "unit", l.unit, "line", req.Line, "column", req.Column,
		"match", ok, "tree_size", l.tree.Size(), "resolve", resolveTime)
	return out, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func loadTypes(ctx context.Context, prog *loader.Program, req Request) (*loaded, error) {
	res, err := loader.LoadTyped(ctx, prog, req.Load)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeLoad, "load packages")
	}
	want := req.Unit
	if want == "" {
		want = prog.Files[0]
	}
	u, ok := res.Unit(want)
	if !ok {
		err := errors.Newf(errors.CodeNotFound, "compilation unit %s not loaded", want)
		return nil, errors.AddContext(err, errors.CtxPath, want)
	}
	t := astx.NewTree(res.Fset, u.File, u.Package.TypesInfo)
	return &loaded{tree: t, unit: u.Path, units: len(res.Units), issues: res.Problems}, nil
}

func loadSyntax(prog *loader.Program, req Request) (*loaded, error) {
	path := prog.Files[0]
	if req.Unit != "" {
		p, ok := pickFile(prog.Files, req.Unit)
		if !ok {
			err := errors.Newf(errors.CodeNotFound, "compilation unit %s not among the input files", req.Unit)
			return nil, errors.AddContext(err, errors.CtxPath, req.Unit)
		}
		path = p
	}
	t, err := sitterx.ParseFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeLoad, "parse")
	}
	l := &loaded{tree: t, unit: path, units: len(prog.Files)}
	if n := t.ErrorCount(); n > 0 {
		l.issues = append(l.issues, schema.Issue{
			Severity: "warning",
			Code:     "SYNTAX_ERROR",
			Message:  fmt.Sprintf("%s: %d syntax error node(s), results may be partial", path, n),
		})
	}
	return l, nil
}

// pickFile matches unit against files by absolute path, then by base name.
func pickFile(files []string, unit string) (string, bool) {
	if abs, err := filepath.Abs(unit); err == nil {
		for _, f := range files {
			if filepath.Clean(f) == abs {
				return f, true
			}
		}
	}
	for _, f := range files {
		if filepath.Base(f) == unit {
			return f, true
		}
	}
	return "", false
}

func describe(tn resolve.TypedName) *schema.Match {
	m := &schema.Match{Name: tn.Name(), Type: tn.TypeName()}
	if k, ok := tn.(interface{ Kind() string }); ok {
		m.Kind = k.Kind()
	}
	if d, ok := tn.(interface{ DeclaredAt() schema.Position }); ok {
		if p := d.DeclaredAt(); p.IsValid() {
			m.DeclaredAt = &p
		}
	}
	return m
}
