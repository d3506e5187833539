// Package compiler runs the compile pass: every declaration is extracted,
// validated, rendered and written. Declarations are compiled in parallel and
// one failure never stops the others.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/extract"
	"github.com/specialistvlad/extforge/internal/metrics"
	"github.com/specialistvlad/extforge/internal/output"
	"github.com/specialistvlad/extforge/internal/synth"
	"github.com/specialistvlad/extforge/internal/validate"
)

// ErrDuplicateDefinition is returned when two declarations render to the
// same logical name in one pass.
var ErrDuplicateDefinition = errors.New("definition declared more than once")

// Result is the outcome of compiling one declaration.
type Result struct {
	Declaration string
	Document    synth.Document
	Err         error
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithWorkers bounds how many declarations compile at once.
func WithWorkers(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithEngine sets the coercion engine.
func WithEngine(e *coerce.Engine) Option {
	return func(c *Compiler) { c.engine = e }
}

// WithSynthesizer sets the renderer.
func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(c *Compiler) { c.synth = s }
}

// WithMetrics records compile outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Compiler) { c.metrics = m }
}

// Compiler turns declarations into stored host documents.
type Compiler struct {
	engine  *coerce.Engine
	synth   *synth.Synthesizer
	writer  output.Writer
	workers int
	metrics *metrics.Metrics
}

// New returns a Compiler writing to w.
func New(w output.Writer, opts ...Option) *Compiler {
	c := &Compiler{
		engine:  coerce.NewEngine(),
		synth:   synth.New(),
		writer:  w,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile runs a single declaration through the pass.
func (c *Compiler) Compile(ctx context.Context, decl *declare.Declaration) (synth.Document, error) {
	doc, err := c.render(ctx, extract.New(c.engine.Pinned()), decl)
	if err == nil {
		err = c.writer.Write(ctx, doc)
	}
	c.observe(decl, doc, err)
	return doc, err
}

// CompileAll compiles every declaration and returns one Result per input,
// in input order. The returned error joins every per-declaration failure.
//
// The "now" literal resolves to the same instant for the whole pass.
func (c *Compiler) CompileAll(ctx context.Context, decls []*declare.Declaration) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)
	x := extract.New(c.engine.Pinned())
	results := make([]Result, len(decls))

	c.parallel(ctx, decls, func(ctx context.Context, i int, d *declare.Declaration) {
		results[i].Declaration = declName(d)
		results[i].Document, results[i].Err = c.render(ctx, x, d)
	})

	owners := make(map[string]string)
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if first, dup := owners[r.Document.LogicalName]; dup {
			r.Err = fmt.Errorf("%w: %s also declared by %s", ErrDuplicateDefinition, r.Document.LogicalName, first)
			continue
		}
		owners[r.Document.LogicalName] = r.Declaration
	}

	c.parallel(ctx, decls, func(ctx context.Context, i int, _ *declare.Declaration) {
		if results[i].Err != nil {
			return
		}
		results[i].Err = c.writer.Write(ctx, results[i].Document)
	})

	var errs []error
	for i, r := range results {
		c.observe(decls[i], r.Document, r.Err)
		if r.Err != nil {
			logger.Error("Declaration failed to compile.", "declaration", r.Declaration, "error", r.Err)
			errs = append(errs, fmt.Errorf("%s: %w", r.Declaration, r.Err))
			continue
		}
		logger.Info("Compiled declaration.", "declaration", r.Declaration, "kind", r.Document.Kind, "name", r.Document.Name, "logical_name", r.Document.LogicalName)
	}
	return results, errors.Join(errs...)
}

func (c *Compiler) parallel(ctx context.Context, decls []*declare.Declaration, fn func(context.Context, int, *declare.Declaration)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, d := range decls {
		g.Go(func() error {
			fn(gctx, i, d)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Compiler) render(ctx context.Context, x *extract.Extractor, decl *declare.Declaration) (synth.Document, error) {
	if err := ctx.Err(); err != nil {
		return synth.Document{}, err
	}
	def, err := x.Extract(ctx, decl)
	if err != nil {
		return synth.Document{}, err
	}
	if err := validate.Validate(def); err != nil {
		return synth.Document{}, err
	}
	return c.synth.Render(def)
}

func (c *Compiler) observe(decl *declare.Declaration, doc synth.Document, err error) {
	kind := string(doc.Kind)
	if kind == "" && decl != nil && decl.Marker != nil {
		kind = decl.Marker.Kind.String()
	}
	c.metrics.ObserveCompile(kind, metrics.Outcome(err))
}

func declName(d *declare.Declaration) string {
	if d == nil {
		return "<nil>"
	}
	return d.Name
}
