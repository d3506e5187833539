package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/extforge/internal/compiler"
	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/hcldecl"
	"github.com/specialistvlad/extforge/internal/output"
	"github.com/specialistvlad/extforge/internal/output/pgstore"
	"github.com/specialistvlad/extforge/internal/output/sionotify"
	"github.com/specialistvlad/extforge/internal/synth"
)

var ErrNoOutput = errors.New("no output configured: set output.dir, output.database_url or output.notify_url")

// Declarations collects the declarations of every module that provides
// them, followed by those found in the configured HCL sources.
func (a *App) Declarations(ctx context.Context) ([]*declare.Declaration, error) {
	var decls []*declare.Declaration
	for _, m := range a.modules {
		p, ok := m.(declare.Provider)
		if !ok {
			continue
		}
		for _, v := range p.Declarations() {
			d, err := declare.FromValue(v)
			if err != nil {
				return nil, fmt.Errorf("module %T: %w", m, err)
			}
			decls = append(decls, d)
		}
	}

	fromFiles, err := hcldecl.NewLoader().Load(ctx, a.config.Sources...)
	if err != nil {
		return nil, err
	}
	return append(decls, fromFiles...), nil
}

// Compile runs one compile pass over every declaration and writes the
// documents to the configured outputs.
func (a *App) Compile(ctx context.Context) ([]compiler.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	w, err := a.writer(ctx)
	if err != nil {
		return nil, err
	}
	decls, err := a.Declarations(ctx)
	if err != nil {
		return nil, err
	}

	c := compiler.New(w,
		compiler.WithEngine(a.engine),
		compiler.WithWorkers(a.config.Compile.Workers),
		compiler.WithSynthesizer(synth.New(synth.WithDTD(a.config.Output.DTD))),
		compiler.WithMetrics(a.metrics),
	)
	a.logger.Info("Compiling declarations.", "count", len(decls))
	return c.CompileAll(ctx, decls)
}

// writer builds the configured output chain once. Connections it opens are
// released by Close.
func (a *App) writer(ctx context.Context) (output.Writer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.out != nil {
		return a.out, nil
	}

	var chain output.Multi
	out := a.config.Output

	if out.Dir != "" {
		chain = append(chain, output.NewDirWriter(out.Dir))
	}
	if out.DatabaseURL != "" {
		store, err := pgstore.Open(ctx, out.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		chain = append(chain, store)
	}
	if out.NotifyURL != "" {
		n, err := sionotify.Dial(ctx, sionotify.Options{URL: out.NotifyURL, Namespace: out.NotifyNamespace})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, n)
		chain = append(chain, n)
	}

	switch len(chain) {
	case 0:
		return nil, ErrNoOutput
	case 1:
		a.out = chain[0]
	default:
		a.out = chain
	}
	return a.out, nil
}

// Migrate applies the definition store migrations.
func (a *App) Migrate(ctx context.Context) (bool, error) {
	if a.config.Output.DatabaseURL == "" {
		return false, errors.New("output.database_url is required")
	}
	applied, err := pgstore.Migrate(a.config.Output.DatabaseURL)
	if err != nil {
		return false, err
	}
	ctxlog.FromContext(ctxlog.WithLogger(ctx, a.logger)).Info("Definition store migrated.", "applied", applied)
	return applied, nil
}
