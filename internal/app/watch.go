package app

import (
	"context"
	"errors"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/fsutil"
	"github.com/specialistvlad/extforge/internal/hcldecl"
	"github.com/specialistvlad/extforge/internal/watch"
)

var ErrNothingToWatch = errors.New("no existing source directory to watch")

// Watch compiles once, then recompiles every time a declaration file under
// the configured sources changes. A failing pass is logged and the watch
// continues. It blocks until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if _, err := a.Compile(ctx); err != nil {
		if errors.Is(err, ErrNoOutput) {
			return err
		}
		a.logger.Warn("Initial compile pass had failures.", "error", err)
	}

	roots := fsutil.Roots(a.config.Sources)
	if len(roots) == 0 {
		return ErrNothingToWatch
	}
	w, err := watch.New(roots, hcldecl.Extension, a.config.Compile.Debounce, func(ctx context.Context, changed []string) {
		a.logger.Info("Declaration files changed, recompiling.", "files", changed)
		if _, err := a.Compile(ctx); err != nil {
			a.logger.Warn("Compile pass had failures.", "error", err)
		}
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
