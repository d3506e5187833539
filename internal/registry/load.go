package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/extforge/internal/ctxlog"
)

// Load calls Register on each module. A module that panics while
// registering, for example on a duplicate class, is reported as an error.
func (r *Registry) Load(ctx context.Context, modules ...Module) error {
	logger := ctxlog.FromContext(ctx)
	for _, m := range modules {
		if err := r.load(m); err != nil {
			return err
		}
		logger.Debug("Module registered.", "module", fmt.Sprintf("%T", m))
	}
	logger.Info("Registry loaded.", "classes", len(r.Classes()))
	return nil
}

func (r *Registry) load(m Module) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = fmt.Errorf("register %T: %w", m, e)
				return
			}
			err = fmt.Errorf("register %T: %v", m, p)
		}
	}()
	m.Register(r)
	return nil
}
