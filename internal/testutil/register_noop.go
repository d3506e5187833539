package testutil

import (
	"context"

	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

// NoOpClass is the class NoOpModule registers.
const NoOpClass = "testutil.NoOp"

// NoOpModule registers a single executable that does nothing. It is useful
// for tests that need a non-empty registry without the core modules.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.MustRegister(NoOpClass, func() (rule.Executable, error) {
		return rule.Func(func(context.Context, *rule.Arguments) (any, error) { return nil, nil }), nil
	})
}
