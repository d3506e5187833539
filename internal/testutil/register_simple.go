package testutil

import (
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers one class and contributes declarations.
type SimpleModule struct {
	Class   string
	Factory registry.Factory

	Values []any
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Class != "" && m.Factory != nil {
		r.MustRegister(m.Class, m.Factory)
	}
}

// Declarations implements declare.Provider.
func (m *SimpleModule) Declarations() []any {
	return m.Values
}

// SpyModule wraps spy in a SimpleModule registered under the spy's class.
func SpyModule(spy *SpyRule) *SimpleModule {
	return &SimpleModule{
		Class:   rule.ClassName(spy),
		Factory: func() (rule.Executable, error) { return spy, nil },
	}
}
