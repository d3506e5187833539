// Package rule is the contract between the dispatcher and rule
// implementations.
package rule

import (
	"context"
	"reflect"

	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/model"
)

// Executable is implemented by every dispatchable rule.
type Executable interface {
	Execute(ctx context.Context, args *Arguments) (any, error)
}

// Func adapts a plain function to Executable.
type Func func(ctx context.Context, args *Arguments) (any, error)

func (f Func) Execute(ctx context.Context, args *Arguments) (any, error) {
	return f(ctx, args)
}

// Signer is implemented by executables that describe their own signature
// instead of carrying declaration markers.
type Signer interface {
	Signature() []model.ArgumentDeclaration
}

// Initializer is implemented by executables that need setup after
// construction. A returned error fails the construction.
type Initializer interface {
	Init() error
}

// ClassName returns the class identifier the registry and the compiled
// rule's source field use for v.
func ClassName(v any) string {
	return declare.TypeName(reflect.TypeOf(v))
}
