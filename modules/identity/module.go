// Package identity provides the Set Manager workflow rule.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/hostapi"
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

var ErrSelfManaged = errors.New("an identity cannot manage itself")

// Module registers rules backed by Store. A nil Store gets an empty
// in-memory store.
type Module struct {
	Store hostapi.ObjectStore
}

// SetManagerArguments is the signature of SetManager.
type SetManagerArguments struct {
	Identity any    `arg:"identity,required" prompt:"Identity to update" argtype:"Identity"`
	Manager  string `arg:"manager,required" prompt:"Name of the new manager"`
	Previous string `arg:"previous,return"`
}

// SetManager assigns a manager to an identity and returns the previous
// manager's name. The identity argument is a name or a *hostapi.Identity.
type SetManager struct {
	declare.Rule `rule:"Set Manager" kind:"Workflow" description:"Assigns a manager to an identity."`

	Args SetManagerArguments `arguments:""`

	store hostapi.ObjectStore
}

func (s *SetManager) Execute(ctx context.Context, args *rule.Arguments) (any, error) {
	raw, _ := args.Raw("identity")
	target, err := s.resolve(ctx, raw)
	if err != nil {
		return nil, err
	}
	manager, err := args.String("manager")
	if err != nil {
		return nil, err
	}
	manager = strings.TrimSpace(manager)
	if manager == target.Name {
		return nil, fmt.Errorf("%s: %w", manager, ErrSelfManaged)
	}
	if _, err := s.store.GetIdentity(ctx, manager); err != nil {
		return nil, fmt.Errorf("manager: %w", err)
	}

	previous := target.Manager
	target.Manager = manager
	if err := s.store.SaveIdentity(ctx, target); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Manager assigned.", "identity", target.Name, "manager", manager, "previous", previous)
	return previous, nil
}

func (s *SetManager) resolve(ctx context.Context, raw any) (*hostapi.Identity, error) {
	switch v := raw.(type) {
	case *hostapi.Identity:
		return s.store.GetIdentity(ctx, v.Name)
	case string:
		return s.store.GetIdentity(ctx, strings.TrimSpace(v))
	default:
		return nil, &rule.TypeMismatchError{Name: "identity", Want: "Identity", Got: fmt.Sprintf("%T", raw)}
	}
}

// Register registers the module's rules.
func (m *Module) Register(r *registry.Registry) {
	store := m.Store
	if store == nil {
		store = hostapi.NewMemoryStore()
	}
	r.MustRegister(rule.ClassName(&SetManager{}), func() (rule.Executable, error) {
		return &SetManager{store: store}, nil
	})
}

// Declarations lists the types compiled into host definitions.
func (m *Module) Declarations() []any {
	return []any{&SetManager{}}
}
