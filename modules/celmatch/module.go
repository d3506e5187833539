// Package celmatch provides an AlertMatch rule whose match condition is a
// CEL expression over the alert's attributes.
package celmatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

// CostLimit bounds the work one evaluation may do.
const CostLimit = 1000000

var ErrInvalidExpression = errors.New("invalid match expression")

// Module implements the registry.Module interface for this package.
type Module struct{}

// AlertMatch evaluates expression with the alert bound to the variable
// `alert`. A non-boolean result does not match.
type AlertMatch struct {
	declare.Rule `rule:"CEL Alert Match" kind:"AlertMatch" description:"Matches alerts with a CEL expression."`

	Expression string         `arg:"expression,required" prompt:"CEL expression, e.g. alert.severity == 'high'"`
	Alert      map[string]any `arg:"alert,required" prompt:"Alert attributes"`
	Matched    bool           `arg:"matched,return"`

	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// Init builds the CEL environment.
func (m *AlertMatch) Init() error {
	env, err := cel.NewEnv(cel.Variable("alert", cel.DynType))
	if err != nil {
		return fmt.Errorf("failed to create CEL environment: %w", err)
	}
	m.env = env
	m.programs = make(map[string]cel.Program)
	return nil
}

func (m *AlertMatch) Execute(ctx context.Context, args *rule.Arguments) (any, error) {
	expr, err := args.String("expression")
	if err != nil {
		return nil, err
	}
	alert, err := args.Map("alert")
	if err != nil {
		return nil, err
	}

	prog, err := m.program(expr)
	if err != nil {
		return nil, err
	}
	out, _, err := prog.Eval(map[string]any{"alert": alert})
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}

	matched, _ := out.Value().(bool)
	ctxlog.FromContext(ctx).Debug("Evaluated alert match.", "expression", expr, "matched", matched)
	return matched, nil
}

// program returns the compiled program for expr, compiling it once.
func (m *AlertMatch) program(expr string) (cel.Program, error) {
	m.mu.RLock()
	prog, ok := m.programs[expr]
	m.mu.RUnlock()
	if ok {
		return prog, nil
	}

	ast, issues := m.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, issues.Err())
	}
	prog, err := m.env.Program(ast, cel.CostLimit(CostLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}

	m.mu.Lock()
	m.programs[expr] = prog
	m.mu.Unlock()
	return prog, nil
}

// Register registers the module's rules.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegisterType(&AlertMatch{})
}

// Declarations lists the types compiled into host definitions.
func (m *Module) Declarations() []any {
	return []any{&AlertMatch{}}
}
