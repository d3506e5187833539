package dispatch

import (
	"context"
	"errors"

	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/extract"
	"github.com/specialistvlad/extforge/internal/model"
	"github.com/specialistvlad/extforge/internal/rule"
	"github.com/specialistvlad/extforge/internal/validate"
)

// signature returns the declared arguments of inst, derived once per class.
// Executables implementing rule.Signer describe themselves; otherwise the
// rule declaration of their type is extracted and validated. Executables
// with neither take no declared arguments.
func (d *Dispatcher) signature(ctx context.Context, class string, inst rule.Executable) ([]model.ArgumentDeclaration, error) {
	if cached, ok := d.signatures.Load(class); ok {
		return cached.([]model.ArgumentDeclaration), nil
	}

	args, err := d.derive(ctx, class, inst)
	if err != nil {
		return nil, err
	}
	actual, _ := d.signatures.LoadOrStore(class, args)
	return actual.([]model.ArgumentDeclaration), nil
}

func (d *Dispatcher) derive(ctx context.Context, class string, inst rule.Executable) ([]model.ArgumentDeclaration, error) {
	if s, ok := inst.(rule.Signer); ok {
		args := s.Signature()
		if err := validate.Arguments(class, args); err != nil {
			return nil, err
		}
		return args, nil
	}

	decl, err := declare.FromValue(inst)
	switch {
	case errors.Is(err, declare.ErrNotStruct):
		return nil, nil
	case err != nil:
		return nil, err
	case decl.Marker == nil || decl.Marker.Kind != declare.MarkerRule:
		return nil, nil
	}

	def, err := extract.New(d.engine).ExtractRule(ctx, decl)
	if err != nil {
		return nil, err
	}
	if err := validate.Rule(def); err != nil {
		return nil, err
	}
	return def.Arguments, nil
}
