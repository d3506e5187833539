// Package validate checks the structural invariants of extracted
// definitions. Validation is pure: it never mutates a definition.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/extforge/internal/model"
)

var (
	ErrEmptyIdentifier             = errors.New("identifier is empty")
	ErrDuplicateAttribute          = errors.New("duplicate attribute name")
	ErrDuplicateArgument           = errors.New("duplicate argument name")
	ErrMultipleReturnTypeArguments = errors.New("more than one argument is flagged as the return type")
	ErrReturnDirection             = errors.New("return-type argument must have RETURN direction")
	ErrAmbiguousRuleKind           = errors.New("rule must declare exactly one kind")
	ErrUnknownRuleKind             = errors.New("unknown rule kind")
)

// ValidationError collects every violation found in one definition.
type ValidationError struct {
	Kind       model.ObjectKind
	Name       string
	Violations []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("%s %q failed validation:\n- %s", e.Kind, e.Name, strings.Join(msgs, "\n- "))
}

// Unwrap exposes each violation to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error { return e.Violations }

// Validate dispatches to the checks for the definition's kind.
func Validate(def model.Definition) error {
	switch d := def.(type) {
	case *model.CustomObjectDefinition:
		return CustomObject(d)
	case *model.RuleDefinition:
		return Rule(d)
	default:
		return fmt.Errorf("cannot validate definition of type %T", def)
	}
}

// CustomObject checks that the object is named and attribute names are
// unique.
func CustomObject(def *model.CustomObjectDefinition) error {
	var errs []error

	if strings.TrimSpace(def.ObjectName) == "" {
		errs = append(errs, fmt.Errorf("object name: %w", ErrEmptyIdentifier))
	}

	seen := make(map[string]struct{}, len(def.Attributes))
	for _, a := range def.Attributes {
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, fmt.Errorf("attribute name: %w", ErrEmptyIdentifier))
			continue
		}
		if _, dup := seen[a.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateAttribute, a.Name))
			continue
		}
		seen[a.Name] = struct{}{}
	}

	return collect(model.KindCustom, def.ObjectName, errs)
}

// Rule checks naming, the rule kind, argument uniqueness and the return
// type argument.
func Rule(def *model.RuleDefinition) error {
	var errs []error

	if strings.TrimSpace(def.RuleName) == "" {
		errs = append(errs, fmt.Errorf("rule name: %w", ErrEmptyIdentifier))
	}
	if strings.TrimSpace(def.SourceClassName) == "" {
		errs = append(errs, fmt.Errorf("source class: %w", ErrEmptyIdentifier))
	}

	switch len(def.DeclaredKinds) {
	case 1:
		if _, err := model.ParseRuleKind(string(def.RuleKind)); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownRuleKind, def.DeclaredKinds[0]))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: declared %d (%s)", ErrAmbiguousRuleKind, len(def.DeclaredKinds), strings.Join(def.DeclaredKinds, ", ")))
	}

	errs = append(errs, argumentViolations(def.Arguments)...)

	return collect(model.KindRule, def.RuleName, errs)
}

// Arguments checks an argument list on its own, for executables that
// describe their signature without a rule declaration.
func Arguments(ruleName string, args []model.ArgumentDeclaration) error {
	return collect(model.KindRule, ruleName, argumentViolations(args))
}

func argumentViolations(args []model.ArgumentDeclaration) []error {
	var errs []error
	seen := make(map[string]struct{}, len(args))
	var returnTypes []string
	for _, a := range args {
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, fmt.Errorf("argument name: %w", ErrEmptyIdentifier))
		} else if _, dup := seen[a.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateArgument, a.Name))
		} else {
			seen[a.Name] = struct{}{}
		}

		if a.IsReturnType {
			returnTypes = append(returnTypes, a.Name)
			if a.Direction != model.DirectionReturn {
				errs = append(errs, fmt.Errorf("%w: %q is %s", ErrReturnDirection, a.Name, a.Direction))
			}
		}
	}
	if len(returnTypes) > 1 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMultipleReturnTypeArguments, strings.Join(returnTypes, ", ")))
	}
	return errs
}

func collect(kind model.ObjectKind, name string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Name: name, Violations: errs}
}
