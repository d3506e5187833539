package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/model"
)

func validRule() *model.RuleDefinition {
	return &model.RuleDefinition{
		RuleName:        "Set Manager",
		RuleKind:        model.RuleKindWorkflow,
		DeclaredKinds:   []string{"Workflow"},
		SourceClassName: "acme.SetManager",
		Arguments: []model.ArgumentDeclaration{
			{Name: "identity", Type: coerce.StringType, Direction: model.DirectionInput, Required: true},
			{Name: "manager", Type: coerce.StringType, Direction: model.DirectionReturn, IsReturnType: true},
		},
	}
}

func TestRule_Valid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(validRule()))
}

func TestRule_Violations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*model.RuleDefinition)
		wantErr error
	}{
		{
			name: "duplicate argument",
			mutate: func(d *model.RuleDefinition) {
				d.Arguments = append(d.Arguments, model.ArgumentDeclaration{Name: "identity", Direction: model.DirectionInput})
			},
			wantErr: ErrDuplicateArgument,
		},
		{
			name: "two return types",
			mutate: func(d *model.RuleDefinition) {
				d.Arguments = append(d.Arguments, model.ArgumentDeclaration{Name: "other", Direction: model.DirectionReturn, IsReturnType: true})
			},
			wantErr: ErrMultipleReturnTypeArguments,
		},
		{
			name: "return type declared as input",
			mutate: func(d *model.RuleDefinition) {
				d.Arguments[1].Direction = model.DirectionInput
			},
			wantErr: ErrReturnDirection,
		},
		{
			name: "no kind",
			mutate: func(d *model.RuleDefinition) {
				d.DeclaredKinds = nil
				d.RuleKind = ""
			},
			wantErr: ErrAmbiguousRuleKind,
		},
		{
			name: "two kinds",
			mutate: func(d *model.RuleDefinition) {
				d.DeclaredKinds = []string{"Workflow", "Validation"}
			},
			wantErr: ErrAmbiguousRuleKind,
		},
		{
			name: "kind outside the catalog",
			mutate: func(d *model.RuleDefinition) {
				d.DeclaredKinds = []string{"Teleport"}
				d.RuleKind = "Teleport"
			},
			wantErr: ErrUnknownRuleKind,
		},
		{
			name: "blank source class",
			mutate: func(d *model.RuleDefinition) {
				d.SourceClassName = "  "
			},
			wantErr: ErrEmptyIdentifier,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			def := validRule()
			tc.mutate(def)

			err := Validate(def)
			require.ErrorIs(t, err, tc.wantErr)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, model.KindRule, verr.Kind)
		})
	}
}

func TestRule_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	def := validRule()
	def.DeclaredKinds = nil
	def.Arguments = append(def.Arguments,
		model.ArgumentDeclaration{Name: "identity", Direction: model.DirectionInput},
		model.ArgumentDeclaration{Name: "second", Direction: model.DirectionReturn, IsReturnType: true},
	)

	err := Validate(def)
	require.ErrorIs(t, err, ErrAmbiguousRuleKind)
	require.ErrorIs(t, err, ErrDuplicateArgument)
	require.ErrorIs(t, err, ErrMultipleReturnTypeArguments)
}

func TestValidate_IsPure(t *testing.T) {
	t.Parallel()

	def := validRule()
	def.Arguments = append(def.Arguments, model.ArgumentDeclaration{Name: "identity"})
	before := *def
	before.Arguments = append([]model.ArgumentDeclaration(nil), def.Arguments...)

	require.Error(t, Validate(def))
	require.Error(t, Validate(def), "validating twice gives the same answer")
	if diff := cmp.Diff(&before, def); diff != "" {
		t.Errorf("validation mutated the definition (-before +after):\n%s", diff)
	}
}

func TestCustomObject(t *testing.T) {
	t.Parallel()

	def := &model.CustomObjectDefinition{
		ObjectName: "SampleObject",
		Attributes: []model.AttributeDeclaration{
			{Name: "a", Type: coerce.StringType, Value: "x"},
			{Name: "b", Type: coerce.StringType, Value: "y"},
		},
	}
	require.NoError(t, Validate(def))

	def.Attributes = append(def.Attributes, model.AttributeDeclaration{Name: "a", Type: coerce.StringType, Value: "z"})
	require.ErrorIs(t, Validate(def), ErrDuplicateAttribute)

	require.ErrorIs(t, Validate(&model.CustomObjectDefinition{}), ErrEmptyIdentifier)
}

func TestArguments(t *testing.T) {
	t.Parallel()

	require.NoError(t, Arguments("signed", []model.ArgumentDeclaration{
		{Name: "a", Direction: model.DirectionInput},
		{Name: "out", Direction: model.DirectionReturn, IsReturnType: true},
	}))

	err := Arguments("signed", []model.ArgumentDeclaration{
		{Name: "a"},
		{Name: "a"},
		{Name: "r1", Direction: model.DirectionReturn, IsReturnType: true},
		{Name: "r2", Direction: model.DirectionReturn, IsReturnType: true},
	})
	require.ErrorIs(t, err, ErrDuplicateArgument)
	require.ErrorIs(t, err, ErrMultipleReturnTypeArguments)
}
