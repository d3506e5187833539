package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/coerce"
)

func TestParseRuleKind(t *testing.T) {
	t.Parallel()

	k, err := ParseRuleKind("workflow")
	require.NoError(t, err)
	require.Equal(t, RuleKindWorkflow, k)

	_, err = ParseRuleKind("NotAKind")
	require.Error(t, err)

	require.Contains(t, RuleKinds(), RuleKindAlertMatch)
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("")
	require.NoError(t, err)
	require.Equal(t, DirectionInput, d, "an unset direction is an input")

	d, err = ParseDirection("return")
	require.NoError(t, err)
	require.Equal(t, DirectionReturn, d)

	_, err = ParseDirection("sideways")
	require.Error(t, err)
}

func TestRuleDefinition_SignatureViews(t *testing.T) {
	t.Parallel()

	def := &RuleDefinition{
		RuleName: "Set Manager",
		Arguments: []ArgumentDeclaration{
			{Name: "identity", Type: coerce.OtherType("Identity"), Direction: DirectionInput, Required: true},
			{Name: "manager", Type: coerce.StringType, Direction: DirectionReturn, IsReturnType: true},
			{Name: "log", Type: coerce.AnyType, Direction: DirectionInput},
		},
	}

	require.Equal(t, KindRule, def.DefinitionKind())
	require.Equal(t, "Set Manager", def.DefinitionName())

	inputs := def.Inputs()
	require.Len(t, inputs, 2)
	require.Equal(t, "identity", inputs[0].Name)
	require.Equal(t, "log", inputs[1].Name)

	ret, ok := def.ReturnType()
	require.True(t, ok)
	require.Equal(t, "manager", ret.Name)
	require.Len(t, def.Returns(), 1)
}
