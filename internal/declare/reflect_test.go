package declare

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/coerce"
)

type sampleObject struct {
	CustomObject `object:"SampleObject"`

	StringValue string               `attr:"stringValue" value:"single"`
	DateMap     map[string]time.Time `attr:"dateMap" entries:"now=now|02/15/2019 10:35:45=02/15/2019 10:35:45"`
	Tags        []string             `attr:",collection" value:"a|b"`
	Empty       string               `attr:"empty"`
	ignored     string               `attr:"ignored" value:"x"`
	Plain       string
}

type managerArgs struct {
	Identity string `arg:"identity,required" prompt:"Identity to resolve" argtype:"Identity"`
	Result   string `arg:"result,return"`
}

type managerRule struct {
	Rule `rule:"Set Manager" kind:"Workflow" description:"Resolves a manager"`

	Args managerArgs `arguments:""`
}

func (*managerRule) DeclaredMethods() []Method {
	return []Method{{Name: "Plan", Argument: ArgumentMarker{Name: "plan", Type: "ProvisioningPlan"}}}
}

type twoMarkers struct {
	CustomObject
	Rule
}

func TestFromValue_CustomObject(t *testing.T) {
	t.Parallel()

	// --- Act ---
	decl, err := FromValue(sampleObject{ignored: "unused"})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, KindType, decl.Kind)
	require.Equal(t, "github.com/specialistvlad/extforge/internal/declare.sampleObject", decl.Name)
	require.NotNil(t, decl.Marker)
	require.Equal(t, MarkerCustomObject, decl.Marker.Kind)
	require.Equal(t, "SampleObject", decl.Marker.Name)
	require.Len(t, decl.Members, 4, "unexported and unmarked fields are not members")

	byName := map[string]*Declaration{}
	for _, m := range decl.Members {
		byName[m.Name] = m
	}

	require.Equal(t, []AttributeMarker{{Name: "stringValue", Values: []string{"single"}}}, byName["StringValue"].Attributes)
	require.True(t, coerce.MapOf(coerce.DateType).Equal(byName["DateMap"].Type))
	require.Equal(t, []AttributeMarker{
		{Name: "dateMap", Key: "now", HasKey: true, Values: []string{"now"}},
		{Name: "dateMap", Key: "02/15/2019 10:35:45", HasKey: true, Values: []string{"02/15/2019 10:35:45"}},
	}, byName["DateMap"].Attributes)
	require.Equal(t, []AttributeMarker{{Name: "", Values: []string{"a", "b"}, Collection: true}}, byName["Tags"].Attributes)
	require.Equal(t, []AttributeMarker{{Name: "empty"}}, byName["Empty"].Attributes)
}

func TestFromValue_Rule(t *testing.T) {
	t.Parallel()

	decl, err := FromValue(&managerRule{})
	require.NoError(t, err)

	require.Equal(t, MarkerRule, decl.Marker.Kind)
	require.Equal(t, "Set Manager", decl.Marker.Name)
	require.Equal(t, []string{"Workflow"}, decl.Marker.RuleKinds)
	require.Equal(t, "Resolves a manager", decl.Marker.Description)

	require.NotNil(t, decl.Arguments, "the arguments container should be captured")
	require.Len(t, decl.Arguments.Members, 2)
	identity := decl.Arguments.Members[0].Argument
	require.Equal(t, &ArgumentMarker{Name: "identity", Prompt: "Identity to resolve", Required: true, Type: "Identity"}, identity)
	require.True(t, decl.Arguments.Members[1].Argument.Return)

	require.Len(t, decl.Members, 1)
	require.Equal(t, KindMethod, decl.Members[0].Kind)
	require.Equal(t, "plan", decl.Members[0].Argument.Name)
}

func TestFromType_Errors(t *testing.T) {
	t.Parallel()

	_, err := FromType(reflect.TypeOf(42))
	require.ErrorIs(t, err, ErrNotStruct)

	_, err = FromValue(twoMarkers{})
	require.ErrorIs(t, err, ErrConflictingMarkers)

	type badOption struct {
		Field string `arg:"x,sometimes"`
	}
	_, err = FromValue(badOption{})
	require.ErrorIs(t, err, ErrBadTag)

	type badEntry struct {
		Field map[string]string `attr:"m" entries:"novalue"`
	}
	_, err = FromValue(badEntry{})
	require.ErrorIs(t, err, ErrBadTag)
}
