package synth

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/extract"
	"github.com/specialistvlad/extforge/internal/hostxml"
	"github.com/specialistvlad/extforge/internal/model"
)

var fixedNow = time.Date(2024, time.March, 9, 8, 7, 6, 0, time.UTC)

type scenarioObject struct {
	declare.CustomObject `object:"SampleObject"`

	StringValue  string               `attr:"stringValue" value:"single"`
	BooleanValue bool                 `attr:"booleanValue" value:"true"`
	LongValue    int64                `attr:"longValue" value:"5"`
	DateMap      map[string]time.Time `attr:"dateMap" entries:"now=now|02/15/2019 10:35:45=02/15/2019 10:35:45"`
	NullValue    string               `attr:"nullValue"`
}

func scenarioDefinition(t *testing.T) *model.CustomObjectDefinition {
	t.Helper()
	decl, err := declare.FromValue(scenarioObject{})
	require.NoError(t, err)

	engine := coerce.NewEngine(coerce.WithClock(func() time.Time { return fixedNow }), coerce.WithLocation(time.UTC))
	def, err := extract.New(engine).ExtractCustomObject(context.Background(), decl)
	require.NoError(t, err)
	return def
}

func TestRenderCustomObject_Scenario(t *testing.T) {
	t.Parallel()

	// --- Act ---
	doc, err := New().Render(scenarioDefinition(t))

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, model.KindCustom, doc.Kind)
	require.Equal(t, "SampleObject", doc.Name)
	require.Equal(t, "Custom/SampleObject.xml", doc.LogicalName)

	want := `<?xml version='1.0' encoding='UTF-8'?>
<!DOCTYPE Custom PUBLIC "object.dtd" "object.dtd">
<Custom name="SampleObject">
  <Attributes>
    <Map>
      <entry key="booleanValue">
        <value>
          <Boolean>true</Boolean>
        </value>
      </entry>
      <entry key="dateMap">
        <value>
          <Map>
            <entry key="02/15/2019 10:35:45">
              <value>
                <Date>1550226945000</Date>
              </value>
            </entry>
            <entry key="now">
              <value>
                <Date>1709971626000</Date>
              </value>
            </entry>
          </Map>
        </value>
      </entry>
      <entry key="longValue">
        <value>
          <Long>5</Long>
        </value>
      </entry>
      <entry key="stringValue" value="single"></entry>
    </Map>
  </Attributes>
</Custom>
`
	require.Equal(t, want, string(doc.Data))
}

func TestRenderCustomObject_RoundTrip(t *testing.T) {
	t.Parallel()

	def := scenarioDefinition(t)
	doc, err := New().Render(def)
	require.NoError(t, err)

	obj, err := hostxml.Decode(doc.Data)
	require.NoError(t, err)
	require.Equal(t, "SampleObject", obj.Attrs["name"])
	require.Len(t, obj.Attributes, 4, "exactly the four valued attributes are written")

	want := map[string]any{}
	for _, a := range def.Attributes {
		want[a.Name] = a.Value
	}
	if diff := cmp.Diff(want, obj.Attributes); diff != "" {
		t.Errorf("decoded attributes differ (-want +got):\n%s", diff)
	}
}

func TestRender_Idempotent(t *testing.T) {
	t.Parallel()

	s := New()
	first, err := s.Render(scenarioDefinition(t))
	require.NoError(t, err)
	second, err := s.Render(scenarioDefinition(t))
	require.NoError(t, err)

	require.Equal(t, first, second, "rendering the same declaration twice must be byte-identical")
}

func TestRenderRule(t *testing.T) {
	t.Parallel()

	def := &model.RuleDefinition{
		RuleName:        "Set Manager",
		RuleKind:        model.RuleKindWorkflow,
		DeclaredKinds:   []string{"Workflow"},
		SourceClassName: "acme.SetManager",
		Description:     "Resolves the manager of an identity.",
		Arguments: []model.ArgumentDeclaration{
			{Name: "identity", Type: coerce.OtherType("Identity"), Direction: model.DirectionInput, Required: true, Prompt: "Identity to resolve"},
			{Name: "dryRun", Type: coerce.BoolType, Direction: model.DirectionInput},
			{Name: "manager", Type: coerce.StringType, Direction: model.DirectionReturn, IsReturnType: true},
		},
	}

	doc, err := New(WithDTD("host.dtd")).Render(def)
	require.NoError(t, err)
	require.Equal(t, "Rule/Set Manager.xml", doc.LogicalName)

	want := `<?xml version='1.0' encoding='UTF-8'?>
<!DOCTYPE Rule PUBLIC "host.dtd" "host.dtd">
<Rule name="Set Manager" type="Workflow">
  <Description>Resolves the manager of an identity.</Description>
  <Signature returnType="string">
    <Inputs>
      <Argument name="identity" type="Identity" required="true">
        <Prompt>Identity to resolve</Prompt>
      </Argument>
      <Argument name="dryRun" type="boolean"></Argument>
    </Inputs>
    <Returns>
      <Argument name="manager" type="string"></Argument>
    </Returns>
  </Signature>
  <Source>acme.SetManager</Source>
</Rule>
`
	require.Equal(t, want, string(doc.Data))
}

func TestLogicalName_SanitisesSeparators(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Rule/a_b_c.xml", LogicalName(model.KindRule, "a/b:c"))
}
