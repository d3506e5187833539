package compiler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/output"
	"github.com/specialistvlad/extforge/internal/validate"
)

type goodObject struct {
	declare.CustomObject `object:"Good"`

	Limit int64     `attr:"limit" value:"10"`
	When  time.Time `attr:"when" value:"now"`
}

type brokenObject struct {
	declare.CustomObject `object:"Broken"`

	Flag bool `attr:"flag" value:"maybe"`
}

type twinObject struct {
	declare.CustomObject `object:"Good"`

	Other string `attr:"other" value:"x"`
}

type ambiguousRule struct {
	declare.Rule `rule:"Ambiguous" kind:"Workflow|Validation"`
}

type goodRule struct {
	declare.Rule `rule:"Good Rule" kind:"Validation"`

	Input string `arg:"input,required"`
}

func declarations(t *testing.T, values ...any) []*declare.Declaration {
	t.Helper()
	out := make([]*declare.Declaration, 0, len(values))
	for _, v := range values {
		d, err := declare.FromValue(v)
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func fixedEngine() *coerce.Engine {
	at := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	return coerce.NewEngine(coerce.WithClock(func() time.Time { return at }))
}

func TestCompileAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	w := output.NewMemoryWriter()
	c := New(w, WithWorkers(2), WithEngine(fixedEngine()))

	// --- Act ---
	results, err := c.CompileAll(context.Background(), declarations(t, goodObject{}, brokenObject{}, ambiguousRule{}, goodRule{}))

	// --- Assert ---
	require.Error(t, err, "the joined error should report the failures")
	require.ErrorIs(t, err, coerce.ErrInvalidBool)
	require.ErrorIs(t, err, validate.ErrAmbiguousRuleKind)

	require.Len(t, results, 4)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.Error(t, results[2].Err)
	require.NoError(t, results[3].Err)

	require.Equal(t, []string{"Custom/Good.xml", "Rule/Good Rule.xml"}, w.Names(), "only valid declarations are written")
}

func TestCompileAll_RejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	w := output.NewMemoryWriter()
	results, err := New(w).CompileAll(context.Background(), declarations(t, goodObject{}, twinObject{}))

	require.ErrorIs(t, err, ErrDuplicateDefinition)
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, ErrDuplicateDefinition)

	doc, ok := w.Get("Custom/Good.xml")
	require.True(t, ok)
	require.Contains(t, string(doc.Data), `key="limit"`, "the first declaration keeps the name")
}

func TestCompileAll_Idempotent(t *testing.T) {
	t.Parallel()

	engine := fixedEngine()
	first, second := output.NewMemoryWriter(), output.NewMemoryWriter()

	_, err := New(first, WithEngine(engine)).CompileAll(context.Background(), declarations(t, goodObject{}, goodRule{}))
	require.NoError(t, err)
	_, err = New(second, WithEngine(engine)).CompileAll(context.Background(), declarations(t, goodObject{}, goodRule{}))
	require.NoError(t, err)

	for _, name := range first.Names() {
		a, _ := first.Get(name)
		b, ok := second.Get(name)
		require.True(t, ok)
		require.Equal(t, string(a.Data), string(b.Data), "%s should be byte-identical across passes", name)
	}
}

func TestCompile_Single(t *testing.T) {
	t.Parallel()

	w := output.NewMemoryWriter()
	decl := declarations(t, goodRule{})[0]

	doc, err := New(w).Compile(context.Background(), decl)
	require.NoError(t, err)
	require.Equal(t, "Rule/Good Rule.xml", doc.LogicalName)
	require.Contains(t, string(doc.Data), `<Argument name="input" type="string" required="true">`)
}

func TestCompileAll_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := output.NewMemoryWriter()
	_, err := New(w).CompileAll(ctx, declarations(t, goodObject{}))
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, w.Names())
}
