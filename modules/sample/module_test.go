package sample

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/compiler"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/dispatch"
	"github.com/specialistvlad/extforge/internal/hostxml"
	"github.com/specialistvlad/extforge/internal/output"
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

var fixedNow = time.Date(2024, time.March, 9, 8, 7, 6, 0, time.UTC)

func TestDeclarations_Compile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var decls []*declare.Declaration
	for _, v := range (&Module{}).Declarations() {
		d, err := declare.FromValue(v)
		require.NoError(t, err)
		decls = append(decls, d)
	}
	w := output.NewMemoryWriter()
	engine := coerce.NewEngine(coerce.WithClock(func() time.Time { return fixedNow }))
	c := compiler.New(w, compiler.WithEngine(engine))

	// --- Act ---
	_, err := c.CompileAll(context.Background(), decls)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{"Custom/SampleObject.xml", "Rule/Print.xml"}, w.Names())

	doc, ok := w.Get("Custom/SampleObject.xml")
	require.True(t, ok)
	obj, err := hostxml.Decode(doc.Data)
	require.NoError(t, err)
	require.Len(t, obj.Attributes, 4, "nullValue is unset and must be omitted")
	require.Equal(t, true, obj.Attributes["booleanValue"])
	require.Equal(t, int64(5), obj.Attributes["longValue"])

	dates, ok := obj.Attributes["dateMap"].(map[string]any)
	require.True(t, ok)
	require.True(t, fixedNow.Equal(dates["now"].(time.Time)), "now resolves to the pass instant")
}

type timedObject struct {
	declare.CustomObject `object:"TimedObject"`

	Stamps  map[string]time.Time `attr:"stamps" entries:"now=now"`
	Timeout time.Duration        `attr:"timeout" value:"90s"`
}

func TestDeclarations_RoundTripSubMillisecondClock(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	at := time.Date(2024, time.March, 9, 8, 7, 6, 123456789, time.UTC)
	engine := coerce.NewEngine(coerce.WithClock(func() time.Time { return at }))
	d, err := declare.FromValue(timedObject{})
	require.NoError(t, err)
	w := output.NewMemoryWriter()

	// --- Act ---
	_, err = compiler.New(w, compiler.WithEngine(engine)).CompileAll(context.Background(), []*declare.Declaration{d})

	// --- Assert ---
	require.NoError(t, err)
	doc, ok := w.Get("Custom/TimedObject.xml")
	require.True(t, ok)
	obj, err := hostxml.Decode(doc.Data)
	require.NoError(t, err)

	stamps, ok := obj.Attributes["stamps"].(map[string]any)
	require.True(t, ok)
	want, err := engine.Pinned().Coerce("now", coerce.DateType)
	require.NoError(t, err)
	require.True(t, want.(time.Time).Equal(stamps["now"].(time.Time)), "got %v, want %v", stamps["now"], want)
	require.Equal(t, 90*time.Second, obj.Attributes["timeout"])
}

func TestPrint_Dispatch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	reg := registry.New()
	class := rule.ClassName(&Print{})
	require.NoError(t, reg.Register(class, func() (rule.Executable, error) {
		p := &Print{out: &buf}
		return p, p.Init()
	}))
	d := dispatch.New(reg)

	// --- Act ---
	out, err := d.Dispatch(context.Background(), class, map[string]any{
		"values": map[string]any{"b": "two", "a": "one"},
	})

	// --- Assert ---
	require.NoError(t, err)
	want := "a = \"one\"\nb = \"two\"\n"
	require.Equal(t, want, out)
	require.Equal(t, want, buf.String())
}

func TestPrint_MissingValues(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	(&Module{}).Register(reg)
	d := dispatch.New(reg)

	_, err := d.Dispatch(context.Background(), rule.ClassName(&Print{}), map[string]any{})

	var missing *dispatch.MissingRequiredArgumentError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "values", missing.Name)
}
