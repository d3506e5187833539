package hostxml

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWrite_Layout(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m, err := MapElement(map[string]any{"b": true, "a": "x"})
	require.NoError(t, err)
	root := NewElement("Custom").Attr("name", "Sample").Add(NewElement("Attributes").Add(m))

	// --- Act ---
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "object.dtd", root))

	// --- Assert ---
	want := `<?xml version='1.0' encoding='UTF-8'?>
<!DOCTYPE Custom PUBLIC "object.dtd" "object.dtd">
<Custom name="Sample">
  <Attributes>
    <Map>
      <entry key="a" value="x"></entry>
      <entry key="b">
        <value>
          <Boolean>true</Boolean>
        </value>
      </entry>
    </Map>
  </Attributes>
</Custom>
`
	require.Equal(t, want, buf.String())
}

func TestValue_RoundTrip(t *testing.T) {
	t.Parallel()

	when := time.Date(2019, time.February, 15, 10, 35, 45, 0, time.UTC)
	in := map[string]any{
		"string": "single & <escaped>",
		"bool":   false,
		"int":    7,
		"long":   int64(5),
		"double": 2.5,
		"date":   when,
		"period": 90*time.Second + 250*time.Microsecond,
		"list":   []any{"a", int64(1)},
		"nested": map[string]any{"d": when},
	}

	el, err := MapElement(in)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "object.dtd", NewElement("Custom").Add(NewElement("Attributes").Add(el))))

	obj, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "Custom", obj.Element)
	if diff := cmp.Diff(in, obj.Attributes); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestValueElement_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := ValueElement(struct{}{})
	require.ErrorIs(t, err, ErrUnsupportedValue)

	el, err := ValueElement(nil)
	require.NoError(t, err)
	require.Nil(t, el)

	el, err = ValueElement([]string{"x", "y"})
	require.NoError(t, err)
	require.Equal(t, "List", el.Name)
	require.Len(t, el.Children, 2)
}
