package coerce

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTypeName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want TypeDescriptor
	}{
		{in: "string", want: StringType},
		{in: "Boolean", want: BoolType},
		{in: "long", want: LongType},
		{in: "Identity", want: OtherType("Identity")},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTypeName(tc.in)
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}

	for _, bad := range []string{"", "list(long)", "two words"} {
		_, err := ParseTypeName(bad)
		require.ErrorIs(t, err, ErrInvalidType, "expected %q to be rejected", bad)
	}
}

func TestParseTypeExpression(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want TypeDescriptor
	}{
		{in: "string", want: StringType},
		{in: "Boolean", want: BoolType},
		{in: "list(date)", want: ListOf(DateType)},
		{in: "set(Identity)", want: SetOf(OtherType("Identity"))},
		{in: "map(long)", want: MapOf(LongType)},
		{in: `"Identity"`, want: OtherType("Identity")},
		{in: "Identity", want: OtherType("Identity")},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTypeExpression(tc.in)
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}

	for _, bad := range []string{
		"",
		"list(long",
		"tuple(string)",
		"List(string)",
		"list(list(string))",
		"map(list(long))",
		"list(string, long)",
		"two words",
		`"${x}"`,
	} {
		_, err := ParseTypeExpression(bad)
		require.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestFromGoType(t *testing.T) {
	t.Parallel()

	type identity struct{ Name string }

	testCases := []struct {
		name string
		typ  reflect.Type
		want TypeDescriptor
	}{
		{name: "string", typ: reflect.TypeOf(""), want: StringType},
		{name: "int64", typ: reflect.TypeOf(int64(0)), want: LongType},
		{name: "time", typ: reflect.TypeOf(time.Time{}), want: DateType},
		{name: "duration", typ: reflect.TypeOf(time.Second), want: OtherType("duration")},
		{name: "map of dates", typ: reflect.TypeOf(map[string]time.Time{}), want: MapOf(DateType)},
		{name: "set", typ: reflect.TypeOf(map[string]struct{}{}), want: SetOf(StringType)},
		{name: "slice", typ: reflect.TypeOf([]bool{}), want: ListOf(BoolType)},
		{name: "struct", typ: reflect.TypeOf(identity{}), want: OtherType("identity")},
		{name: "pointer", typ: reflect.TypeOf(new(int)), want: IntegerType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromGoType(tc.typ)
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}

	_, err := FromGoType(reflect.TypeOf(map[int]string{}))
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestTypeDescriptor_HostName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "boolean", BoolType.HostName())
	require.Equal(t, "Map", MapOf(DateType).HostName())
	require.Equal(t, "Identity", OtherType("Identity").HostName())
	require.Equal(t, "map(date)", MapOf(DateType).String())
}
