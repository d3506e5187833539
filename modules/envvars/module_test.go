package envvars

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/dispatch"
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

func newDispatcher(t *testing.T, environ ...string) (*dispatch.Dispatcher, string) {
	t.Helper()
	reg := registry.New()
	class := rule.ClassName(&EnvVars{})
	require.NoError(t, reg.Register(class, func() (rule.Executable, error) {
		return &EnvVars{environ: func() []string { return environ }}, nil
	}))
	return dispatch.New(reg), class
}

func TestEnvVars(t *testing.T) {
	t.Parallel()

	environ := []string{"APP_HOST=db", "APP_PORT=5432", "APP_=x", "HOME=/root", "BROKEN"}

	testCases := []struct {
		name string
		args map[string]any
		want map[string]string
	}{
		{
			name: "no prefix returns everything well formed",
			args: map[string]any{},
			want: map[string]string{"APP_HOST": "db", "APP_PORT": "5432", "APP_": "x", "HOME": "/root"},
		},
		{
			name: "prefix filters",
			args: map[string]any{"prefix": "APP_"},
			want: map[string]string{"APP_HOST": "db", "APP_PORT": "5432", "APP_": "x"},
		},
		{
			name: "trimPrefix coerced from string",
			args: map[string]any{"prefix": "APP_", "trimPrefix": "true"},
			want: map[string]string{"HOST": "db", "PORT": "5432"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			d, class := newDispatcher(t, environ...)

			// --- Act ---
			out, err := d.Dispatch(context.Background(), class, tc.args)

			// --- Assert ---
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, out); diff != "" {
				t.Errorf("environment map mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnvVars_Describe(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	(&Module{}).Register(reg)
	d := dispatch.New(reg)

	def, err := d.Describe(context.Background(), rule.ClassName(&EnvVars{}))

	require.NoError(t, err)
	require.Len(t, def, 3)
}
