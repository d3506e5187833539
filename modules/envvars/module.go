// Package envvars provides a BuildMap rule that exposes the process
// environment as a map.
package envvars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnvVars returns the environment variables whose names start with prefix.
// With trimPrefix set the prefix is removed from the returned keys.
type EnvVars struct {
	declare.Rule `rule:"Environment Variables" kind:"BuildMap" description:"Builds a map from the process environment."`

	Prefix     string            `arg:"prefix" prompt:"Only variables starting with this prefix"`
	TrimPrefix bool              `arg:"trimPrefix" prompt:"Strip the prefix from returned names"`
	All        map[string]string `arg:"all,return"`

	environ func() []string
}

func (e *EnvVars) Init() error {
	if e.environ == nil {
		e.environ = os.Environ
	}
	return nil
}

func (e *EnvVars) Execute(ctx context.Context, args *rule.Arguments) (any, error) {
	var in struct {
		Prefix     string `arg:"prefix"`
		TrimPrefix bool   `arg:"trimPrefix"`
	}
	if err := args.Bind(&in); err != nil {
		return nil, err
	}

	envMap := make(map[string]string)
	for _, kv := range e.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, in.Prefix) {
			continue
		}
		if in.TrimPrefix {
			name = strings.TrimPrefix(name, in.Prefix)
			if name == "" {
				continue
			}
		}
		envMap[name] = value
	}
	ctxlog.FromContext(ctx).Debug("Collected environment variables.", "prefix", in.Prefix, "count", len(envMap))
	return envMap, nil
}

// Register registers the module's rules.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegisterType(&EnvVars{})
}

// Declarations lists the types compiled into host definitions.
func (m *Module) Declarations() []any {
	return []any{&EnvVars{}}
}
