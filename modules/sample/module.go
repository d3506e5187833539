// Package sample ships the reference custom object and a Print rule that
// renders a string map.
package sample

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// SampleObject is the reference custom object. NullValue is declared but
// unset, so it never reaches the rendered document.
type SampleObject struct {
	declare.CustomObject `object:"SampleObject"`

	StringValue  string               `attr:"stringValue" value:"single"`
	BooleanValue bool                 `attr:"booleanValue" value:"true"`
	LongValue    int64                `attr:"longValue" value:"5"`
	DateMap      map[string]time.Time `attr:"dateMap" entries:"now=now|02/15/2019 10:35:45=02/15/2019 10:35:45"`
	NullValue    string               `attr:"nullValue"`
}

// Print writes each entry of a map as `key = "value"`, sorted by key, and
// returns the rendered text.
type Print struct {
	declare.Rule `rule:"Print" kind:"FieldValue" description:"Renders a string map one entry per line."`

	Values map[string]string `arg:"values,required" prompt:"Entries to print"`
	Text   string            `arg:"text,return"`

	out io.Writer
}

// Init sends output to stdout unless a writer was set.
func (p *Print) Init() error {
	if p.out == nil {
		p.out = os.Stdout
	}
	return nil
}

// Execute renders the values argument.
func (p *Print) Execute(ctx context.Context, args *rule.Arguments) (any, error) {
	var in struct {
		Values map[string]string `arg:"values"`
	}
	if err := args.Bind(&in); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Printing input", "entries", len(in.Values))

	if len(in.Values) == 0 {
		fmt.Fprintln(p.out, "(empty)")
		return "", nil
	}

	keys := make([]string, 0, len(in.Values))
	for k := range in.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %q\n", k, in.Values[k])
	}
	fmt.Fprint(p.out, b.String())
	return b.String(), nil
}

// Register registers the module's rules.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegisterType(&Print{})
}

// Declarations lists the types compiled into host definitions.
func (m *Module) Declarations() []any {
	return []any{SampleObject{}, &Print{}}
}
