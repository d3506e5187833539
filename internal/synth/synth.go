// Package synth renders extracted definitions into host XML documents.
package synth

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/extforge/internal/hostxml"
	"github.com/specialistvlad/extforge/internal/model"
)

// DefaultDTD is the system identifier written in every DOCTYPE.
const DefaultDTD = "object.dtd"

// Document is one rendered host object.
type Document struct {
	Kind model.ObjectKind
	Name string
	// LogicalName is the relative path the document is stored under,
	// e.g. "Custom/SampleObject.xml".
	LogicalName string
	Data        []byte
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithDTD overrides the DOCTYPE system identifier.
func WithDTD(dtd string) Option {
	return func(s *Synthesizer) { s.dtd = dtd }
}

// Synthesizer renders definitions. Output is deterministic for equal input.
type Synthesizer struct {
	dtd string
}

// New returns a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{dtd: DefaultDTD}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render dispatches on the definition kind.
func (s *Synthesizer) Render(def model.Definition) (Document, error) {
	switch d := def.(type) {
	case *model.CustomObjectDefinition:
		return s.RenderCustomObject(d)
	case *model.RuleDefinition:
		return s.RenderRule(d)
	default:
		return Document{}, fmt.Errorf("cannot render definition of type %T", def)
	}
}

// RenderCustomObject writes <Custom name> with an Attributes map.
func (s *Synthesizer) RenderCustomObject(def *model.CustomObjectDefinition) (Document, error) {
	values := make(map[string]any, len(def.Attributes))
	for _, a := range def.Attributes {
		values[a.Name] = a.Value
	}
	m, err := hostxml.MapElement(values)
	if err != nil {
		return Document{}, fmt.Errorf("custom object %q: %w", def.ObjectName, err)
	}

	root := hostxml.NewElement("Custom").Attr("name", def.ObjectName)
	if len(m.Children) > 0 {
		root.Add(hostxml.NewElement("Attributes").Add(m))
	}
	return s.document(model.KindCustom, def.ObjectName, root)
}

// RenderRule writes <Rule name type> with its Signature and Source.
func (s *Synthesizer) RenderRule(def *model.RuleDefinition) (Document, error) {
	root := hostxml.NewElement("Rule").
		Attr("name", def.RuleName).
		Attr("type", string(def.RuleKind))

	if def.Description != "" {
		root.Add(hostxml.NewElement("Description").SetText(def.Description))
	}

	sig := hostxml.NewElement("Signature")
	if ret, ok := def.ReturnType(); ok {
		sig.Attr("returnType", ret.Type.HostName())
	}
	if inputs := def.Inputs(); len(inputs) > 0 {
		sig.Add(argumentList("Inputs", inputs))
	}
	if returns := def.Returns(); len(returns) > 0 {
		sig.Add(argumentList("Returns", returns))
	}
	root.Add(sig)
	root.Add(hostxml.NewElement("Source").SetText(def.SourceClassName))

	return s.document(model.KindRule, def.RuleName, root)
}

func argumentList(name string, args []model.ArgumentDeclaration) *hostxml.Element {
	list := hostxml.NewElement(name)
	for _, a := range args {
		el := hostxml.NewElement("Argument").
			Attr("name", a.Name).
			Attr("type", a.Type.HostName())
		if a.Required {
			el.Attr("required", strconv.FormatBool(true))
		}
		if a.Prompt != "" {
			el.Add(hostxml.NewElement("Prompt").SetText(a.Prompt))
		}
		list.Add(el)
	}
	return list
}

func (s *Synthesizer) document(kind model.ObjectKind, name string, root *hostxml.Element) (Document, error) {
	var buf bytes.Buffer
	if err := hostxml.Write(&buf, s.dtd, root); err != nil {
		return Document{}, fmt.Errorf("%s %q: %w", kind, name, err)
	}
	return Document{
		Kind:        kind,
		Name:        name,
		LogicalName: LogicalName(kind, name),
		Data:        buf.Bytes(),
	}, nil
}

var unsafeFileChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// LogicalName is the relative storage path for a rendered object.
func LogicalName(kind model.ObjectKind, name string) string {
	return string(kind) + "/" + unsafeFileChars.Replace(name) + ".xml"
}
