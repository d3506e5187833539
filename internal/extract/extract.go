// Package extract reads the markers of a structural declaration and produces
// the model definition it describes.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/model"
)

var (
	// ErrNotDeclaration is returned for a type that carries no type marker.
	ErrNotDeclaration = errors.New("type has no declaration marker")
	// ErrMarkerTypeMismatch is returned when a marker's literal shape does
	// not fit the member's declared type.
	ErrMarkerTypeMismatch = errors.New("marker does not match member type")
)

// UnsupportedDeclarationError is returned for declaration kinds the
// extractor cannot turn into a definition.
type UnsupportedDeclarationError struct {
	Kind declare.DeclarationKind
	Name string
}

func (e *UnsupportedDeclarationError) Error() string {
	return fmt.Sprintf("unsupported declaration %s %q", e.Kind, e.Name)
}

// Extractor turns declarations into definitions. It is safe for concurrent
// use.
type Extractor struct {
	engine *coerce.Engine
}

// New returns an extractor that coerces literals with engine.
func New(engine *coerce.Engine) *Extractor {
	if engine == nil {
		engine = coerce.NewEngine()
	}
	return &Extractor{engine: engine}
}

// Extract produces the definition selected by the declaration's type marker.
func (x *Extractor) Extract(ctx context.Context, d *declare.Declaration) (model.Definition, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil declaration", ErrNotDeclaration)
	}

	switch d.Kind {
	case declare.KindType:
	default:
		return nil, &UnsupportedDeclarationError{Kind: d.Kind, Name: d.Name}
	}

	if d.Marker == nil {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrNotDeclaration)
	}

	switch d.Marker.Kind {
	case declare.MarkerCustomObject:
		return x.ExtractCustomObject(ctx, d)
	case declare.MarkerRule:
		return x.ExtractRule(ctx, d)
	default:
		return nil, fmt.Errorf("%s: %w", d.Name, ErrNotDeclaration)
	}
}

// ExtractCustomObject reads every attribute marker of d. Attributes whose
// literals are all empty are omitted.
func (x *Extractor) ExtractCustomObject(ctx context.Context, d *declare.Declaration) (*model.CustomObjectDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("declaration", d.Name)

	def := &model.CustomObjectDefinition{
		ObjectName: d.Marker.Name,
		Source:     d.Name,
	}
	if def.ObjectName == "" {
		def.ObjectName = simpleName(d.Name)
	}

	for _, member := range d.Members {
		switch member.Kind {
		case declare.KindField:
		case declare.KindMethod:
			continue
		default:
			return nil, &UnsupportedDeclarationError{Kind: member.Kind, Name: member.Pos}
		}

		for _, group := range groupAttributes(member) {
			attr, ok, err := x.attribute(member, group)
			if err != nil {
				return nil, fmt.Errorf("%s: attribute %q: %w", member.Pos, group.name, err)
			}
			if !ok {
				logger.Debug("Omitting attribute without value.", "attribute", group.name)
				continue
			}
			def.Attributes = append(def.Attributes, attr)
		}
	}

	return def, nil
}

type attributeGroup struct {
	name       string
	collection bool
	literals   []coerce.Literal
	tokens     int
	keyed      bool
}

// groupAttributes merges the markers of one member by attribute name,
// keeping first-appearance order.
func groupAttributes(member *declare.Declaration) []*attributeGroup {
	var groups []*attributeGroup
	byName := make(map[string]*attributeGroup)

	for _, m := range member.Attributes {
		name := m.Name
		if name == "" {
			name = lowerFirst(member.Name)
		}
		g, ok := byName[name]
		if !ok {
			g = &attributeGroup{name: name}
			byName[name] = g
			groups = append(groups, g)
		}
		g.collection = g.collection || m.Collection

		values := nonEmpty(m.Values)
		if m.HasKey {
			g.keyed = true
		}
		if len(values) == 0 {
			continue
		}
		g.tokens += len(values)
		g.literals = append(g.literals, coerce.Literal{Key: m.Key, HasKey: m.HasKey, Values: values})
	}
	return groups
}

func (x *Extractor) attribute(member *declare.Declaration, g *attributeGroup) (model.AttributeDeclaration, bool, error) {
	target := member.Type
	if target.Kind == coerce.KindInvalid || target.Kind == coerce.KindAny {
		target = inferType(g)
	}

	switch {
	case g.keyed && !target.IsMap():
		return model.AttributeDeclaration{}, false, fmt.Errorf("%w: keyed literals on %s", ErrMarkerTypeMismatch, target)
	case target.IsMap() && len(g.literals) > 0 && !g.keyed:
		return model.AttributeDeclaration{}, false, fmt.Errorf("%w: map type without keyed literals", ErrMarkerTypeMismatch)
	case target.IsScalar() && g.collection:
		return model.AttributeDeclaration{}, false, fmt.Errorf("%w: collection marker on %s", ErrMarkerTypeMismatch, target)
	case target.IsScalar() && g.tokens > 1:
		return model.AttributeDeclaration{}, false, fmt.Errorf("%w: %d values for %s", ErrMarkerTypeMismatch, g.tokens, target)
	}

	value, err := x.engine.CoerceLiterals(g.literals, target)
	if err != nil {
		return model.AttributeDeclaration{}, false, err
	}
	if value == nil {
		return model.AttributeDeclaration{}, false, nil
	}

	return model.AttributeDeclaration{
		Name:       g.name,
		Type:       target,
		Value:      value,
		Collection: target.IsCollection(),
	}, true, nil
}

// inferType picks a string-based type for members declared as any.
func inferType(g *attributeGroup) coerce.TypeDescriptor {
	switch {
	case g.keyed:
		return coerce.MapOf(coerce.StringType)
	case g.collection || g.tokens > 1:
		return coerce.ListOf(coerce.StringType)
	default:
		return coerce.StringType
	}
}

// ExtractRule reads the rule marker, member-level and method-level argument
// markers, and the nested arguments container of d.
func (x *Extractor) ExtractRule(ctx context.Context, d *declare.Declaration) (*model.RuleDefinition, error) {
	def := &model.RuleDefinition{
		RuleName:        d.Marker.Name,
		DeclaredKinds:   append([]string(nil), d.Marker.RuleKinds...),
		SourceClassName: d.Name,
		Description:     strings.TrimSpace(d.Marker.Description),
	}
	if def.RuleName == "" {
		def.RuleName = d.Name
	}
	if len(def.DeclaredKinds) == 1 {
		def.RuleKind = model.RuleKind(def.DeclaredKinds[0])
		if k, err := model.ParseRuleKind(def.DeclaredKinds[0]); err == nil {
			def.RuleKind = k
		}
	}

	members := d.Members
	if d.Arguments != nil {
		members = append(append([]*declare.Declaration(nil), members...), d.Arguments.Members...)
	}

	for _, member := range members {
		switch member.Kind {
		case declare.KindField, declare.KindMethod:
		default:
			return nil, &UnsupportedDeclarationError{Kind: member.Kind, Name: member.Pos}
		}
		if member.Argument == nil {
			continue
		}
		arg, err := argument(member)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", member.Pos, err)
		}
		def.Arguments = append(def.Arguments, arg)
	}

	ctxlog.FromContext(ctx).Debug("Extracted rule.", "rule", def.RuleName, "arguments", len(def.Arguments))
	return def, nil
}

func argument(member *declare.Declaration) (model.ArgumentDeclaration, error) {
	m := member.Argument

	arg := model.ArgumentDeclaration{
		Name:         m.Name,
		Type:         member.Type,
		Required:     m.Required,
		IsReturnType: m.Return,
	}
	if arg.Name == "" {
		arg.Name = lowerFirst(member.Name)
	}
	if strings.TrimSpace(m.Prompt) != "" {
		arg.Prompt = m.Prompt
	}
	if m.Type != "" {
		t, err := coerce.ParseTypeExpression(m.Type)
		if err != nil {
			return model.ArgumentDeclaration{}, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		arg.Type = t
	}
	if arg.Type.Kind == coerce.KindInvalid {
		arg.Type = coerce.AnyType
	}

	switch {
	case m.Direction != "":
		dir, err := model.ParseDirection(m.Direction)
		if err != nil {
			return model.ArgumentDeclaration{}, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		arg.Direction = dir
	case m.Return:
		arg.Direction = model.DirectionReturn
	default:
		arg.Direction = model.DirectionInput
	}
	return arg, nil
}

func simpleName(qualified string) string {
	if i := strings.LastIndexAny(qualified, "./"); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
