package hcldecl

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
)

// translateObject converts a custom_object block into a type declaration.
func (l *Loader) translateObject(ctx context.Context, b *objectBlock) (*declare.Declaration, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx).With("custom_object", b.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating custom_object block.")

	decl := &declare.Declaration{
		Kind: declare.KindType,
		Name: b.Name,
		Marker: &declare.TypeMarker{
			Kind:        declare.MarkerCustomObject,
			Name:        b.Name,
			Description: b.Description,
		},
		Pos: b.DeclRange.String(),
	}

	var diags hcl.Diagnostics
	for _, a := range b.Attributes {
		member, more := l.translateAttribute(ctx, a)
		diags = append(diags, more...)
		if member != nil {
			decl.Members = append(decl.Members, member)
		}
	}
	return decl, diags
}

func (l *Loader) translateAttribute(ctx context.Context, a *attributeBlock) (*declare.Declaration, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	typ, err := typeExprToDescriptor(ctx, a.Type)
	if err != nil {
		return nil, append(diags, exprError(a.Type, "Invalid attribute type", err))
	}

	member := &declare.Declaration{
		Kind: declare.KindField,
		Name: a.Name,
		Type: typ,
		Pos:  a.DeclRange.String(),
	}
	collection := a.Collection != nil && *a.Collection

	hasValue, hasEntries := isExprDefined(a.Value), isExprDefined(a.Entries)
	switch {
	case hasValue && hasEntries:
		r := a.DeclRange
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Conflicting attribute literals",
			Detail:   "An attribute sets either value or entries, not both.",
			Subject:  &r,
		})
	case hasValue:
		tokens, multi, more := literalTokens(a.Value)
		diags = append(diags, more...)
		member.Attributes = []declare.AttributeMarker{{
			Name:       a.Name,
			Values:     tokens,
			Collection: collection || multi,
		}}
	case hasEntries:
		entries, more := literalEntries(a.Entries)
		diags = append(diags, more...)
		for _, e := range entries {
			m := declare.AttributeMarker{Name: a.Name, Key: e.key, HasKey: true, Collection: collection}
			if e.value != nil {
				m.Values = []string{*e.value}
			}
			member.Attributes = append(member.Attributes, m)
		}
		if len(entries) == 0 {
			member.Attributes = []declare.AttributeMarker{{Name: a.Name, Collection: collection}}
		}
	default:
		member.Attributes = []declare.AttributeMarker{{Name: a.Name, Collection: collection}}
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return member, diags
}

// translateRule converts a rule block into a type declaration whose
// identifier is the implementing class.
func (l *Loader) translateRule(ctx context.Context, b *ruleBlock) (*declare.Declaration, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx).With("rule", b.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating rule block.")

	kinds, diags := stringList(b.Kind)
	decl := &declare.Declaration{
		Kind: declare.KindType,
		Name: strings.TrimSpace(b.Class),
		Marker: &declare.TypeMarker{
			Kind:        declare.MarkerRule,
			Name:        b.Name,
			RuleKinds:   kinds,
			Description: b.Description,
		},
		Pos: b.DeclRange.String(),
	}

	for _, a := range b.Arguments {
		typ, err := typeExprToDescriptor(ctx, a.Type)
		if err != nil {
			diags = append(diags, exprError(a.Type, "Invalid argument type", err))
			continue
		}
		marker := &declare.ArgumentMarker{
			Name:     a.Name,
			Required: a.Required != nil && *a.Required,
			Return:   a.Return != nil && *a.Return,
		}
		if a.Prompt != nil {
			marker.Prompt = *a.Prompt
		}
		if a.Direction != nil {
			marker.Direction = *a.Direction
		}
		decl.Members = append(decl.Members, &declare.Declaration{
			Kind:     declare.KindField,
			Name:     a.Name,
			Type:     typ,
			Argument: marker,
			Pos:      a.DeclRange.String(),
		})
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return decl, diags
}
