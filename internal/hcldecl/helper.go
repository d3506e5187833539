package hcldecl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined reports whether an optional attribute was present in the
// source. The decoder fills omitted optional expressions with zero-width
// placeholders, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// literalTokens evaluates a `value` expression into string tokens. A tuple,
// list or set yields one token per element and reports multi as true.
func literalTokens(expr hcl.Expression) (tokens []string, multi bool, diags hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.IsNull() {
		return nil, false, diags
	}

	ty := val.Type()
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			s, err := token(ev)
			if err != nil {
				return nil, true, append(diags, exprError(expr, "Invalid attribute value", err))
			}
			if s != nil {
				tokens = append(tokens, *s)
			}
		}
		return tokens, true, diags
	}

	s, err := token(val)
	if err != nil {
		return nil, false, append(diags, exprError(expr, "Invalid attribute value", err))
	}
	if s != nil {
		tokens = append(tokens, *s)
	}
	return tokens, false, diags
}

type entry struct {
	key   string
	value *string
}

// literalEntries evaluates an `entries` expression, which must be an object
// or map of primitive values. Entries are returned in key order.
func literalEntries(expr hcl.Expression) ([]entry, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.IsNull() {
		return nil, diags
	}

	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, append(diags, exprError(expr, "Invalid entries", fmt.Errorf("entries must be an object, got %s", ty.FriendlyName())))
	}

	var out []entry
	for it := val.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		s, err := token(ev)
		if err != nil {
			return nil, append(diags, exprError(expr, "Invalid entries", fmt.Errorf("entry %q: %w", k.AsString(), err)))
		}
		out = append(out, entry{key: k.AsString(), value: s})
	}
	return out, diags
}

// token renders a primitive value as its literal string. Null yields nil.
func token(v cty.Value) (*string, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsPrimitiveType() {
		return nil, fmt.Errorf("literal must be a string, number or bool, got %s", v.Type().FriendlyName())
	}
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return nil, err
	}
	s := sv.AsString()
	return &s, nil
}

// stringList evaluates an expression that is either one string or a list of
// strings.
func stringList(expr hcl.Expression) ([]string, hcl.Diagnostics) {
	if !isExprDefined(expr) {
		return nil, nil
	}
	tokens, _, diags := literalTokens(expr)
	return tokens, diags
}

func exprError(expr hcl.Expression, summary string, err error) *hcl.Diagnostic {
	r := expr.Range()
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
		Subject:  &r,
	}
}
