package coerce

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ParseTypeExpression parses a type expression such as `long`, `map(date)`
// or `"Identity"` in HCL native syntax.
func ParseTypeExpression(src string) (TypeDescriptor, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "type", hcl.InitialPos)
	if diags.HasErrors() {
		return TypeDescriptor{}, fmt.Errorf("%w: type %q: %s", ErrInvalidType, src, diags.Error())
	}
	return TypeFromExpression(expr)
}

// TypeFromExpression converts a parsed type expression. Collections take a
// single scalar element type; nesting is rejected because literals cannot
// express it.
func TypeFromExpression(expr hcl.Expression) (TypeDescriptor, error) {
	switch v := expr.(type) {
	case nil:
		return AnyType, nil

	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return TypeDescriptor{}, fmt.Errorf("%w: type constructor %s() requires exactly one argument, got %d", ErrInvalidType, v.Name, len(v.Args))
		}
		elem, err := TypeFromExpression(v.Args[0])
		if err != nil {
			return TypeDescriptor{}, err
		}
		if elem.IsCollection() || elem.IsMap() {
			return TypeDescriptor{}, fmt.Errorf("%w: %s(%s): nested collection types are not supported", ErrInvalidType, v.Name, elem)
		}

		switch v.Name {
		case "list":
			return ListOf(elem), nil
		case "set":
			return SetOf(elem), nil
		case "map":
			return MapOf(elem), nil
		default:
			return TypeDescriptor{}, fmt.Errorf("%w: unknown type constructor function %q", ErrInvalidType, v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return TypeDescriptor{}, fmt.Errorf("%w: type keyword must be a single identifier", ErrInvalidType)
		}
		return ParseTypeName(v.Traversal.RootName())

	case *hclsyntax.TemplateExpr:
		if len(v.Parts) == 1 {
			if lit, ok := v.Parts[0].(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type() == cty.String {
				return ParseTypeName(lit.Val.AsString())
			}
		}
		return TypeDescriptor{}, fmt.Errorf("%w: quoted type names must be plain strings without interpolation", ErrInvalidType)

	default:
		return TypeDescriptor{}, fmt.Errorf("%w: unsupported expression for type definition: %T", ErrInvalidType, v)
	}
}
