package hcldecl

import (
	"context"

	"github.com/hashicorp/hcl/v2"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/ctxlog"
)

// typeExprToDescriptor converts an HCL type expression such as `long`,
// `map(date)` or `"Identity"` into a type descriptor. An omitted expression
// yields AnyType.
func typeExprToDescriptor(ctx context.Context, expr hcl.Expression) (coerce.TypeDescriptor, error) {
	if !isExprDefined(expr) {
		return coerce.AnyType, nil
	}
	t, err := coerce.TypeFromExpression(expr)
	if err != nil {
		return coerce.TypeDescriptor{}, err
	}
	ctxlog.FromContext(ctx).Debug("Parsed type expression.", "type", t.String())
	return t, nil
}
