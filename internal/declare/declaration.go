// Package declare holds the structural view of an extension declaration: a
// type, its members, and the markers attached to each. Declarations are
// produced from Go types (struct tags) or from HCL files and consumed by the
// extractor.
package declare

import (
	"fmt"

	"github.com/specialistvlad/extforge/internal/coerce"
)

// DeclarationKind tags what a Declaration node describes.
type DeclarationKind int

const (
	KindType DeclarationKind = iota + 1
	KindField
	KindMethod
)

func (k DeclarationKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return fmt.Sprintf("DeclarationKind(%d)", int(k))
	}
}

// MarkerKind selects which definition a type declaration produces.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerCustomObject
	MarkerRule
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerCustomObject:
		return "custom_object"
	case MarkerRule:
		return "rule"
	default:
		return "none"
	}
}

// TypeMarker is the marker attached to a type declaration.
type TypeMarker struct {
	Kind        MarkerKind
	Name        string
	RuleKinds   []string
	Description string
}

// AttributeMarker declares one literal of a custom object attribute. A
// member may carry several, one per map entry.
type AttributeMarker struct {
	Name       string
	Key        string
	HasKey     bool
	Values     []string
	Collection bool
}

// Direction values accepted on an ArgumentMarker.
const (
	DirectionInput  = "input"
	DirectionReturn = "return"
)

// ArgumentMarker declares one rule argument.
type ArgumentMarker struct {
	Name      string
	Prompt    string
	Required  bool
	Return    bool
	Direction string
	Type      string
}

// Declaration is one node of the structural tree.
type Declaration struct {
	Kind DeclarationKind
	// Name is the fully-qualified identifier of a type, or the bare
	// identifier of a member.
	Name string
	// Type is the declared type of a field or method argument.
	Type coerce.TypeDescriptor

	Marker     *TypeMarker
	Attributes []AttributeMarker
	Argument   *ArgumentMarker

	Members []*Declaration
	// Arguments is the nested container type whose members are rule
	// arguments.
	Arguments *Declaration

	// Pos is a human-readable origin used in diagnostics.
	Pos string
}

// Provider is implemented by modules that contribute declarations to the
// compile pass.
type Provider interface {
	Declarations() []any
}
