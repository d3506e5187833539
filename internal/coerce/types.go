package coerce

import (
	"fmt"
	"strings"
)

// Kind is the top-level shape of a TypeDescriptor.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInteger
	KindLong
	KindDate
	KindAny
	KindOther
	KindList
	KindSet
	KindMap
)

// TypeDescriptor identifies the declared type of an attribute or argument.
// Elem is set for List, Set and Map; Name is set for Other.
type TypeDescriptor struct {
	Kind Kind
	Name string
	Elem *TypeDescriptor
}

var (
	StringType  = TypeDescriptor{Kind: KindString}
	BoolType    = TypeDescriptor{Kind: KindBool}
	IntegerType = TypeDescriptor{Kind: KindInteger}
	LongType    = TypeDescriptor{Kind: KindLong}
	DateType    = TypeDescriptor{Kind: KindDate}
	AnyType     = TypeDescriptor{Kind: KindAny}
)

// OtherType describes a type that only a serializer can produce.
func OtherType(name string) TypeDescriptor {
	return TypeDescriptor{Kind: KindOther, Name: name}
}

// ListOf describes an ordered collection of elem.
func ListOf(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Kind: KindList, Elem: &elem}
}

// SetOf describes a collection of elem without duplicates.
func SetOf(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Kind: KindSet, Elem: &elem}
}

// MapOf describes a string-keyed map of elem.
func MapOf(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Kind: KindMap, Elem: &elem}
}

// IsCollection reports whether t is a list or a set.
func (t TypeDescriptor) IsCollection() bool {
	return t.Kind == KindList || t.Kind == KindSet
}

// IsMap reports whether t is a map.
func (t TypeDescriptor) IsMap() bool {
	return t.Kind == KindMap
}

// IsScalar reports whether t is neither a collection nor a map.
func (t TypeDescriptor) IsScalar() bool {
	return t.Kind != KindInvalid && !t.IsCollection() && !t.IsMap()
}

// Element returns the element type of a collection or map, or AnyType when
// none was declared.
func (t TypeDescriptor) Element() TypeDescriptor {
	if t.Elem == nil {
		return AnyType
	}
	return *t.Elem
}

// Equal reports whether two descriptors describe the same type.
func (t TypeDescriptor) Equal(o TypeDescriptor) bool {
	if t.Kind != o.Kind || t.Name != o.Name {
		return false
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == nil && o.Elem == nil
	}
	return t.Elem.Equal(*o.Elem)
}

// String returns the declaration-syntax name of t, e.g. "map(date)".
func (t TypeDescriptor) String() string {
	switch t.Kind {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInteger:
		return "int"
	case KindLong:
		return "long"
	case KindDate:
		return "date"
	case KindAny:
		return "any"
	case KindOther:
		return t.Name
	case KindList:
		return "list(" + t.Element().String() + ")"
	case KindSet:
		return "set(" + t.Element().String() + ")"
	case KindMap:
		return "map(" + t.Element().String() + ")"
	default:
		return "invalid"
	}
}

// HostName is the type name the host platform uses in rule signatures.
func (t TypeDescriptor) HostName() string {
	switch t.Kind {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInteger:
		return "int"
	case KindLong:
		return "long"
	case KindDate:
		return "Date"
	case KindOther:
		return t.Name
	case KindList:
		return "List"
	case KindSet:
		return "Set"
	case KindMap:
		return "Map"
	default:
		return "Object"
	}
}

// ParseTypeName resolves a bare type name. Unknown identifiers are treated
// as serializer-backed types. Constructors such as list(T) go through
// ParseTypeExpression.
func ParseTypeName(s string) (TypeDescriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeDescriptor{}, fmt.Errorf("%w: empty type name", ErrInvalidType)
	}

	switch strings.ToLower(s) {
	case "string":
		return StringType, nil
	case "bool", "boolean":
		return BoolType, nil
	case "int", "integer":
		return IntegerType, nil
	case "long":
		return LongType, nil
	case "date":
		return DateType, nil
	case "any", "object":
		return AnyType, nil
	}
	if strings.ContainsAny(s, " ()\t") {
		return TypeDescriptor{}, fmt.Errorf("%w: invalid type name %q", ErrInvalidType, s)
	}
	return OtherType(s), nil
}
