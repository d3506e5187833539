package declare

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/extforge/internal/coerce"
)

// CustomObject is embedded in a struct to declare a custom object. The
// object name comes from the `object` tag on the embedded field.
type CustomObject struct{}

// Rule is embedded in a struct to declare a rule. Tags on the embedded
// field: `rule` (rule name), `kind` (pipe-separated rule kinds) and
// `description`.
type Rule struct{}

// Method is a method-level argument marker.
type Method struct {
	Name     string
	Argument ArgumentMarker
}

// MethodDeclarer is implemented by rule types whose methods carry argument
// markers.
type MethodDeclarer interface {
	DeclaredMethods() []Method
}

var (
	ErrNotStruct          = errors.New("declaration must be a struct type")
	ErrConflictingMarkers = errors.New("type carries more than one type marker")
	ErrBadTag             = errors.New("malformed declaration tag")

	customObjectType   = reflect.TypeOf(CustomObject{})
	ruleType           = reflect.TypeOf(Rule{})
	methodDeclarerType = reflect.TypeOf((*MethodDeclarer)(nil)).Elem()
)

// TypeName returns the fully-qualified identifier of a Go type.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// FromValue builds the declaration of v's type.
func FromValue(v any) (*Declaration, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrNotStruct)
	}
	return FromType(reflect.TypeOf(v))
}

// FromType builds the declaration of a struct type from its tags.
//
// Attribute fields use `attr:"name[,collection]"` with literals in
// `value:"a|b"` or, for maps, `entries:"key=value|key=value"`. Argument
// fields use `arg:"name[,required][,return][,input]"`, `prompt` and
// `argtype`. A field tagged `arguments` holds the nested argument container.
func FromType(t reflect.Type) (*Declaration, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	decl := &Declaration{
		Kind: KindType,
		Name: TypeName(t),
		Pos:  TypeName(t),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		if f.Anonymous && (f.Type == customObjectType || f.Type == ruleType) {
			if decl.Marker != nil {
				return nil, fmt.Errorf("%s: %w", decl.Name, ErrConflictingMarkers)
			}
			decl.Marker = typeMarker(f)
			continue
		}
		if !f.IsExported() {
			continue
		}

		if _, ok := f.Tag.Lookup("arguments"); ok {
			container, err := FromType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: arguments container: %w", decl.Name, f.Name, err)
			}
			decl.Arguments = container
			continue
		}

		member, err := fieldDeclaration(decl.Name, f)
		if err != nil {
			return nil, err
		}
		if member != nil {
			decl.Members = append(decl.Members, member)
		}
	}

	if reflect.PointerTo(t).Implements(methodDeclarerType) {
		inst := reflect.New(t).Interface().(MethodDeclarer)
		for _, m := range inst.DeclaredMethods() {
			arg := m.Argument
			decl.Members = append(decl.Members, &Declaration{
				Kind:     KindMethod,
				Name:     m.Name,
				Type:     coerce.AnyType,
				Argument: &arg,
				Pos:      decl.Name + "." + m.Name,
			})
		}
	}

	return decl, nil
}

func typeMarker(f reflect.StructField) *TypeMarker {
	m := &TypeMarker{Description: f.Tag.Get("description")}
	if f.Type == customObjectType {
		m.Kind = MarkerCustomObject
		m.Name = strings.TrimSpace(f.Tag.Get("object"))
		return m
	}
	m.Kind = MarkerRule
	m.Name = strings.TrimSpace(f.Tag.Get("rule"))
	for _, k := range strings.Split(f.Tag.Get("kind"), "|") {
		if k = strings.TrimSpace(k); k != "" {
			m.RuleKinds = append(m.RuleKinds, k)
		}
	}
	return m
}

func fieldDeclaration(owner string, f reflect.StructField) (*Declaration, error) {
	attrTag, hasAttr := f.Tag.Lookup("attr")
	argTag, hasArg := f.Tag.Lookup("arg")
	if !hasAttr && !hasArg {
		return nil, nil
	}

	pos := owner + "." + f.Name
	typ, err := coerce.FromGoType(f.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pos, err)
	}

	member := &Declaration{
		Kind: KindField,
		Name: f.Name,
		Type: typ,
		Pos:  pos,
	}

	if hasAttr {
		attrs, err := attributeMarkers(attrTag, f.Tag)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		member.Attributes = attrs
	}

	if hasArg {
		arg, err := argumentMarker(argTag, f.Tag)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		member.Argument = arg
	}

	return member, nil
}

func attributeMarkers(attrTag string, tag reflect.StructTag) ([]AttributeMarker, error) {
	parts := strings.Split(attrTag, ",")
	name := strings.TrimSpace(parts[0])
	collection := false
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "collection":
			collection = true
		case "":
		default:
			return nil, fmt.Errorf("%w: unknown attr option %q", ErrBadTag, opt)
		}
	}

	var markers []AttributeMarker
	if values := splitTokens(tag.Get("value")); len(values) > 0 {
		markers = append(markers, AttributeMarker{Name: name, Values: values, Collection: collection})
	}
	for _, entry := range splitTokens(tag.Get("entries")) {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("%w: entry %q has no '='", ErrBadTag, entry)
		}
		markers = append(markers, AttributeMarker{
			Name:       name,
			Key:        key,
			HasKey:     true,
			Values:     []string{value},
			Collection: collection,
		})
	}
	if len(markers) == 0 {
		markers = append(markers, AttributeMarker{Name: name, Collection: collection})
	}
	return markers, nil
}

func argumentMarker(argTag string, tag reflect.StructTag) (*ArgumentMarker, error) {
	parts := strings.Split(argTag, ",")
	arg := &ArgumentMarker{
		Name:   strings.TrimSpace(parts[0]),
		Prompt: tag.Get("prompt"),
		Type:   strings.TrimSpace(tag.Get("argtype")),
	}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "required":
			arg.Required = true
		case "return":
			arg.Return = true
		case "input":
			arg.Direction = DirectionInput
		case "":
		default:
			return nil, fmt.Errorf("%w: unknown arg option %q", ErrBadTag, opt)
		}
	}
	return arg, nil
}

// splitTokens splits a pipe-separated literal list. An empty tag yields no
// tokens.
func splitTokens(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
