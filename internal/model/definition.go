// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the extracted, format-agnostic definitions that the
// synthesizer renders into host documents.
package model

import (
	"github.com/specialistvlad/extforge/internal/coerce"
)

// ObjectKind is the kind of host object a definition produces.
type ObjectKind string

const (
	KindCustom ObjectKind = "Custom"
	KindRule   ObjectKind = "Rule"
)

// Definition is implemented by every extracted definition.
type Definition interface {
	DefinitionKind() ObjectKind
	DefinitionName() string
}

// AttributeDeclaration is one named, typed value of a custom object.
type AttributeDeclaration struct {
	Name string
	Type coerce.TypeDescriptor
	// Value is the coerced value. It is never nil: attributes without a
	// value are omitted during extraction.
	Value      any
	Collection bool
}

// CustomObjectDefinition is a named bag of attributes.
type CustomObjectDefinition struct {
	ObjectName string
	Attributes []AttributeDeclaration
	// Source is the declaration the definition was extracted from.
	Source string
}

func (d *CustomObjectDefinition) DefinitionKind() ObjectKind { return KindCustom }
func (d *CustomObjectDefinition) DefinitionName() string     { return d.ObjectName }

// Attribute returns the attribute with the given name.
func (d *CustomObjectDefinition) Attribute(name string) (AttributeDeclaration, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeDeclaration{}, false
}

// ArgumentDeclaration is one input or return argument of a rule signature.
type ArgumentDeclaration struct {
	Name         string
	Type         coerce.TypeDescriptor
	Direction    Direction
	Prompt       string
	Required     bool
	IsReturnType bool
}

// RuleDefinition is an invocable rule bound to a source class.
type RuleDefinition struct {
	RuleName string
	RuleKind RuleKind
	// DeclaredKinds is the raw kind list from the marker; exactly one entry
	// is valid.
	DeclaredKinds   []string
	SourceClassName string
	Description     string
	Arguments       []ArgumentDeclaration
}

func (d *RuleDefinition) DefinitionKind() ObjectKind { return KindRule }
func (d *RuleDefinition) DefinitionName() string     { return d.RuleName }

// Inputs returns the INPUT-direction arguments in declaration order.
func (d *RuleDefinition) Inputs() []ArgumentDeclaration {
	var out []ArgumentDeclaration
	for _, a := range d.Arguments {
		if a.Direction == DirectionInput {
			out = append(out, a)
		}
	}
	return out
}

// Returns returns the RETURN-direction arguments in declaration order.
func (d *RuleDefinition) Returns() []ArgumentDeclaration {
	var out []ArgumentDeclaration
	for _, a := range d.Arguments {
		if a.Direction == DirectionReturn {
			out = append(out, a)
		}
	}
	return out
}

// ReturnType returns the argument flagged as the rule's return type.
func (d *RuleDefinition) ReturnType() (ArgumentDeclaration, bool) {
	for _, a := range d.Arguments {
		if a.IsReturnType {
			return a, true
		}
	}
	return ArgumentDeclaration{}, false
}
