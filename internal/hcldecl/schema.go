package hcldecl

import "github.com/hashicorp/hcl/v2"

type fileRoot struct {
	Objects []*objectBlock `hcl:"custom_object,block"`
	Rules   []*ruleBlock   `hcl:"rule,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

type objectBlock struct {
	Name        string            `hcl:"name,label"`
	Description string            `hcl:"description,optional"`
	Attributes  []*attributeBlock `hcl:"attribute,block"`
	DeclRange   hcl.Range         `hcl:",def_range"`
}

type attributeBlock struct {
	Name       string         `hcl:"name,label"`
	Type       hcl.Expression `hcl:"type,optional"`
	Value      hcl.Expression `hcl:"value,optional"`
	Entries    hcl.Expression `hcl:"entries,optional"`
	Collection *bool          `hcl:"collection,optional"`
	DeclRange  hcl.Range      `hcl:",def_range"`
}

type ruleBlock struct {
	Name        string           `hcl:"name,label"`
	Class       string           `hcl:"class"`
	Kind        hcl.Expression   `hcl:"kind,optional"`
	Description string           `hcl:"description,optional"`
	Arguments   []*argumentBlock `hcl:"argument,block"`
	DeclRange   hcl.Range        `hcl:",def_range"`
}

type argumentBlock struct {
	Name      string         `hcl:"name,label"`
	Type      hcl.Expression `hcl:"type,optional"`
	Required  *bool          `hcl:"required,optional"`
	Return    *bool          `hcl:"return,optional"`
	Direction *string        `hcl:"direction,optional"`
	Prompt    *string        `hcl:"prompt,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}
