package hostxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Node is a parsed element.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*Node    `xml:",any"`
}

// AttrValue returns the value of the named attribute.
func (n *Node) AttrValue(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

// Parse reads a document into its root node.
func Parse(data []byte) (*Node, error) {
	var root Node
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse host XML: %w", err)
	}
	return &root, nil
}

// Object is the decoded view of a host document.
type Object struct {
	Element    string
	Attrs      map[string]string
	Attributes map[string]any
	Root       *Node
}

// Decode parses a document and decodes its Attributes map, if any.
func Decode(data []byte) (*Object, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, err
	}

	obj := &Object{
		Element: root.XMLName.Local,
		Attrs:   make(map[string]string, len(root.Attrs)),
		Root:    root,
	}
	for _, a := range root.Attrs {
		obj.Attrs[a.Name.Local] = a.Value
	}

	if attrs := root.Child("Attributes"); attrs != nil {
		if m := attrs.Child("Map"); m != nil {
			v, err := DecodeValue(m)
			if err != nil {
				return nil, fmt.Errorf("decode attributes: %w", err)
			}
			obj.Attributes = v.(map[string]any)
		}
	}
	return obj, nil
}

// DecodeValue is the inverse of ValueElement.
func DecodeValue(n *Node) (any, error) {
	text := strings.TrimSpace(n.Text)

	switch n.XMLName.Local {
	case "String":
		return n.Text, nil
	case "Boolean":
		return strconv.ParseBool(text)
	case "Integer":
		return strconv.Atoi(text)
	case "Long":
		return strconv.ParseInt(text, 10, 64)
	case "Double":
		return strconv.ParseFloat(text, 64)
	case "Date":
		ms, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		return time.UnixMilli(ms), nil
	case "Duration":
		ns, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("duration: %w", err)
		}
		return time.Duration(ns), nil
	case "List":
		out := make([]any, 0, len(n.Children))
		for i, c := range n.Children {
			v, err := DecodeValue(c)
			if err != nil {
				return nil, fmt.Errorf("list item %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case "Map":
		out := make(map[string]any, len(n.Children))
		for _, entry := range n.Children {
			key, _ := entry.AttrValue("key")
			if s, ok := entry.AttrValue("value"); ok {
				out[key] = s
				continue
			}
			holder := entry.Child("value")
			if holder == nil || len(holder.Children) == 0 {
				continue
			}
			v, err := DecodeValue(holder.Children[0])
			if err != nil {
				return nil, fmt.Errorf("map entry %q: %w", key, err)
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: element <%s>", ErrUnsupportedValue, n.XMLName.Local)
	}
}
