// Package hostxml reads and writes the host platform's native object XML:
// a DOCTYPE-declared root element whose values are encoded as typed
// elements (String, Boolean, Integer, Long, Double, Date, List, Map).
package hostxml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Element is a node of a document being written.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Children []*Element
}

// NewElement returns an element with the given name.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// Attr appends an attribute and returns e.
func (e *Element) Attr(name, value string) *Element {
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

// SetText sets the character data of a leaf element and returns e.
func (e *Element) SetText(text string) *Element {
	e.Text = text
	return e
}

// Add appends non-nil children and returns e.
func (e *Element) Add(children ...*Element) *Element {
	for _, c := range children {
		if c != nil {
			e.Children = append(e.Children, c)
		}
	}
	return e
}

// Header is the XML declaration every document starts with.
const Header = `<?xml version='1.0' encoding='UTF-8'?>`

// Write renders root as a complete document declared against dtd.
func Write(w io.Writer, dtd string, root *Element) error {
	if _, err := fmt.Fprintf(w, "%s\n<!DOCTYPE %s PUBLIC %q %q>\n", Header, root.Name, dtd, dtd); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := encodeElement(enc, root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeElement(enc *xml.Encoder, e *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}, Attr: e.Attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := encodeElement(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
