// Package impex builds and encodes the hierarchical import documents consumed by the
// catalog import jobs.
package impex

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const indent = "  "

// Attr is a single element attribute. Attribute order is preserved on output.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of an import document.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// NewElement creates an element carrying attrs in the given order.
func NewElement(name string, attrs ...Attr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

// Append adds children and returns the receiver.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Attr returns the value of an attribute and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildNames lists the names of the direct children in document order.
func (e *Element) ChildNames() []string {
	names := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		names = append(names, c.Name)
	}
	return names
}

// Document is a complete import document.
type Document struct {
	Root *Element
}

// Empty reports whether the document carries no item body.
func (d *Document) Empty() bool {
	return d == nil || d.Root == nil || len(d.Root.Children) == 0
}

// Encode writes the document as UTF-8 XML 1.0 with two-space indentation.
// Parameters:
//   - w: destination stream; it is flushed but not closed.
// Returns:
//   - error: non-nil if writing fails.
func (d *Document) Encode(w io.Writer) error {
	if d == nil || d.Root == nil {
		return fmt.Errorf("impex: document has no root element")
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n"); err != nil {
		return err
	}
	if err := writeElement(bw, d.Root, 0); err != nil {
		return err
	}
	return bw.Flush()
}

// String renders the document, mostly for logs and tests.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Encode(&b); err != nil {
		return ""
	}
	return b.String()
}

func writeElement(w *bufio.Writer, e *Element, depth int) error {
	pad := strings.Repeat(indent, depth)
	w.WriteString(pad)
	w.WriteByte('<')
	w.WriteString(e.Name)
	for _, a := range e.Attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		if err := xml.EscapeText(w, []byte(a.Value)); err != nil {
			return err
		}
		w.WriteByte('"')
	}

	switch {
	case len(e.Children) > 0:
		w.WriteString(">\n")
		for _, c := range e.Children {
			if err := writeElement(w, c, depth+1); err != nil {
				return err
			}
		}
		w.WriteString(pad)
		w.WriteString("</" + e.Name + ">\n")
	case e.Text != "":
		w.WriteByte('>')
		if err := xml.EscapeText(w, []byte(e.Text)); err != nil {
			return err
		}
		w.WriteString("</" + e.Name + ">\n")
	default:
		w.WriteString("/>\n")
	}

	// bufio.Writer keeps the first write error; Encode reports it on Flush.
	return nil
}
