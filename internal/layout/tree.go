// Package layout turns a resolved resume snapshot into a document tree for
// one of the three visual templates.
package layout

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr is a single element attribute. Attributes keep insertion order so
// serialised output is deterministic.
type Attr struct {
	Key, Val string
}

// Node is an element or, when Tag is empty, a text node.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// El builds an element with an optional class and children. Nil children are
// skipped so optional parts can be passed inline.
func El(tag, class string, children ...*Node) *Node {
	n := &Node{Tag: tag}
	if class != "" {
		n.Attrs = append(n.Attrs, Attr{Key: "class", Val: class})
	}
	return n.Append(children...)
}

// Text builds a text node.
func Text(s string) *Node { return &Node{Text: s} }

// Set adds or replaces an attribute.
func (n *Node) Set(key, val string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
	return n
}

// Get returns an attribute value.
func (n *Node) Get(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Append adds non-nil children.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Walk visits n and its descendants depth first, in document order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Sections returns the data-section identifiers in document order.
func (n *Node) Sections() []string {
	var out []string
	n.Walk(func(x *Node) {
		if id, ok := x.Get(SectionAttr); ok {
			out = append(out, id)
		}
	})
	return out
}

// Section finds the section element with the given identifier.
func (n *Node) Section(id string) *Node {
	var found *Node
	n.Walk(func(x *Node) {
		if found != nil {
			return
		}
		if v, ok := x.Get(SectionAttr); ok && v == id {
			found = x
		}
	})
	return found
}

// HTML serialises the tree. Text and attribute values are escaped by the
// x/net/html renderer.
func (n *Node) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n.toHTML()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) toHTML() *html.Node {
	if n.Tag == "" {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	h := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
	for _, a := range n.Attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children {
		h.AppendChild(c.toHTML())
	}
	return h
}
