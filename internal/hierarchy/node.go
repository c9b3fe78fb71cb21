// Package hierarchy implements popup detection over serialized mobile UI
// hierarchies: parsing, structural path resolution, element extraction and
// mapping of LLM recommendations back onto extracted elements.
package hierarchy

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Node is one widget in the parsed UI hierarchy. The tag carries the widget
// class (UIAutomator dump style, e.g. android.widget.FrameLayout), attributes
// stay raw strings.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
}

// Attr returns the raw attribute value, "" when absent.
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// flag interprets a boolean attribute, falling back to def when the
// attribute is missing.
func (n *Node) flag(name, def string) bool {
	v, ok := n.Attrs[name]
	if !ok {
		v = def
	}
	return v == "true"
}

func (n *Node) clickable() bool {
	return n.Attrs["clickable"] == "true"
}

// Parse builds a node tree from UI hierarchy XML.
func Parse(xmlContent string) (*Node, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlContent))

	var parseElement func(start xml.StartElement) (*Node, error)
	parseElement = func(start xml.StartElement) (*Node, error) {
		n := &Node{
			Tag:   start.Name.Local,
			Attrs: make(map[string]string, len(start.Attr)),
		}
		for _, attr := range start.Attr {
			n.Attrs[attr.Name.Local] = attr.Value
		}
		for {
			token, err := decoder.Token()
			if err != nil {
				return nil, err
			}
			switch t := token.(type) {
			case xml.StartElement:
				child, err := parseElement(t)
				if err != nil {
					return nil, err
				}
				n.Children = append(n.Children, child)
			case xml.EndElement:
				return n, nil
			}
		}
	}

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("no document root: %w", err)
		}
		if start, ok := token.(xml.StartElement); ok {
			return parseElement(start)
		}
	}
}

// walkDescendants visits every node below n in document order (pre-order,
// n itself excluded).
func walkDescendants(n *Node, visit func(*Node)) {
	for _, child := range n.Children {
		visit(child)
		walkDescendants(child, visit)
	}
}

// findFirstDescendant returns the first descendant of root with the given
// tag in document order, nil when none matches. The root itself is never
// a match.
func findFirstDescendant(root *Node, tag string) *Node {
	var found *Node
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		for _, child := range n.Children {
			if child.Tag == tag {
				found = child
				return true
			}
			if walk(child) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}
