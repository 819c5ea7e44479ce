package ledger

import (
	"encoding/xml"
	"strings"
)

// node is a generic XML element. The ledger is walked as a tree because
// portfolios and transactions can appear at varying depths below an account.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) name() string {
	return n.XMLName.Local
}

// child returns the first direct child with the given name.
func (n *node) child(name string) *node {
	for i := range n.Children {
		if n.Children[i].name() == name {
			return &n.Children[i]
		}
	}
	return nil
}

// childrenNamed returns the direct children with the given name.
func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for i := range n.Children {
		if n.Children[i].name() == name {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// text returns the trimmed text of the named child and whether the child exists.
func (n *node) text(name string) (string, bool) {
	c := n.child(name)
	if c == nil {
		return "", false
	}
	return strings.TrimSpace(c.Content), true
}

// textOr returns the trimmed text of the named child, or def when absent.
func (n *node) textOr(name, def string) string {
	if v, ok := n.text(name); ok {
		return v
	}
	return def
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// descendants returns every element below n named name, in document order.
// The walk does not enter elements whose name is in stop; a matching element
// that is itself a stop element is still returned.
func (n *node) descendants(name string, stop ...string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for i := range cur.Children {
			c := &cur.Children[i]
			if c.name() == name {
				out = append(out, c)
			}
			if contains(stop, c.name()) {
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
