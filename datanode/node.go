// Package datanode holds the generic name/value tree that mob scripts and
// content files are read into.
package datanode

import (
	"fmt"
	"strings"
)

// Node is one entry of a data tree. Leaves carry a Value; blocks carry
// Children. Names may repeat among siblings.
type Node struct {
	Name     string
	Value    string
	File     string
	Line     int
	Children []*Node
}

func New(name, value string) *Node {
	return &Node{Name: name, Value: value}
}

// Add appends children and returns n, for building trees in code.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// Child returns the i-th child, or an empty node when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return &Node{}
	}
	return n.Children[i]
}

// ChildByName returns the occurrence-th child named name, or an empty
// node when there is none.
func (n *Node) ChildByName(name string, occurrence int) *Node {
	if n == nil {
		return &Node{}
	}
	seen := 0
	for _, c := range n.Children {
		if c.Name != name {
			continue
		}
		if seen == occurrence {
			return c
		}
		seen++
	}
	return &Node{}
}

func (n *Node) CountByName(name string) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, c := range n.Children {
		if c.Name == name {
			count++
		}
	}
	return count
}

// IsEmpty reports whether n is the placeholder returned for missing nodes.
func (n *Node) IsEmpty() bool {
	return n == nil || (n.Name == "" && n.Value == "" && len(n.Children) == 0)
}

// Location is "file:line" for error messages.
func (n *Node) Location() string {
	if n == nil {
		return "?"
	}
	file := n.File
	if file == "" {
		file = "?"
	}
	return fmt.Sprintf("%s:%d", file, n.Line)
}

// String renders the tree back in text data format.
func (n *Node) String() string {
	var b strings.Builder
	for _, c := range n.Children {
		c.write(&b, 0)
	}
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("\t", depth)
	switch {
	case len(n.Children) > 0:
		fmt.Fprintf(b, "%s%s {\n", indent, n.Name)
		for _, c := range n.Children {
			c.write(b, depth+1)
		}
		fmt.Fprintf(b, "%s}\n", indent)
	case n.Value != "":
		fmt.Fprintf(b, "%s%s = %s\n", indent, n.Name, n.Value)
	default:
		fmt.Fprintf(b, "%s%s\n", indent, n.Name)
	}
}

func (n *Node) setFile(file string) {
	n.File = file
	for _, c := range n.Children {
		c.setFile(file)
	}
}
