// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package treeprinter

import (
	"fmt"
	"strings"
)

const (
	edgeLinkChr = " │   "
	edgeMidChr  = " ├── "
	edgeLastChr = " └── "
	edgeSpace   = "     "
)

// Node is a handle associated with a specific depth in a tree. See below for
// sample usage.
type Node struct {
	tree  *tree
	level int
	// the index of this node's line in tree.rows, -1 for the root handle.
	row int
}

// New creates a tree printer and returns a sentinel node reference which
// should be used to add the root. Sample usage:
//
//	tp := New()
//	root := tp.Child("root")
//	root.Child("child-1")
//	root.Child("child-2").Child("grandchild")
//	root.Child("child-3")
//
//	fmt.Print(tp.String())
//
// Output:
//
//	root
//	 ├── child-1
//	 ├── child-2
//	 │    └── grandchild
//	 └── child-3
func New() Node {
	return Node{tree: &tree{}, level: 0, row: -1}
}

type tree struct {
	rows []treeRow
}

type treeRow struct {
	level  int
	text   string
	parent int
}

// Childf adds a node as a child of the given node.
func (n Node) Childf(format string, args ...interface{}) Node {
	return n.Child(fmt.Sprintf(format, args...))
}

// Child adds a node as a child of the given node. Multi-line strings are
// supported with appropriate indentation.
func (n Node) Child(text string) Node {
	t := n.tree
	lines := strings.Split(text, "\n")
	row := len(t.rows)
	t.rows = append(t.rows, treeRow{level: n.level, text: lines[0], parent: n.row})
	for _, l := range lines[1:] {
		// Continuation lines belong to the same node, they are printed as part
		// of it.
		t.rows[row].text += "\n" + l
	}
	return Node{tree: t, level: n.level + 1, row: row}
}

// String returns the tree as a string.
func (n Node) String() string {
	t := n.tree
	var buf strings.Builder
	// isLast[i] is true if row i is the last child of its parent.
	isLast := make([]bool, len(t.rows))
	lastChild := make(map[int]int)
	for i, r := range t.rows {
		lastChild[r.parent] = i
	}
	for _, i := range lastChild {
		isLast[i] = true
	}
	for i, r := range t.rows {
		prefix := linePrefix(t, isLast, i)
		var cont string
		if r.level > 0 {
			cont = ancestorsPrefix(t, isLast, i)
			if isLast[i] {
				cont += edgeSpace
			} else {
				cont += edgeLinkChr
			}
		}
		for j, l := range strings.Split(r.text, "\n") {
			if j == 0 {
				buf.WriteString(prefix)
			} else {
				buf.WriteString(cont)
			}
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// linePrefix returns the indentation and edge drawn before the first line of
// row i.
func linePrefix(t *tree, isLast []bool, i int) string {
	r := t.rows[i]
	if r.level == 0 {
		return ""
	}
	prefix := ancestorsPrefix(t, isLast, i)
	if isLast[i] {
		return prefix + edgeLastChr
	}
	return prefix + edgeMidChr
}

// ancestorsPrefix returns the vertical lines that continue through row i on
// behalf of its ancestors (excluding the root).
func ancestorsPrefix(t *tree, isLast []bool, i int) string {
	var parts []string
	for p := t.rows[i].parent; p >= 0 && t.rows[p].level > 0; p = t.rows[p].parent {
		if isLast[p] {
			parts = append(parts, edgeSpace)
		} else {
			parts = append(parts, edgeLinkChr)
		}
	}
	var buf strings.Builder
	for j := len(parts) - 1; j >= 0; j-- {
		buf.WriteString(parts[j])
	}
	return buf.String()
}
