// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package plan defines the physical plan tree that local exchange placement
// operates on. Plan nodes are immutable: rewriting a node produces a copy
// with the same id and new children.
package plan

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
)

// ID uniquely identifies a node within a plan. ID 0 is reserved to mean
// "unknown node".
type ID int32

// Node is a node of a physical plan tree. The set of implementations is
// closed: every node type is defined in this package, so that passes over the
// plan can switch exhaustively on the node type.
type Node interface {
	// ID returns the identity of the node. It is preserved when the children
	// of the node are replaced.
	ID() ID

	// Op returns the operator type of the node.
	Op() opt.Operator

	// OutputCols returns the columns produced by the node, in order.
	OutputCols() opt.ColList

	// ChildCount returns the number of children of the node.
	ChildCount() int

	// Child returns the nth child of the node.
	Child(nth int) Node

	// withChildren returns a copy of the node with the given children. The
	// number of children is checked by ReplaceChildren.
	withChildren(children []Node) Node
}

// Base is embedded in every node type and holds its id.
type Base struct {
	NodeID ID
}

// ID is part of the Node interface.
func (b *Base) ID() ID {
	return b.NodeID
}

// Children returns the children of a node as a slice.
func Children(n Node) []Node {
	if n.ChildCount() == 0 {
		return nil
	}
	res := make([]Node, n.ChildCount())
	for i := range res {
		res[i] = n.Child(i)
	}
	return res
}

// ReplaceChildren returns a copy of n with the given children. The copy has
// the same id as n; n itself is not modified.
func ReplaceChildren(n Node, children []Node) Node {
	if len(children) != n.ChildCount() {
		panic(errors.AssertionFailedf(
			"%s node %d has %d children, got %d replacements",
			n.Op(), n.ID(), n.ChildCount(), len(children),
		))
	}
	return n.withChildren(children)
}

// IDAllocator hands out unique node ids. The zero value starts at 1.
type IDAllocator struct {
	last ID
}

// NextID returns a new, unused id.
func (a *IDAllocator) NextID() ID {
	a.last++
	return a.last
}

// Reserve makes sure that ids up to and including id are never handed out.
func (a *IDAllocator) Reserve(id ID) {
	if id > a.last {
		a.last = id
	}
}

// MaxID returns the largest node id in the tree rooted at n.
func MaxID(n Node) ID {
	maxID := n.ID()
	for i, cnt := 0, n.ChildCount(); i < cnt; i++ {
		if id := MaxID(n.Child(i)); id > maxID {
			maxID = id
		}
	}
	return maxID
}

// Walk calls fn for every node of the tree rooted at n, parents before
// children. The walk stops descending into a node's children when fn returns
// false.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for i, cnt := 0, n.ChildCount(); i < cnt; i++ {
		Walk(n.Child(i), fn)
	}
}
