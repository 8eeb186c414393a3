// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/emicklei/dot"
)

// formatDot renders the plan as a Graphviz digraph with edges pointing from
// each input to its consumer. Local exchanges are highlighted.
func formatDot(root plan.Node, md *opt.Metadata, annotate plan.AnnotateFunc) string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "BT")

	var add func(n plan.Node) dot.Node
	add = func(n plan.Node) dot.Node {
		lines := []string{fmt.Sprintf("%d: %s", n.ID(), plan.Describe(n, md))}
		if annotate != nil {
			lines = append(lines, annotate(n)...)
		}
		node := g.Node(fmt.Sprintf("n%d", n.ID())).
			Label(strings.Join(lines, "\n")).
			Attr("shape", "box")
		if ex, ok := n.(*plan.Exchange); ok && ex.Scope == plan.LocalScope {
			node.Attr("style", "filled").Attr("fillcolor", "lightblue")
		}
		for i, cnt := 0, n.ChildCount(); i < cnt; i++ {
			g.Edge(add(n.Child(i)), node)
		}
		return node
	}
	add(root)
	return g.String()
}
