// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package planyaml

import (
	"strings"
	"testing"

	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) (plan.Node, *plan.Builder) {
	t.Helper()
	var b plan.Builder
	b.Init(nil)
	n, err := Parse([]byte(text), &b)
	require.NoError(t, err)
	return n, &b
}

func TestParse(t *testing.T) {
	root, b := parse(t, `
op: output
ordering: [+a]
input:
  op: join
  type: left
  criteria: [a = x]
  left:
    op: project
    assignments: [a, k := constant, z := b, w := a + b]
    input:
      op: table-scan
      table: orders
      cols: [a, b]
      partitioning: [a]
  right:
    op: exchange
    type: repartition
    partitioning: [x]
    input:
      op: values
      cols: [x, y]
      rows: 3
`)
	exp := `
output (a,k,z,w,x,y) ordering=+a
 └── left-join a=x
      ├── project (a,k,z,w)
      │    └── table-scan orders (a,b) partitioning=(a)
      └── exchange remote repartition hash (x)
           └── values (x,y) rows=3
`
	require.Equal(t, strings.TrimLeft(exp, "\n"), plan.Format(root, b.Metadata(), nil))

	// Ids are allocated in pre-order.
	require.Equal(t, plan.ID(1), root.ID())
	join := root.Child(0).(*plan.Join)
	require.Equal(t, plan.ID(2), join.ID())
	require.Equal(t, plan.ID(3), join.Left.ID())

	project := join.Left.(*plan.Project)
	a, _ := b.Metadata().ColumnByAlias("a")
	bcol, _ := b.Metadata().ColumnByAlias("b")
	require.Equal(t, a, project.Assignments[0].From)
	require.True(t, project.Assignments[1].Constant)
	require.Equal(t, bcol, project.Assignments[2].From)
	require.Equal(t, opt.ColumnID(0), project.Assignments[3].From)

	ex := join.Right.(*plan.Exchange)
	require.Equal(t, plan.RemoteScope, ex.Scope)
	require.Equal(t, plan.FixedHashPartitioning, ex.Partitioning.Handle)
	require.Equal(t, []opt.ColList{ex.Sources[0].OutputCols()}, ex.InputLayouts)
}

func TestParseDefaults(t *testing.T) {
	root, b := parse(t, `
op: aggregation
aggregates:
  - {col: cnt, func: count}
  - {col: agg, func: array_agg, decomposable: false}
input:
  op: union
  output: [u]
  sources:
    - {op: values, cols: [a]}
    - {op: values, cols: [b]}
`)
	agg := root.(*plan.Aggregation)
	require.Equal(t, 1, agg.GroupingSetCount)
	require.Equal(t, 1, agg.GlobalGroupingSets)
	require.True(t, agg.HasDefaultOutput())
	require.True(t, agg.Aggregates[0].Decomposable)
	require.False(t, agg.Aggregates[1].Decomposable)

	union := agg.Input.(*plan.Union)
	require.Equal(t, b.Cols("a"), union.InputLayouts[0])
	require.Equal(t, b.Cols("b"), union.SourceOutputLayout(1))

	root, _ = parse(t, `
op: table-writer
table: t
handle: fixed-hash
partitioning: [a]
input: {op: table-scan, table: s, cols: [a]}
`)
	writer := root.(*plan.TableWriter)
	require.Equal(t, plan.InsertTarget, writer.Target)
	require.NotNil(t, writer.Partitioning)
	require.Equal(t, plan.FixedHashPartitioning, writer.Partitioning.Handle)
	require.Len(t, writer.Output, 1)

	root, _ = parse(t, `{op: table-delete, table: t}`)
	require.Equal(t, 0, root.ChildCount())
}

func TestParseExplicitIDs(t *testing.T) {
	root, _ := parse(t, `
op: limit
id: 10
count: 5
input: {op: values, cols: [a]}
`)
	require.Equal(t, plan.ID(10), root.ID())
	require.Equal(t, plan.ID(11), root.Child(0).ID())
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{`{op: scan}`, `unknown operator "scan"`},
		{`{op: values, colz: [a]}`, `field colz not found`},
		{`{op: sort, ordering: [+a]}`, `sort node 1: input is required`},
		{`{op: sort, ordering: [a], input: {op: values, cols: [a]}}`, `invalid ordering column "a"`},
		{`{op: output, input: {op: sort, input: {op: values, cols: [a]}}}`, `output node 1: input: sort node 2: ordering is required`},
		{`{op: join, criteria: [a], left: {op: values}, right: {op: values}}`, `invalid join condition "a"`},
		{`{op: join, type: cross, left: {op: values}, right: {op: values}}`, `unknown join type "cross"`},
		{`{op: exchange, type: broadcast, sources: [{op: values}]}`, `unknown exchange type "broadcast"`},
		{`{op: exchange, scope: global, sources: [{op: values}]}`, `unknown exchange scope "global"`},
		{`{op: union, output: [u], sources: [{op: values, cols: [a, b]}]}`, `layout of source 0 has 2 columns, expected 1`},
		{`{op: union, sources: [{op: values, cols: [a]}], layouts: [[b]]}`, `references columns it does not produce`},
		{`{op: union}`, `sources are required`},
		{`{op: aggregation, step: total, input: {op: values}}`, `unknown step "total"`},
		{`{op: aggregation, agg_type: stream, input: {op: values}}`, `unknown aggregation type "stream"`},
		{`{op: aggregation, keys: [a], grouping_sets: 1, global_sets: 2, input: {op: values}}`, `invalid grouping sets`},
		{`{op: table-writer, target: upsert, input: {op: values}}`, `unknown writer target "upsert"`},
		{`{op: mark-distinct, column: m, input: {op: values}}`, `distinct is required`},
		{`{op: assign-unique-id, input: {op: values}}`, `column is required`},
		{`{op: apply, input: {op: values}}`, `subquery is required`},
		{`{op: limit, id: 1, input: {op: values, id: 1}}`, `duplicate node id 1`},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			var b plan.Builder
			b.Init(nil)
			_, err := Parse([]byte(tc.text), &b)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestLoad(t *testing.T) {
	var b plan.Builder
	b.Init(nil)
	n, err := Load(strings.NewReader(`{op: values, cols: [a, b], rows: 2}`), &b)
	require.NoError(t, err)
	require.Equal(t, "values (a,b) rows=2\n", plan.Format(n, b.Metadata(), nil))
}
