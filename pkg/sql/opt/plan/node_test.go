// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/stretchr/testify/require"
)

func buildJoinPlan(b *Builder) Node {
	left := &TableScan{Base: b.Base(), Table: "orders", Cols: b.Cols("a", "b")}
	right := &TableScan{Base: b.Base(), Table: "lineitem", Cols: b.Cols("x", "y")}
	join := &Join{
		Base:     b.Base(),
		Type:     InnerJoin,
		Left:     left,
		Right:    right,
		Criteria: []EquiJoinCondition{{Left: b.Col("a"), Right: b.Col("x")}},
		Output:   b.Cols("a", "b", "y"),
	}
	return &Output{
		Base:     b.Base(),
		Input:    join,
		Cols:     b.Cols("a", "y"),
		Ordering: opt.Ordering{b.Asc("a")},
	}
}

func TestReplaceChildren(t *testing.T) {
	var b Builder
	b.Init(nil)
	root := buildJoinPlan(&b)
	join := root.Child(0).(*Join)

	values := &Values{Base: b.Base(), Cols: b.Cols("x", "y"), RowCount: 2}
	newJoin := ReplaceChildren(join, []Node{join.Left, values}).(*Join)

	require.Equal(t, join.ID(), newJoin.ID())
	require.Same(t, values, newJoin.Right)
	require.Equal(t, opt.TableScanOp, join.Right.Op(), "original node must not change")

	err := func() (err error) {
		defer opt.CatchOptimizerError(&err)
		ReplaceChildren(join, []Node{values})
		return nil
	}()
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err))
	require.Contains(t, err.Error(), "join node 3 has 2 children, got 1 replacements")
}

func TestChildOutOfRange(t *testing.T) {
	var b Builder
	b.Init(nil)
	scan := &TableScan{Base: b.Base(), Table: "t", Cols: b.Cols("a")}
	require.Panics(t, func() { scan.Child(0) })

	del := &TableDelete{Base: b.Base(), Table: "t"}
	require.Equal(t, 0, del.ChildCount())
	require.Nil(t, Children(del))
	del2 := ReplaceChildren(del, nil).(*TableDelete)
	require.Nil(t, del2.Input)
}

func TestIDAllocator(t *testing.T) {
	var b Builder
	b.Init(nil)
	root := buildJoinPlan(&b)
	require.Equal(t, ID(4), MaxID(root))

	ids := b.IDs()
	require.Equal(t, ID(5), ids.NextID())
	ids.Reserve(10)
	require.Equal(t, ID(11), ids.NextID())
	ids.Reserve(3)
	require.Equal(t, ID(12), ids.NextID())

	base := b.BaseWithID(20)
	require.Equal(t, ID(20), base.ID())
	next := b.Base()
	require.Equal(t, ID(21), next.ID())
}

func TestWalk(t *testing.T) {
	var b Builder
	b.Init(nil)
	root := buildJoinPlan(&b)

	var ops []string
	Walk(root, func(n Node) bool {
		ops = append(ops, n.Op().String())
		return n.Op() != opt.JoinOp
	})
	require.Equal(t, []string{"output", "join"}, ops)

	ops = ops[:0]
	Walk(root, func(n Node) bool {
		ops = append(ops, n.Op().String())
		return true
	})
	require.Equal(t, []string{"output", "join", "table-scan", "table-scan"}, ops)
}

func TestOutputCols(t *testing.T) {
	var b Builder
	b.Init(nil)
	scan := &TableScan{Base: b.Base(), Table: "t", Cols: b.Cols("a", "b")}

	testCases := []struct {
		node     Node
		expected string
	}{
		{node: &Filter{Base: b.Base(), Input: scan}, expected: "(a,b)"},
		{node: &AssignUniqueID{Base: b.Base(), Input: scan, IDCol: b.Col("id")}, expected: "(a,b,id)"},
		{node: &MarkDistinct{Base: b.Base(), Input: scan, Marker: b.Col("m")}, expected: "(a,b,m)"},
		{node: &RowNumber{Base: b.Base(), Input: scan, RowNumberCol: b.Col("rn")}, expected: "(a,b,rn)"},
		{node: &TopNRanking{Base: b.Base(), Input: scan, RankCol: b.Col("r")}, expected: "(a,b,r)"},
		{
			node: &Window{
				Base:      b.Base(),
				Input:     scan,
				Functions: []WindowFunc{{Col: b.Col("w"), Func: "rank"}},
			},
			expected: "(a,b,w)",
		},
		{
			node: &Aggregation{
				Base:         b.Base(),
				Input:        scan,
				GroupingKeys: b.Cols("a"),
				Aggregates:   []Aggregate{{Col: b.Col("s"), Func: "sum"}},
			},
			expected: "(a,s)",
		},
		{
			node: &Project{
				Base:        b.Base(),
				Input:       scan,
				Assignments: []Assignment{{Col: b.Col("b"), From: b.Col("b")}, {Col: b.Col("c")}},
			},
			expected: "(b,c)",
		},
		{
			node: &SemiJoin{
				Base:            b.Base(),
				Source:          scan,
				FilteringSource: scan,
				MatchCol:        b.Col("m2"),
			},
			expected: "(a,b,m2)",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.node.Op().String(), func(t *testing.T) {
			require.Equal(t, tc.expected, opt.FormatColList(b.Metadata(), tc.node.OutputCols()))
		})
	}
}

func TestAggregationPredicates(t *testing.T) {
	testCases := []struct {
		name         string
		agg          Aggregation
		defaultOut   bool
		singleNode   bool
		decomposable bool
	}{
		{
			name:         "group by",
			agg:          Aggregation{GroupingSetCount: 1, Aggregates: []Aggregate{{Decomposable: true}}},
			decomposable: true,
		},
		{
			name:         "global",
			agg:          Aggregation{GroupingSetCount: 1, GlobalGroupingSets: 1},
			defaultOut:   true,
			singleNode:   true,
			decomposable: true,
		},
		{
			name:         "global final",
			agg:          Aggregation{GroupingSetCount: 1, GlobalGroupingSets: 1, Step: StepFinal},
			singleNode:   true,
			decomposable: true,
		},
		{
			name: "rollup not decomposable",
			agg: Aggregation{
				GroupingSetCount:   2,
				GlobalGroupingSets: 1,
				Aggregates:         []Aggregate{{Decomposable: false}},
			},
			defaultOut: true,
			singleNode: true,
		},
		{
			name: "rollup decomposable",
			agg: Aggregation{
				GroupingSetCount:   2,
				GlobalGroupingSets: 1,
				Aggregates:         []Aggregate{{Decomposable: true}},
			},
			defaultOut:   true,
			decomposable: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.defaultOut, tc.agg.HasDefaultOutput())
			require.Equal(t, tc.singleNode, tc.agg.HasSingleNodeExecutionPreference())
			require.Equal(t, tc.decomposable, tc.agg.IsDecomposable())
		})
	}
}

func TestFormat(t *testing.T) {
	var b Builder
	b.Init(nil)
	root := buildJoinPlan(&b)
	join := root.Child(0).(*Join)
	gather := &Exchange{
		Base:    b.Base(),
		Type:    GatherExchange,
		Scope:   LocalScope,
		Sources: []Node{join.Right},
		Output:  join.Right.OutputCols(),
	}
	join = ReplaceChildren(join, []Node{join.Left, gather}).(*Join).WithSpill(NotSpillable)
	root = ReplaceChildren(root, []Node{join})

	res := Format(root, b.Metadata(), func(n Node) []string {
		if n.Op() == opt.ExchangeOp {
			return []string{"inserted"}
		}
		return nil
	})
	exp := `
output (a,y) ordering=+a
 └── inner-join a=x not-spillable
      ├── table-scan orders (a,b)
      └── exchange local gather
          inserted
           └── table-scan lineitem (x,y)
`
	require.Equal(t, strings.TrimLeft(exp, "\n"), res)
}

func TestFormatExchange(t *testing.T) {
	var b Builder
	b.Init(nil)
	scan := &TableScan{Base: b.Base(), Table: "t", Cols: b.Cols("a", "b")}
	testCases := []struct {
		ex       Exchange
		expected string
	}{
		{
			ex:       Exchange{Type: GatherExchange, Scope: RemoteScope},
			expected: "exchange remote gather",
		},
		{
			ex:       Exchange{Type: GatherExchange, Ordering: opt.Ordering{b.Desc("b")}},
			expected: "exchange local merge -b",
		},
		{
			ex: Exchange{
				Type:         RepartitionExchange,
				Partitioning: PartitioningScheme{Handle: FixedHashPartitioning, Cols: b.Cols("a")},
			},
			expected: "exchange local repartition hash (a)",
		},
		{
			ex: Exchange{
				Type:         RepartitionExchange,
				Partitioning: PartitioningScheme{Handle: FixedHashPartitioning, Cols: b.Cols("a")},
				AggType:      SortAggregation,
			},
			expected: "exchange local repartition hash (a) agg=sort",
		},
		{
			ex: Exchange{
				Type:         RepartitionExchange,
				Partitioning: PartitioningScheme{Handle: FixedArbitraryPartitioning},
			},
			expected: "exchange local repartition arbitrary",
		},
		{
			ex:       Exchange{Type: ReplicateExchange, Scope: RemoteScope},
			expected: "exchange remote replicate",
		},
	}
	for _, tc := range testCases {
		ex := tc.ex
		ex.Sources = []Node{scan}
		require.Equal(t, tc.expected, Describe(&ex, b.Metadata()))
	}
}
