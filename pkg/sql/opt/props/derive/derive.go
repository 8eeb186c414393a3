// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package derive computes the stream properties produced by plan nodes,
// given the properties of their inputs.
package derive

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/cockroachdb/localex/pkg/sql/opt/props"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/physical"
)

// Deriver computes the stream properties of a node from the properties of its
// inputs. Implementations must be deterministic, and must never look below
// the immediate children of the node: the properties of the children are
// passed in.
type Deriver interface {
	Derive(n plan.Node, inputs []physical.StreamProps) physical.StreamProps
}

// StreamDeriver is the default Deriver. The zero value is ready to use.
type StreamDeriver struct{}

var _ Deriver = StreamDeriver{}

// Derive is part of the Deriver interface.
func (StreamDeriver) Derive(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	if len(inputs) != n.ChildCount() {
		panic(errors.AssertionFailedf(
			"%s node %d has %d children but %d input properties",
			n.Op(), n.ID(), n.ChildCount(), len(inputs),
		))
	}
	fn := funcMap[n.Op()]
	if fn == nil {
		panic(errors.AssertionFailedf("unexpected %s node %d", n.Op(), n.ID()))
	}
	res := fn(n, inputs)
	res.Local = props.NormalizeAndPrune(res.Local)
	res.Verify()
	return res
}

// Recursively derives the properties of the whole subtree rooted at n,
// without rewriting it.
func Recursively(d Deriver, n plan.Node) physical.StreamProps {
	var inputs []physical.StreamProps
	if cnt := n.ChildCount(); cnt > 0 {
		inputs = make([]physical.StreamProps, cnt)
		for i := range inputs {
			inputs[i] = Recursively(d, n.Child(i))
		}
	}
	return d.Derive(n, inputs)
}

type deriveFunc func(n plan.Node, inputs []physical.StreamProps) physical.StreamProps

var funcMap [opt.NumOperators]deriveFunc

func init() {
	funcMap[opt.TableScanOp] = deriveTableScan
	funcMap[opt.ValuesOp] = deriveSingleStream
	funcMap[opt.IndexSourceOp] = deriveSingleStream

	funcMap[opt.OutputOp] = deriveFromFirstInput
	funcMap[opt.ExplainAnalyzeOp] = deriveSingleStream
	funcMap[opt.ProjectOp] = deriveProject
	funcMap[opt.FilterOp] = deriveFilter
	funcMap[opt.AssignUniqueIDOp] = deriveAssignUniqueID
	funcMap[opt.SortOp] = deriveSort
	funcMap[opt.TopNOp] = deriveTopN
	funcMap[opt.LimitOp] = deriveFromFirstInput
	funcMap[opt.DistinctLimitOp] = deriveFromFirstInput
	funcMap[opt.EnforceSingleRowOp] = deriveFromFirstInput
	funcMap[opt.AggregationOp] = deriveAggregation
	funcMap[opt.WindowOp] = deriveWindow
	funcMap[opt.MarkDistinctOp] = deriveFromFirstInput
	funcMap[opt.RowNumberOp] = deriveFromFirstInput
	funcMap[opt.TopNRankingOp] = deriveFromFirstInput
	funcMap[opt.TableWriterOp] = deriveShapeOnly
	funcMap[opt.TableFinishOp] = deriveShapeOnly
	funcMap[opt.TableDeleteOp] = deriveShapeOnly
	funcMap[opt.StatisticsWriterOp] = deriveShapeOnly
	funcMap[opt.CubeFinishOp] = deriveShapeOnly
	funcMap[opt.CTEScanOp] = deriveFromFirstInput

	funcMap[opt.ExchangeOp] = deriveExchange
	funcMap[opt.UnionOp] = deriveUnion
	funcMap[opt.JoinOp] = deriveJoin
	funcMap[opt.SemiJoinOp] = deriveFromFirstInput
	funcMap[opt.SpatialJoinOp] = deriveFromFirstInput
	funcMap[opt.IndexJoinOp] = deriveFromFirstInput

	// ApplyOp and LateralJoinOp are left unset: they must have been
	// decorrelated before physical planning.
}

// outputColsFn returns a translation function that keeps the columns
// produced by n and drops all others.
func outputColsFn(n plan.Node) func(opt.ColumnID) (opt.ColumnID, bool) {
	cols := opt.ColListToSet(n.OutputCols())
	return func(col opt.ColumnID) (opt.ColumnID, bool) {
		return col, cols.Contains(int(col))
	}
}

// constantsOf returns the Constant properties of the list.
func constantsOf(local []props.LocalProperty) []props.LocalProperty {
	var res []props.LocalProperty
	for _, p := range local {
		if c, ok := p.(props.Constant); ok {
			res = append(res, c)
		}
	}
	return res
}

func deriveSingleStream(plan.Node, []physical.StreamProps) physical.StreamProps {
	return physical.SingleStream()
}

// deriveFromFirstInput passes the properties of the first input through,
// restricted to the columns produced by the node.
func deriveFromFirstInput(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	return inputs[0].Translate(outputColsFn(n))
}

// deriveShapeOnly keeps the number of streams of the input but nothing else:
// writers and commit operators produce new columns.
func deriveShapeOnly(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	if len(inputs) == 0 {
		return physical.SingleStream()
	}
	return inputs[0].WithUnknownPartitioning().WithoutLocal()
}

func deriveTableScan(n plan.Node, _ []physical.StreamProps) physical.StreamProps {
	scan := n.(*plan.TableScan)
	var res physical.StreamProps
	switch {
	case scan.SingleStream:
		res = physical.SingleStream()
	case len(scan.StreamPartitioning) > 0:
		res = physical.PartitionedStreams(scan.StreamPartitioning)
	default:
		res = physical.MultipleStreams()
	}
	return res.WithLocal(props.SortedOn(scan.Ordering))
}

func deriveProject(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	project := n.(*plan.Project)
	mapping := make(map[opt.ColumnID]opt.ColumnID, len(project.Assignments))
	var constants []props.LocalProperty
	for _, a := range project.Assignments {
		if a.Constant {
			constants = append(constants, props.Constant{Col: a.Col})
		}
		if a.From == 0 {
			continue
		}
		if _, ok := mapping[a.From]; !ok {
			mapping[a.From] = a.Col
		}
	}
	res := inputs[0].Translate(func(col opt.ColumnID) (opt.ColumnID, bool) {
		to, ok := mapping[col]
		return to, ok
	})
	return res.WithLocal(append(constants, res.Local...))
}

func deriveFilter(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	filter := n.(*plan.Filter)
	var local []props.LocalProperty
	for _, col := range filter.EqualityConstants {
		local = append(local, props.Constant{Col: col})
	}
	return inputs[0].WithLocal(append(local, inputs[0].Local...))
}

func deriveAssignUniqueID(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	assign := n.(*plan.AssignUniqueID)
	input := inputs[0]
	local := append([]props.LocalProperty(nil), input.Local...)
	local = append(local, props.MakeGrouped(assign.IDCol))
	for _, col := range assign.Input.OutputCols() {
		local = append(local, props.Constant{Col: col})
	}
	res := input.WithLocal(local)
	if !res.Partitioned {
		// The id is unique, so every stream trivially holds all the rows of
		// each of its values.
		res = res.WithPartitioning(opt.ColList{assign.IDCol})
	}
	return res
}

// sortedOutput returns the input properties with the local properties
// replaced by the ordering. Constants survive any reordering.
func sortedOutput(input physical.StreamProps, ordering opt.Ordering) physical.StreamProps {
	local := constantsOf(input.Local)
	return input.WithLocal(append(local, props.SortedOn(ordering)...))
}

func deriveSort(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	return sortedOutput(inputs[0], n.(*plan.Sort).Ordering)
}

func deriveTopN(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	return sortedOutput(inputs[0], n.(*plan.TopN).Ordering)
}

func deriveAggregation(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	agg := n.(*plan.Aggregation)
	keys := opt.ColListToSet(agg.GroupingKeys)
	res := inputs[0].Translate(func(col opt.ColumnID) (opt.ColumnID, bool) {
		return col, keys.Contains(int(col))
	})
	// A streaming aggregation emits its groups in input order; a hash
	// aggregation only keeps the constants.
	local := constantsOf(res.Local)
	if len(agg.PreGrouped) == len(agg.GroupingKeys) && len(agg.GroupingKeys) > 0 {
		local = res.Local
	}
	if len(agg.GroupingKeys) > 0 {
		local = append(local, props.GroupedOn(agg.GroupingKeys)...)
	}
	return res.WithLocal(local)
}

func deriveWindow(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	window := n.(*plan.Window)
	local := constantsOf(inputs[0].Local)
	if len(window.PartitionBy) > 0 {
		local = append(local, props.GroupedOn(window.PartitionBy)...)
	}
	local = append(local, props.SortedOn(window.Ordering)...)
	return inputs[0].WithLocal(local)
}

func deriveExchange(n plan.Node, _ []physical.StreamProps) physical.StreamProps {
	ex := n.(*plan.Exchange)
	switch ex.Type {
	case plan.GatherExchange:
		return physical.SingleStream().WithLocal(props.SortedOn(ex.Ordering))

	case plan.RepartitionExchange:
		if ex.Partitioning.Handle == plan.FixedHashPartitioning {
			return physical.PartitionedStreams(ex.Partitioning.Cols)
		}
		return physical.FixedStreams()

	case plan.ReplicateExchange:
		return physical.MultipleStreams()
	}
	panic(errors.AssertionFailedf("unknown exchange type %d", ex.Type))
}

func deriveUnion(plan.Node, []physical.StreamProps) physical.StreamProps {
	return physical.MultipleStreams()
}

func deriveJoin(n plan.Node, inputs []physical.StreamProps) physical.StreamProps {
	join := n.(*plan.Join)
	res := inputs[0].Translate(outputColsFn(n))
	if join.Type == plan.RightJoin || join.Type == plan.FullJoin {
		// Unmatched build rows are emitted by an arbitrary stream, with null
		// probe columns.
		res = res.WithUnknownPartitioning().WithoutLocal()
	}
	if join.Spill == plan.Spillable {
		res = res.WithoutLocal()
	}
	return res
}
