// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
)

func childOutOfRange(n Node, nth int) error {
	return errors.AssertionFailedf("child index %d out of range for %s node %d", nth, n.Op(), n.ID())
}

func appendCols(cols opt.ColList, extra ...opt.ColumnID) opt.ColList {
	res := make(opt.ColList, 0, len(cols)+len(extra))
	res = append(res, cols...)
	return append(res, extra...)
}

// -- Leaf operators --

// TableScan reads the rows of a table.
type TableScan struct {
	Base
	Table string
	Cols  opt.ColList
	// SingleStream is set when the table can only be read by one driver.
	SingleStream bool
	// StreamPartitioning is set when the table layout assigns rows to drivers
	// by the values of these columns.
	StreamPartitioning opt.ColList
	// Ordering is the order in which each driver produces rows, if any.
	Ordering opt.Ordering
}

// Op is part of the Node interface.
func (n *TableScan) Op() opt.Operator { return opt.TableScanOp }

// OutputCols is part of the Node interface.
func (n *TableScan) OutputCols() opt.ColList { return n.Cols }

// ChildCount is part of the Node interface.
func (n *TableScan) ChildCount() int { return 0 }

// Child is part of the Node interface.
func (n *TableScan) Child(nth int) Node { panic(childOutOfRange(n, nth)) }

func (n *TableScan) withChildren([]Node) Node { cp := *n; return &cp }

// Values produces a list of literal rows.
type Values struct {
	Base
	Cols     opt.ColList
	RowCount int
}

// Op is part of the Node interface.
func (n *Values) Op() opt.Operator { return opt.ValuesOp }

// OutputCols is part of the Node interface.
func (n *Values) OutputCols() opt.ColList { return n.Cols }

// ChildCount is part of the Node interface.
func (n *Values) ChildCount() int { return 0 }

// Child is part of the Node interface.
func (n *Values) Child(nth int) Node { panic(childOutOfRange(n, nth)) }

func (n *Values) withChildren([]Node) Node { cp := *n; return &cp }

// IndexSource looks up rows in an index, driven by an IndexJoin.
type IndexSource struct {
	Base
	Index string
	Cols  opt.ColList
}

// Op is part of the Node interface.
func (n *IndexSource) Op() opt.Operator { return opt.IndexSourceOp }

// OutputCols is part of the Node interface.
func (n *IndexSource) OutputCols() opt.ColList { return n.Cols }

// ChildCount is part of the Node interface.
func (n *IndexSource) ChildCount() int { return 0 }

// Child is part of the Node interface.
func (n *IndexSource) Child(nth int) Node { panic(childOutOfRange(n, nth)) }

func (n *IndexSource) withChildren([]Node) Node { cp := *n; return &cp }

// -- Single-input operators --

// Output returns rows to the client. It is the root of a query plan.
type Output struct {
	Base
	Input Node
	Cols  opt.ColList
	Names []string
	// Ordering is the presentation order of the rows, if any.
	Ordering opt.Ordering
}

// Op is part of the Node interface.
func (n *Output) Op() opt.Operator { return opt.OutputOp }

// OutputCols is part of the Node interface.
func (n *Output) OutputCols() opt.ColList { return n.Cols }

// ChildCount is part of the Node interface.
func (n *Output) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *Output) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *Output) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// ExplainAnalyze runs its input, discards the rows and returns the plan
// annotated with execution statistics.
type ExplainAnalyze struct {
	Base
	Input Node
	Col   opt.ColumnID
}

// Op is part of the Node interface.
func (n *ExplainAnalyze) Op() opt.Operator { return opt.ExplainAnalyzeOp }

// OutputCols is part of the Node interface.
func (n *ExplainAnalyze) OutputCols() opt.ColList { return opt.ColList{n.Col} }

// ChildCount is part of the Node interface.
func (n *ExplainAnalyze) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *ExplainAnalyze) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *ExplainAnalyze) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// Project computes a new set of columns from each input row.
type Project struct {
	Base
	Input       Node
	Assignments []Assignment
}

// Op is part of the Node interface.
func (n *Project) Op() opt.Operator { return opt.ProjectOp }

// OutputCols is part of the Node interface.
func (n *Project) OutputCols() opt.ColList {
	cols := make(opt.ColList, len(n.Assignments))
	for i := range n.Assignments {
		cols[i] = n.Assignments[i].Col
	}
	return cols
}

// ChildCount is part of the Node interface.
func (n *Project) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *Project) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *Project) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// Filter discards the input rows that do not satisfy a predicate.
type Filter struct {
	Base
	Input     Node
	Predicate string
	// EqualityConstants are the columns that the predicate compares for
	// equality with a constant.
	EqualityConstants opt.ColList
}

// Op is part of the Node interface.
func (n *Filter) Op() opt.Operator { return opt.FilterOp }

// OutputCols is part of the Node interface.
func (n *Filter) OutputCols() opt.ColList { return n.Input.OutputCols() }

// ChildCount is part of the Node interface.
func (n *Filter) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *Filter) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *Filter) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// AssignUniqueID adds a column with a value that is unique to each row.
type AssignUniqueID struct {
	Base
	Input Node
	IDCol opt.ColumnID
}

// Op is part of the Node interface.
func (n *AssignUniqueID) Op() opt.Operator { return opt.AssignUniqueIDOp }

// OutputCols is part of the Node interface.
func (n *AssignUniqueID) OutputCols() opt.ColList {
	return appendCols(n.Input.OutputCols(), n.IDCol)
}

// ChildCount is part of the Node interface.
func (n *AssignUniqueID) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *AssignUniqueID) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *AssignUniqueID) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// Sort orders its input.
type Sort struct {
	Base
	Input    Node
	Ordering opt.Ordering
}

// Op is part of the Node interface.
func (n *Sort) Op() opt.Operator { return opt.SortOp }

// OutputCols is part of the Node interface.
func (n *Sort) OutputCols() opt.ColList { return n.Input.OutputCols() }

// ChildCount is part of the Node interface.
func (n *Sort) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *Sort) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *Sort) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// TopN returns the first Count rows of its input in the given order.
type TopN struct {
	Base
	Input    Node
	Count    int64
	Ordering opt.Ordering
	Step     Step
}

// Op is part of the Node interface.
func (n *TopN) Op() opt.Operator { return opt.TopNOp }

// OutputCols is part of the Node interface.
func (n *TopN) OutputCols() opt.ColList { return n.Input.OutputCols() }

// ChildCount is part of the Node interface.
func (n *TopN) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *TopN) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *TopN) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// Limit returns the first Count rows of its input.
type Limit struct {
	Base
	Input   Node
	Count   int64
	Partial bool
	// WithTies also returns the rows that tie with the last row. Such limits
	// are expanded into a window before physical planning.
	WithTies bool
}

// Op is part of the Node interface.
func (n *Limit) Op() opt.Operator { return opt.LimitOp }

// OutputCols is part of the Node interface.
func (n *Limit) OutputCols() opt.ColList { return n.Input.OutputCols() }

// ChildCount is part of the Node interface.
func (n *Limit) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *Limit) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *Limit) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// DistinctLimit returns the first Count distinct rows of its input.
type DistinctLimit struct {
	Base
	Input        Node
	Count        int64
	DistinctCols opt.ColList
	Partial      bool
}

// Op is part of the Node interface.
func (n *DistinctLimit) Op() opt.Operator { return opt.DistinctLimitOp }

// OutputCols is part of the Node interface.
func (n *DistinctLimit) OutputCols() opt.ColList { return n.Input.OutputCols() }

// ChildCount is part of the Node interface.
func (n *DistinctLimit) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *DistinctLimit) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *DistinctLimit) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// EnforceSingleRow fails if its input has more than one row.
type EnforceSingleRow struct {
	Base
	Input Node
}

// Op is part of the Node interface.
func (n *EnforceSingleRow) Op() opt.Operator { return opt.EnforceSingleRowOp }

// OutputCols is part of the Node interface.
func (n *EnforceSingleRow) OutputCols() opt.ColList { return n.Input.OutputCols() }

// ChildCount is part of the Node interface.
func (n *EnforceSingleRow) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *EnforceSingleRow) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *EnforceSingleRow) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// Aggregation groups its input and computes aggregate functions.
type Aggregation struct {
	Base
	Input        Node
	GroupingKeys opt.ColList
	// GroupingSetCount is the number of grouping sets; GlobalGroupingSets is
	// how many of them are empty (a global aggregation).
	GroupingSetCount   int
	GlobalGroupingSets int
	Aggregates         []Aggregate
	Step               Step
	Type               AggregationType
	// PreGrouped lists the grouping keys on which the input is already
	// grouped, so the aggregation can stream.
	PreGrouped opt.ColList
}

// HasEmptyGroupingSet returns true if one of the grouping sets is empty.
func (n *Aggregation) HasEmptyGroupingSet() bool {
	return n.GlobalGroupingSets > 0
}

// HasNonEmptyGroupingSet returns true if one of the grouping sets is not
// empty.
func (n *Aggregation) HasNonEmptyGroupingSet() bool {
	return n.GroupingSetCount > n.GlobalGroupingSets
}

// HasDefaultOutput returns true if the aggregation produces a row even when
// its input is empty.
func (n *Aggregation) HasDefaultOutput() bool {
	return n.HasEmptyGroupingSet() && n.Step != StepFinal
}

// IsDecomposable returns true if all aggregates can be split into partial
// and final steps.
func (n *Aggregation) IsDecomposable() bool {
	for i := range n.Aggregates {
		if !n.Aggregates[i].Decomposable {
			return false
		}
	}
	return true
}

// HasSingleNodeExecutionPreference returns true if the aggregation must see
// all rows in one place: a pure global aggregation, or one that must produce
// a default row and cannot be split.
func (n *Aggregation) HasSingleNodeExecutionPreference() bool {
	return (n.HasEmptyGroupingSet() && !n.HasNonEmptyGroupingSet()) ||
		(n.HasDefaultOutput() && !n.IsDecomposable())
}

// Op is part of the Node interface.
func (n *Aggregation) Op() opt.Operator { return opt.AggregationOp }

// OutputCols is part of the Node interface.
func (n *Aggregation) OutputCols() opt.ColList {
	cols := make(opt.ColList, 0, len(n.GroupingKeys)+len(n.Aggregates))
	cols = append(cols, n.GroupingKeys...)
	for i := range n.Aggregates {
		cols = append(cols, n.Aggregates[i].Col)
	}
	return cols
}

// ChildCount is part of the Node interface.
func (n *Aggregation) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *Aggregation) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *Aggregation) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// Window computes window functions over partitions of its input.
type Window struct {
	Base
	Input       Node
	PartitionBy opt.ColList
	Ordering    opt.Ordering
	Functions   []WindowFunc
	// PrePartitioned are the partition columns on which the input is already
	// grouped, and PreSortedPrefix is the length of the prefix of Ordering
	// that the input already provides within each partition.
	PrePartitioned  opt.ColSet
	PreSortedPrefix int
}

// Op is part of the Node interface.
func (n *Window) Op() opt.Operator { return opt.WindowOp }

// OutputCols is part of the Node interface.
func (n *Window) OutputCols() opt.ColList {
	cols := appendCols(n.Input.OutputCols())
	for i := range n.Functions {
		cols = append(cols, n.Functions[i].Col)
	}
	return cols
}

// ChildCount is part of the Node interface.
func (n *Window) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *Window) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *Window) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// MarkDistinct adds a boolean column that is true for the first occurrence
// of each distinct combination of DistinctCols.
type MarkDistinct struct {
	Base
	Input        Node
	Marker       opt.ColumnID
	DistinctCols opt.ColList
}

// Op is part of the Node interface.
func (n *MarkDistinct) Op() opt.Operator { return opt.MarkDistinctOp }

// OutputCols is part of the Node interface.
func (n *MarkDistinct) OutputCols() opt.ColList {
	return appendCols(n.Input.OutputCols(), n.Marker)
}

// ChildCount is part of the Node interface.
func (n *MarkDistinct) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *MarkDistinct) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *MarkDistinct) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// RowNumber numbers the rows of each partition of its input.
type RowNumber struct {
	Base
	Input        Node
	PartitionBy  opt.ColList
	RowNumberCol opt.ColumnID
	// MaxRows limits the number of rows returned per partition; 0 means no
	// limit.
	MaxRows int
}

// Op is part of the Node interface.
func (n *RowNumber) Op() opt.Operator { return opt.RowNumberOp }

// OutputCols is part of the Node interface.
func (n *RowNumber) OutputCols() opt.ColList {
	return appendCols(n.Input.OutputCols(), n.RowNumberCol)
}

// ChildCount is part of the Node interface.
func (n *RowNumber) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *RowNumber) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *RowNumber) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// TopNRanking returns the top ranked rows of each partition of its input.
type TopNRanking struct {
	Base
	Input       Node
	PartitionBy opt.ColList
	Ordering    opt.Ordering
	RankCol     opt.ColumnID
	MaxRank     int
	Partial     bool
}

// Op is part of the Node interface.
func (n *TopNRanking) Op() opt.Operator { return opt.TopNRankingOp }

// OutputCols is part of the Node interface.
func (n *TopNRanking) OutputCols() opt.ColList {
	return appendCols(n.Input.OutputCols(), n.RankCol)
}

// ChildCount is part of the Node interface.
func (n *TopNRanking) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *TopNRanking) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *TopNRanking) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// TableWriter writes its input rows to a table and returns write fragments.
type TableWriter struct {
	Base
	Input  Node
	Table  string
	Target WriterTarget
	// Partitioning is the partitioning the table layout requires for the
	// written rows, or nil if there is none.
	Partitioning *PartitioningScheme
	Output       opt.ColList
}

// Op is part of the Node interface.
func (n *TableWriter) Op() opt.Operator { return opt.TableWriterOp }

// OutputCols is part of the Node interface.
func (n *TableWriter) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *TableWriter) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *TableWriter) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *TableWriter) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// TableFinish commits the fragments written by table writers.
type TableFinish struct {
	Base
	Input  Node
	Output opt.ColList
}

// Op is part of the Node interface.
func (n *TableFinish) Op() opt.Operator { return opt.TableFinishOp }

// OutputCols is part of the Node interface.
func (n *TableFinish) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *TableFinish) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *TableFinish) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *TableFinish) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// TableDelete deletes rows from a table. Without an input it deletes the
// rows matching a predicate that is pushed into the storage layer.
type TableDelete struct {
	Base
	Table string
	// Input is nil for a metadata-only delete.
	Input  Node
	Output opt.ColList
}

// Op is part of the Node interface.
func (n *TableDelete) Op() opt.Operator { return opt.TableDeleteOp }

// OutputCols is part of the Node interface.
func (n *TableDelete) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *TableDelete) ChildCount() int {
	if n.Input == nil {
		return 0
	}
	return 1
}

// Child is part of the Node interface.
func (n *TableDelete) Child(nth int) Node {
	if nth != 0 || n.Input == nil {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *TableDelete) withChildren(children []Node) Node {
	cp := *n
	if len(children) > 0 {
		cp.Input = children[0]
	}
	return &cp
}

// StatisticsWriter stores the statistics computed by its input.
type StatisticsWriter struct {
	Base
	Input  Node
	Output opt.ColList
}

// Op is part of the Node interface.
func (n *StatisticsWriter) Op() opt.Operator { return opt.StatisticsWriterOp }

// OutputCols is part of the Node interface.
func (n *StatisticsWriter) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *StatisticsWriter) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *StatisticsWriter) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *StatisticsWriter) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// CubeFinish commits the fragments written into a cube.
type CubeFinish struct {
	Base
	Input  Node
	Output opt.ColList
}

// Op is part of the Node interface.
func (n *CubeFinish) Op() opt.Operator { return opt.CubeFinishOp }

// OutputCols is part of the Node interface.
func (n *CubeFinish) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *CubeFinish) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *CubeFinish) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *CubeFinish) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// CTEScan reads the rows of a common table expression.
type CTEScan struct {
	Base
	Input Node
	Name  string
}

// Op is part of the Node interface.
func (n *CTEScan) Op() opt.Operator { return opt.CTEScanOp }

// OutputCols is part of the Node interface.
func (n *CTEScan) OutputCols() opt.ColList { return n.Input.OutputCols() }

// ChildCount is part of the Node interface.
func (n *CTEScan) ChildCount() int { return 1 }

// Child is part of the Node interface.
func (n *CTEScan) Child(nth int) Node {
	if nth != 0 {
		panic(childOutOfRange(n, nth))
	}
	return n.Input
}

func (n *CTEScan) withChildren(children []Node) Node {
	cp := *n
	cp.Input = children[0]
	return &cp
}

// -- Multi-input operators --

// Exchange moves rows between streams. Exchanges in the input of local
// exchange placement are always remote; the local ones are only created by
// the pass.
type Exchange struct {
	Base
	Type         ExchangeType
	Scope        ExchangeScope
	Partitioning PartitioningScheme
	// Ordering is set for a merging gather, which preserves the order of its
	// sorted input streams.
	Ordering opt.Ordering
	Sources  []Node
	// InputLayouts[i] lists the columns of Sources[i] that make up the output
	// columns, in output order.
	InputLayouts []opt.ColList
	Output       opt.ColList
	// AggType selects the hash scheme of a repartitioning exchange that feeds
	// an aggregation.
	AggType AggregationType
}

// IsMerge returns true if the exchange preserves the order of its input
// streams.
func (n *Exchange) IsMerge() bool {
	return n.Type == GatherExchange && len(n.Ordering) > 0
}

// Op is part of the Node interface.
func (n *Exchange) Op() opt.Operator { return opt.ExchangeOp }

// OutputCols is part of the Node interface.
func (n *Exchange) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *Exchange) ChildCount() int { return len(n.Sources) }

// Child is part of the Node interface.
func (n *Exchange) Child(nth int) Node {
	if nth < 0 || nth >= len(n.Sources) {
		panic(childOutOfRange(n, nth))
	}
	return n.Sources[nth]
}

func (n *Exchange) withChildren(children []Node) Node {
	cp := *n
	cp.Sources = append([]Node(nil), children...)
	return &cp
}

// Union concatenates the rows of its inputs.
type Union struct {
	Base
	Sources []Node
	Output  opt.ColList
	// InputLayouts[i] lists the columns of Sources[i] that map to the output
	// columns, in output order.
	InputLayouts []opt.ColList
}

// SourceOutputLayout returns the columns of the ith source that make up the
// output columns.
func (n *Union) SourceOutputLayout(i int) opt.ColList {
	return n.InputLayouts[i]
}

// Op is part of the Node interface.
func (n *Union) Op() opt.Operator { return opt.UnionOp }

// OutputCols is part of the Node interface.
func (n *Union) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *Union) ChildCount() int { return len(n.Sources) }

// Child is part of the Node interface.
func (n *Union) Child(nth int) Node {
	if nth < 0 || nth >= len(n.Sources) {
		panic(childOutOfRange(n, nth))
	}
	return n.Sources[nth]
}

func (n *Union) withChildren(children []Node) Node {
	cp := *n
	cp.Sources = append([]Node(nil), children...)
	return &cp
}

// Join is a hash join. The left input is the probe side and the right input
// is the build side.
type Join struct {
	Base
	Type     JoinType
	Left     Node
	Right    Node
	Criteria []EquiJoinCondition
	Output   opt.ColList
	Spill    Spill
}

// LeftKeys returns the probe side columns of the join criteria.
func (n *Join) LeftKeys() opt.ColList {
	cols := make(opt.ColList, len(n.Criteria))
	for i := range n.Criteria {
		cols[i] = n.Criteria[i].Left
	}
	return cols
}

// RightKeys returns the build side columns of the join criteria.
func (n *Join) RightKeys() opt.ColList {
	cols := make(opt.ColList, len(n.Criteria))
	for i := range n.Criteria {
		cols[i] = n.Criteria[i].Right
	}
	return cols
}

// WithSpill returns a copy of the join with the given spill decision.
func (n *Join) WithSpill(s Spill) *Join {
	cp := *n
	cp.Spill = s
	return &cp
}

// Op is part of the Node interface.
func (n *Join) Op() opt.Operator { return opt.JoinOp }

// OutputCols is part of the Node interface.
func (n *Join) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *Join) ChildCount() int { return 2 }

// Child is part of the Node interface.
func (n *Join) Child(nth int) Node {
	switch nth {
	case 0:
		return n.Left
	case 1:
		return n.Right
	}
	panic(childOutOfRange(n, nth))
}

func (n *Join) withChildren(children []Node) Node {
	cp := *n
	cp.Left, cp.Right = children[0], children[1]
	return &cp
}

// SemiJoin adds a column to each source row that tells whether the row has a
// match in the filtering source.
type SemiJoin struct {
	Base
	Source          Node
	FilteringSource Node
	SourceCol       opt.ColumnID
	FilteringCol    opt.ColumnID
	MatchCol        opt.ColumnID
}

// Op is part of the Node interface.
func (n *SemiJoin) Op() opt.Operator { return opt.SemiJoinOp }

// OutputCols is part of the Node interface.
func (n *SemiJoin) OutputCols() opt.ColList {
	return appendCols(n.Source.OutputCols(), n.MatchCol)
}

// ChildCount is part of the Node interface.
func (n *SemiJoin) ChildCount() int { return 2 }

// Child is part of the Node interface.
func (n *SemiJoin) Child(nth int) Node {
	switch nth {
	case 0:
		return n.Source
	case 1:
		return n.FilteringSource
	}
	panic(childOutOfRange(n, nth))
}

func (n *SemiJoin) withChildren(children []Node) Node {
	cp := *n
	cp.Source, cp.FilteringSource = children[0], children[1]
	return &cp
}

// SpatialJoin joins rows on a spatial predicate. The right input is indexed
// and consumed entirely before probing.
type SpatialJoin struct {
	Base
	Type   JoinType
	Left   Node
	Right  Node
	Filter string
	Output opt.ColList
}

// Op is part of the Node interface.
func (n *SpatialJoin) Op() opt.Operator { return opt.SpatialJoinOp }

// OutputCols is part of the Node interface.
func (n *SpatialJoin) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *SpatialJoin) ChildCount() int { return 2 }

// Child is part of the Node interface.
func (n *SpatialJoin) Child(nth int) Node {
	switch nth {
	case 0:
		return n.Left
	case 1:
		return n.Right
	}
	panic(childOutOfRange(n, nth))
}

func (n *SpatialJoin) withChildren(children []Node) Node {
	cp := *n
	cp.Left, cp.Right = children[0], children[1]
	return &cp
}

// IndexJoin looks up each probe row in an index.
type IndexJoin struct {
	Base
	Type        JoinType
	Probe       Node
	IndexSource Node
	Criteria    []EquiJoinCondition
	Output      opt.ColList
}

// Op is part of the Node interface.
func (n *IndexJoin) Op() opt.Operator { return opt.IndexJoinOp }

// OutputCols is part of the Node interface.
func (n *IndexJoin) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *IndexJoin) ChildCount() int { return 2 }

// Child is part of the Node interface.
func (n *IndexJoin) Child(nth int) Node {
	switch nth {
	case 0:
		return n.Probe
	case 1:
		return n.IndexSource
	}
	panic(childOutOfRange(n, nth))
}

func (n *IndexJoin) withChildren(children []Node) Node {
	cp := *n
	cp.Probe, cp.IndexSource = children[0], children[1]
	return &cp
}

// Apply evaluates a correlated subquery for each input row.
type Apply struct {
	Base
	Input    Node
	Subquery Node
	Output   opt.ColList
}

// Op is part of the Node interface.
func (n *Apply) Op() opt.Operator { return opt.ApplyOp }

// OutputCols is part of the Node interface.
func (n *Apply) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *Apply) ChildCount() int { return 2 }

// Child is part of the Node interface.
func (n *Apply) Child(nth int) Node {
	switch nth {
	case 0:
		return n.Input
	case 1:
		return n.Subquery
	}
	panic(childOutOfRange(n, nth))
}

func (n *Apply) withChildren(children []Node) Node {
	cp := *n
	cp.Input, cp.Subquery = children[0], children[1]
	return &cp
}

// LateralJoin joins each input row with the rows of a correlated subquery.
type LateralJoin struct {
	Base
	Input    Node
	Subquery Node
	Output   opt.ColList
}

// Op is part of the Node interface.
func (n *LateralJoin) Op() opt.Operator { return opt.LateralJoinOp }

// OutputCols is part of the Node interface.
func (n *LateralJoin) OutputCols() opt.ColList { return n.Output }

// ChildCount is part of the Node interface.
func (n *LateralJoin) ChildCount() int { return 2 }

// Child is part of the Node interface.
func (n *LateralJoin) Child(nth int) Node {
	switch nth {
	case 0:
		return n.Input
	case 1:
		return n.Subquery
	}
	panic(childOutOfRange(n, nth))
}

func (n *LateralJoin) withChildren(children []Node) Node {
	cp := *n
	cp.Input, cp.Subquery = children[0], children[1]
	return &cp
}
