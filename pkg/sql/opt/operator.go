// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import "fmt"

// Operator describes the type of a physical plan node.
type Operator uint8

const (
	// UnknownOp is the zero value and never appears in a well-formed plan.
	UnknownOp Operator = iota

	// -- Leaf operators --

	TableScanOp
	ValuesOp
	IndexSourceOp

	// -- Single-input operators --

	OutputOp
	ExplainAnalyzeOp
	ProjectOp
	FilterOp
	AssignUniqueIDOp
	SortOp
	TopNOp
	LimitOp
	DistinctLimitOp
	EnforceSingleRowOp
	AggregationOp
	WindowOp
	MarkDistinctOp
	RowNumberOp
	TopNRankingOp
	TableWriterOp
	TableFinishOp
	TableDeleteOp
	StatisticsWriterOp
	CubeFinishOp
	CTEScanOp

	// -- Multi-input operators --

	ExchangeOp
	UnionOp
	JoinOp
	SemiJoinOp
	SpatialJoinOp
	IndexJoinOp

	// ApplyOp and LateralJoinOp are correlated operators that are decorrelated
	// before physical planning.
	ApplyOp
	LateralJoinOp

	// NumOperators tracks the total count of operators.
	NumOperators
)

var operatorNames = [NumOperators]string{
	UnknownOp:          "unknown",
	TableScanOp:        "table-scan",
	ValuesOp:           "values",
	IndexSourceOp:      "index-source",
	OutputOp:           "output",
	ExplainAnalyzeOp:   "explain-analyze",
	ProjectOp:          "project",
	FilterOp:           "filter",
	AssignUniqueIDOp:   "assign-unique-id",
	SortOp:             "sort",
	TopNOp:             "top-n",
	LimitOp:            "limit",
	DistinctLimitOp:    "distinct-limit",
	EnforceSingleRowOp: "enforce-single-row",
	AggregationOp:      "aggregation",
	WindowOp:           "window",
	MarkDistinctOp:     "mark-distinct",
	RowNumberOp:        "row-number",
	TopNRankingOp:      "top-n-ranking",
	TableWriterOp:      "table-writer",
	TableFinishOp:      "table-finish",
	TableDeleteOp:      "table-delete",
	StatisticsWriterOp: "statistics-writer",
	CubeFinishOp:       "cube-finish",
	CTEScanOp:          "cte-scan",
	ExchangeOp:         "exchange",
	UnionOp:            "union",
	JoinOp:             "join",
	SemiJoinOp:         "semi-join",
	SpatialJoinOp:      "spatial-join",
	IndexJoinOp:        "index-join",
	ApplyOp:            "apply",
	LateralJoinOp:      "lateral-join",
}

func (op Operator) String() string {
	if op >= NumOperators {
		return fmt.Sprintf("operator(%d)", op)
	}
	return operatorNames[op]
}

// ParseOperator returns the operator with the given name, as printed by
// Operator.String.
func ParseOperator(name string) (Operator, bool) {
	for op := UnknownOp + 1; op < NumOperators; op++ {
		if operatorNames[op] == name {
			return op, true
		}
	}
	return UnknownOp, false
}
