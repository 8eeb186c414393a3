// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/util/treeprinter"
)

// AnnotateFunc returns extra lines that are printed below the description of
// a node.
type AnnotateFunc func(n Node) []string

// Format returns a tree representation of the plan. Columns are labeled using
// md, which may be nil. If annotate is not nil, the lines it returns for each
// node are printed below the node.
func Format(root Node, md *opt.Metadata, annotate AnnotateFunc) string {
	tp := treeprinter.New()
	f := formatter{md: md, annotate: annotate}
	f.format(root, tp)
	return tp.String()
}

// Describe returns the single-line description of a node that Format prints
// for it, without its children.
func Describe(n Node, md *opt.Metadata) string {
	f := formatter{md: md}
	return f.describe(n)
}

type formatter struct {
	md       *opt.Metadata
	annotate AnnotateFunc
	buf      strings.Builder
}

func (f *formatter) format(n Node, tp treeprinter.Node) {
	text := f.describe(n)
	if f.annotate != nil {
		if lines := f.annotate(n); len(lines) > 0 {
			text = text + "\n" + strings.Join(lines, "\n")
		}
	}
	child := tp.Child(text)
	for i, cnt := 0, n.ChildCount(); i < cnt; i++ {
		f.format(n.Child(i), child)
	}
}

func (f *formatter) cols(cols opt.ColList) string {
	return opt.FormatColList(f.md, cols)
}

func (f *formatter) col(col opt.ColumnID) string {
	return f.md.ColumnLabel(col)
}

func (f *formatter) ordering(o opt.Ordering) string {
	return o.Format(f.md)
}

func (f *formatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&f.buf, format, args...)
}

func (f *formatter) criteria(conds []EquiJoinCondition) {
	for i := range conds {
		if i > 0 {
			f.buf.WriteByte(',')
		} else {
			f.buf.WriteByte(' ')
		}
		f.printf("%s=%s", f.col(conds[i].Left), f.col(conds[i].Right))
	}
}

// describe returns the single-line description of a node.
func (f *formatter) describe(n Node) string {
	f.buf.Reset()
	f.buf.WriteString(n.Op().String())
	switch t := n.(type) {
	case *TableScan:
		f.printf(" %s %s", t.Table, f.cols(t.Cols))
		if t.SingleStream {
			f.printf(" single-stream")
		}
		if len(t.StreamPartitioning) > 0 {
			f.printf(" partitioning=%s", f.cols(t.StreamPartitioning))
		}
		if len(t.Ordering) > 0 {
			f.printf(" ordering=%s", f.ordering(t.Ordering))
		}

	case *Values:
		f.printf(" %s rows=%d", f.cols(t.Cols), t.RowCount)

	case *IndexSource:
		f.printf(" %s %s", t.Index, f.cols(t.Cols))

	case *Output:
		f.printf(" %s", f.cols(t.Cols))
		if len(t.Ordering) > 0 {
			f.printf(" ordering=%s", f.ordering(t.Ordering))
		}

	case *ExplainAnalyze:
		f.printf(" %s", f.col(t.Col))

	case *Project:
		f.printf(" %s", f.cols(t.OutputCols()))

	case *Filter:
		if t.Predicate != "" {
			f.printf(" %s", t.Predicate)
		}

	case *AssignUniqueID:
		f.printf(" %s", f.col(t.IDCol))

	case *Sort:
		f.printf(" %s", f.ordering(t.Ordering))

	case *TopN:
		f.printf(" %d %s", t.Count, f.ordering(t.Ordering))
		if t.Step != StepSingle {
			f.printf(" step=%s", t.Step)
		}

	case *Limit:
		f.printf(" %d", t.Count)
		if t.Partial {
			f.printf(" partial")
		}
		if t.WithTies {
			f.printf(" with-ties")
		}

	case *DistinctLimit:
		f.printf(" %d %s", t.Count, f.cols(t.DistinctCols))
		if t.Partial {
			f.printf(" partial")
		}

	case *Aggregation:
		f.printf(" keys=%s", f.cols(t.GroupingKeys))
		if t.GroupingSetCount != 1 || t.GlobalGroupingSets != 0 {
			f.printf(" sets=%d global=%d", t.GroupingSetCount, t.GlobalGroupingSets)
		}
		if t.Step != StepSingle {
			f.printf(" step=%s", t.Step)
		}
		if t.Type != HashAggregation {
			f.printf(" type=%s", t.Type)
		}
		if len(t.PreGrouped) > 0 {
			f.printf(" pre-grouped=%s", f.cols(t.PreGrouped))
		}

	case *Window:
		f.printf(" partition=%s", f.cols(t.PartitionBy))
		if len(t.Ordering) > 0 {
			f.printf(" order=%s", f.ordering(t.Ordering))
		}
		if !t.PrePartitioned.Empty() {
			f.printf(" pre-partitioned=%s", opt.FormatColSet(f.md, t.PrePartitioned))
		}
		if t.PreSortedPrefix > 0 {
			f.printf(" pre-sorted=%d", t.PreSortedPrefix)
		}

	case *MarkDistinct:
		f.printf(" marker=%s distinct=%s", f.col(t.Marker), f.cols(t.DistinctCols))

	case *RowNumber:
		f.printf(" partition=%s col=%s", f.cols(t.PartitionBy), f.col(t.RowNumberCol))
		if t.MaxRows > 0 {
			f.printf(" max-rows=%d", t.MaxRows)
		}

	case *TopNRanking:
		f.printf(" partition=%s order=%s rank=%s max-rank=%d",
			f.cols(t.PartitionBy), f.ordering(t.Ordering), f.col(t.RankCol), t.MaxRank)
		if t.Partial {
			f.printf(" partial")
		}

	case *TableWriter:
		f.printf(" %s %s", t.Table, t.Target)
		if t.Partitioning != nil {
			f.printf(" partitioning=%s%s", t.Partitioning.Handle, f.cols(t.Partitioning.Cols))
		}

	case *TableDelete:
		f.printf(" %s", t.Table)

	case *CTEScan:
		f.printf(" %s", t.Name)

	case *Exchange:
		f.printf(" %s", t.Scope)
		switch {
		case t.IsMerge():
			f.printf(" merge %s", f.ordering(t.Ordering))
		case t.Type == RepartitionExchange:
			switch t.Partitioning.Handle {
			case FixedHashPartitioning:
				f.printf(" repartition hash %s", f.cols(t.Partitioning.Cols))
			case FixedArbitraryPartitioning:
				f.printf(" repartition arbitrary")
			default:
				f.printf(" repartition %s%s", t.Partitioning.Handle, f.cols(t.Partitioning.Cols))
			}
			if t.AggType != HashAggregation {
				f.printf(" agg=%s", t.AggType)
			}
		default:
			f.printf(" %s", t.Type)
		}

	case *Union:
		f.printf(" %s", f.cols(t.Output))

	case *Join:
		f.buf.Reset()
		f.printf("%s-join", t.Type)
		f.criteria(t.Criteria)
		if t.Spill != SpillUndecided {
			f.printf(" %s", t.Spill)
		}

	case *SemiJoin:
		f.printf(" %s=%s match=%s", f.col(t.SourceCol), f.col(t.FilteringCol), f.col(t.MatchCol))

	case *SpatialJoin:
		f.printf(" %s", t.Type)
		if t.Filter != "" {
			f.printf(" %s", t.Filter)
		}

	case *IndexJoin:
		f.criteria(t.Criteria)
	}
	return f.buf.String()
}
