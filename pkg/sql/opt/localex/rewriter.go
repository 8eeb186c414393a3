// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package localex

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/exchange"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/cockroachdb/localex/pkg/sql/opt/props"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/derive"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/physical"
	"github.com/cockroachdb/localex/pkg/sql/sessiondata"
	"github.com/cockroachdb/localex/pkg/util/log"
)

// rewriter holds the state of a single run of the pass.
type rewriter struct {
	ctx      context.Context
	sd       *sessiondata.SessionData
	md       *opt.Metadata
	deriver  derive.Deriver
	metrics  *Metrics
	observer EnforceObserver
	enforcer exchange.Enforcer

	// inserted is the number of exchanges inserted so far.
	inserted int
}

func (r *rewriter) init(ctx context.Context, o *Optimizer, ids *plan.IDAllocator) {
	*r = rewriter{
		ctx:      ctx,
		sd:       o.sd,
		md:       o.md,
		deriver:  o.deriver,
		metrics:  o.metrics,
		observer: o.observer,
	}
	r.enforcer.Init(ids, o.deriver)
	r.enforcer.OnInsert = r.onInsert
}

func (r *rewriter) onInsert(ex *plan.Exchange) {
	r.inserted++
	kind := exchange.KindOf(ex)
	if r.metrics != nil {
		r.metrics.exchangeInserted(kind)
	}
	if log.V(2) && len(ex.Sources) > 0 {
		src := ex.Sources[0]
		log.VEventf(r.ctx, 2, "inserted local %s exchange %d above %s node %d (%d inputs) on %s",
			kind, ex.ID(), src.Op(), src.ID(), len(ex.Sources),
			opt.FormatColList(r.md, ex.Partitioning.Cols))
	}
}

// visit rewrites the subtree rooted at n, given the properties its consumer
// prefers. The result is not guaranteed to satisfy pref.
func (r *rewriter) visit(n plan.Node, pref physical.StreamPrefs) exchange.Planned {
	switch t := n.(type) {
	case *plan.Output:
		required := physical.AnyPrefs().WithOrderSensitivity()
		if len(t.Ordering) > 0 {
			required = physical.AnyPrefs().WithOrdering(t.Ordering)
		}
		return r.planAndEnforceChildren(n, required, required)

	case *plan.ExplainAnalyze:
		// The output is discarded, but the node still behaves like an output
		// node.
		required := physical.SingleStreamPrefs().WithOrderSensitivity()
		return r.planAndEnforceChildren(n, required, required)

	case *plan.Sort:
		return r.visitSort(t)

	case *plan.StatisticsWriter, *plan.TableFinish, *plan.CubeFinish, *plan.EnforceSingleRow:
		// These consume their whole input in one place. They change the input
		// organization completely, so the parent preference is not passed
		// through.
		return r.planAndEnforceChildren(n, physical.SingleStreamPrefs(), r.defaultParallelism())

	case *plan.TableDelete:
		if t.Input == nil {
			return r.visitDefault(n, pref)
		}
		return r.planAndEnforceChildren(n, physical.SingleStreamPrefs(), r.defaultParallelism())

	case *plan.TopN:
		return r.visitRowLimit(n, t.Step == plan.StepPartial, pref)

	case *plan.Limit:
		if t.WithTies {
			panic(errors.AssertionFailedf("unexpected limit node %d with ties", t.ID()))
		}
		return r.visitRowLimit(n, t.Partial, pref)

	case *plan.DistinctLimit:
		return r.visitRowLimit(n, t.Partial, pref)

	case *plan.Aggregation:
		return r.visitAggregation(t, pref)

	case *plan.Window:
		return r.visitWindow(t, pref)

	case *plan.MarkDistinct:
		required := r.partitionedInputPrefs(t.Input, pref, t.DistinctCols)
		input := r.planAndEnforce(t.Input, required, required, plan.HashAggregation)
		res := *t
		res.DistinctCols = pruneMarkDistinctCols(t.DistinctCols, input.Props.Local)
		return r.rebase(&res, input)

	case *plan.RowNumber:
		required := pref.WithDefaultParallelism(r.sd).WithPartitioning(t.PartitionBy)
		return r.planAndEnforceChildren(n, required, required)

	case *plan.TopNRanking:
		required := pref.WithDefaultParallelism(r.sd)
		if !t.Partial {
			required = required.WithPartitioning(t.PartitionBy)
		}
		return r.planAndEnforceChildren(n, required, required)

	case *plan.TableWriter:
		return r.visitTableWriter(t)

	case *plan.Exchange:
		if t.Scope == plan.LocalScope {
			panic(errors.AssertionFailedf("unexpected local exchange %d in input plan", t.ID()))
		}
		// A remote exchange changes the input organization completely, so the
		// parent preference is not passed through.
		if len(t.Ordering) > 0 {
			required := physical.AnyPrefs().WithOrdering(t.Ordering)
			return r.planAndEnforceChildren(n, required, required)
		}
		return r.planAndEnforceChildren(n, physical.AnyPrefs(), r.defaultParallelism())

	case *plan.Union:
		return r.visitUnion(t, pref)

	case *plan.Join:
		return r.visitJoin(t, pref)

	case *plan.SemiJoin:
		source := r.planProbe(t.Source, pref)
		// The filtering source is consumed completely before any source row
		// is processed.
		filtering := r.planAndEnforce(
			t.FilteringSource, physical.SingleStreamPrefs(), physical.SingleStreamPrefs(), plan.HashAggregation,
		)
		return r.rebase(n, source, filtering)

	case *plan.SpatialJoin:
		probe := r.planProbe(t.Left, pref)
		build := r.planAndEnforce(
			t.Right, physical.SingleStreamPrefs(), physical.SingleStreamPrefs(), plan.HashAggregation,
		)
		return r.rebase(n, probe, build)

	case *plan.IndexJoin:
		probe := r.planProbe(t.Probe, pref)
		// Index lookups cannot run in parallel drivers.
		indexProps := derive.Recursively(r.deriver, t.IndexSource)
		if !indexProps.IsSingleStream() {
			panic(errors.AssertionFailedf(
				"index source of index join %d must be a single stream, got %s",
				t.ID(), indexProps.String(),
			))
		}
		return r.rebase(n, probe, exchange.Planned{Node: t.IndexSource, Props: indexProps})

	case *plan.TableScan, *plan.Values, *plan.IndexSource, *plan.Project, *plan.Filter,
		*plan.AssignUniqueID, *plan.CTEScan:
		return r.visitDefault(n, pref)

	case *plan.Apply, *plan.LateralJoin:
		panic(errors.AssertionFailedf("unexpected %s node %d", n.Op(), n.ID()))
	}
	panic(errors.AssertionFailedf("unhandled %s node %d", n.Op(), n.ID()))
}

// visitDefault passes the parent preference through, relaxed so that it is
// never required.
func (r *rewriter) visitDefault(n plan.Node, pref physical.StreamPrefs) exchange.Planned {
	return r.planAndEnforceChildren(
		n,
		pref.WithoutPreference().WithDefaultParallelism(r.sd),
		pref.WithDefaultParallelism(r.sd),
	)
}

func (r *rewriter) visitSort(sort *plan.Sort) exchange.Planned {
	if !r.sd.DistributedSort {
		// The sort requires that all data be in one stream.
		return r.planAndEnforceChildren(sort, physical.SingleStreamPrefs(), r.defaultParallelism())
	}
	res := r.planAndEnforceChildren(sort, physical.FixedParallelismPrefs(), physical.FixedParallelismPrefs())
	if res.Props.IsSingleStream() {
		return res
	}
	// Each stream is sorted independently, then the sorted streams are
	// merged.
	merge := exchange.MergingExchange(r.enforcer.NextID(), plan.LocalScope, res.Node, sort.Ordering)
	return r.enforcer.Inserted(merge, res.Props)
}

// visitRowLimit handles the operators that return a limited number of rows.
// The partial forms run independently in each stream; the final forms must
// see all rows in one stream.
func (r *rewriter) visitRowLimit(
	n plan.Node, partial bool, pref physical.StreamPrefs,
) exchange.Planned {
	if partial {
		return r.visitDefault(n, pref)
	}
	return r.planAndEnforceChildren(n, physical.SingleStreamPrefs(), r.defaultParallelism())
}

func (r *rewriter) visitAggregation(
	agg *plan.Aggregation, pref physical.StreamPrefs,
) exchange.Planned {
	if agg.Step != plan.StepSingle {
		panic(errors.AssertionFailedf(
			"step of aggregation %d is expected to be single, but it is %s", agg.ID(), agg.Step,
		))
	}

	if agg.HasSingleNodeExecutionPreference() {
		return r.planAndEnforceChildren(agg, physical.SingleStreamPrefs(), r.defaultParallelism())
	}

	if agg.HasDefaultOutput() {
		if !agg.IsDecomposable() {
			panic(errors.AssertionFailedf("aggregation %d with default output is not decomposable", agg.ID()))
		}
		// Place a local exchange directly below the aggregation, so that the
		// default rows produced by the partial aggregations of all the streams
		// are combined by a single final aggregation.
		input := r.planAndEnforce(agg.Input, physical.AnyPrefs(), r.defaultParallelism(), plan.HashAggregation)
		ex := exchange.PartitionedExchange(
			r.enforcer.NextID(), plan.LocalScope, input.Node, agg.GroupingKeys, plan.HashAggregation,
		)
		return r.rebase(agg, r.enforcer.Inserted(ex, input.Props))
	}

	required := r.partitionedInputPrefs(agg.Input, pref, agg.GroupingKeys)
	input := r.planAndEnforce(agg.Input, required, required, agg.Type)

	res := *agg
	res.PreGrouped = nil
	if props.Match(input.Props.Local, props.GroupedOn(agg.GroupingKeys))[0] == nil {
		// The input is already grouped on all the keys.
		res.PreGrouped = agg.GroupingKeys
	}
	return r.rebase(&res, input)
}

func (r *rewriter) visitWindow(window *plan.Window, pref physical.StreamPrefs) exchange.Planned {
	required := r.partitionedInputPrefs(window.Input, pref, window.PartitionBy)
	input := r.planAndEnforce(window.Input, required, required, plan.HashAggregation)

	var desired []props.LocalProperty
	if len(window.PartitionBy) > 0 {
		desired = append(desired, props.GroupedOn(window.PartitionBy)...)
	}
	desired = append(desired, props.SortedOn(window.Ordering)...)
	unsatisfied := props.Match(input.Props.Local, desired)

	var prePartitioned opt.ColSet
	if len(window.PartitionBy) > 0 {
		var notPartitioned opt.ColSet
		if unsatisfied[0] != nil {
			notPartitioned = unsatisfied[0].Columns()
		}
		for _, col := range window.PartitionBy {
			if !notPartitioned.Contains(int(col)) {
				prePartitioned.Add(int(col))
			}
		}
		unsatisfied = unsatisfied[1:]
	}

	preSortedPrefix := 0
	if prePartitioned.Equals(opt.ColListToSet(window.PartitionBy)) {
		for preSortedPrefix < len(unsatisfied) && unsatisfied[preSortedPrefix] == nil {
			preSortedPrefix++
		}
	}

	res := *window
	res.PrePartitioned = prePartitioned
	res.PreSortedPrefix = preSortedPrefix
	return r.rebase(&res, input)
}

func (r *rewriter) visitTableWriter(writer *plan.TableWriter) exchange.Planned {
	var required, preferred physical.StreamPrefs
	switch {
	case writer.Target == plan.UpdateTarget || writer.Target == plan.DeleteAsInsertTarget:
		// Updates must keep the assignment of rows to writers stable.
		required, preferred = physical.FixedParallelismPrefs(), physical.FixedParallelismPrefs()

	case r.sd.TaskWriterCount <= 1:
		required, preferred = physical.SingleStreamPrefs(), r.defaultParallelism()

	case writer.Partitioning == nil:
		required, preferred = physical.FixedParallelismPrefs(), physical.FixedParallelismPrefs()

	case writer.Partitioning.Handle == plan.FixedHashPartitioning:
		required = physical.ExactlyPartitionedOnPrefs(writer.Partitioning.Cols)
		preferred = required

	default:
		required, preferred = physical.SingleStreamPrefs(), r.defaultParallelism()
	}
	return r.planAndEnforceChildren(writer, required, preferred)
}

func (r *rewriter) visitUnion(union *plan.Union, pref physical.StreamPrefs) exchange.Planned {
	// The union is replaced by a local exchange, which does not keep any of
	// the stream properties of the inputs, so the inputs are planned
	// independently.
	sources := make([]plan.Node, len(union.Sources))
	inputs := make([]physical.StreamProps, len(union.Sources))
	for i, src := range union.Sources {
		res := r.visit(src, r.defaultParallelism())
		sources[i], inputs[i] = res.Node, res.Props
	}

	ex := &plan.Exchange{
		Base:         plan.Base{NodeID: r.enforcer.NextID()},
		Scope:        plan.LocalScope,
		Sources:      sources,
		InputLayouts: union.InputLayouts,
		Output:       union.Output,
	}
	cols, partitioned := pref.PartitioningCols()
	switch {
	case pref.IsSingleStreamPreferred():
		ex.Type = plan.GatherExchange
		ex.Partitioning = plan.PartitioningScheme{Handle: plan.SinglePartitioning}
	case partitioned:
		ex.Type = plan.RepartitionExchange
		ex.Partitioning = plan.PartitioningScheme{Handle: plan.FixedHashPartitioning, Cols: cols}
	default:
		ex.Type = plan.RepartitionExchange
		ex.Partitioning = plan.PartitioningScheme{Handle: plan.FixedArbitraryPartitioning}
	}
	return r.enforcer.Inserted(ex, inputs...)
}

func (r *rewriter) visitJoin(join *plan.Join, pref physical.StreamPrefs) exchange.Planned {
	probe := r.planProbe(join.Left, pref)

	if r.sd.SpillEnabled {
		// Spilling requires a fixed number of probe streams. Rather than
		// adding an exchange that only pays off when the join spills, spilling
		// is disabled for other probe distributions.
		if probe.Props.Distribution == physical.DistributionFixed {
			join = join.WithSpill(plan.Spillable)
		} else {
			join = join.WithSpill(plan.NotSpillable)
		}
	}

	// The build side is consumed completely, so the parent preference is not
	// passed through. Without equi-join keys, there is nothing to partition
	// the build rows on.
	buildPref := physical.SingleStreamPrefs()
	if keys := join.RightKeys(); r.sd.TaskConcurrency > 1 && len(keys) > 0 {
		buildPref = physical.ExactlyPartitionedOnPrefs(keys)
	}
	build := r.planAndEnforce(join.Right, buildPref, buildPref, plan.HashAggregation)

	return r.rebase(join, probe, build)
}

// planProbe plans the probe side of a join-like operator, which streams
// through the operator.
func (r *rewriter) planProbe(probe plan.Node, pref physical.StreamPrefs) exchange.Planned {
	return r.planAndEnforce(
		probe,
		r.defaultParallelism(),
		pref.ConstrainTo(opt.ColListToSet(probe.OutputCols())).WithDefaultParallelism(r.sd),
		plan.HashAggregation,
	)
}

// partitionedInputPrefs returns the requirement of an operator that must see
// all the rows with equal values of cols in the same stream.
func (r *rewriter) partitionedInputPrefs(
	input plan.Node, pref physical.StreamPrefs, cols opt.ColList,
) physical.StreamPrefs {
	return pref.
		ConstrainTo(opt.ColListToSet(input.OutputCols())).
		WithDefaultParallelism(r.sd).
		WithPartitioning(cols)
}

func (r *rewriter) defaultParallelism() physical.StreamPrefs {
	return physical.DefaultParallelismPrefs(r.sd)
}

// planAndEnforceChildren plans every child of n, and enforces the required
// properties on it. References to columns that a child does not produce are
// removed from the properties first.
func (r *rewriter) planAndEnforceChildren(
	n plan.Node, required, preferred physical.StreamPrefs,
) exchange.Planned {
	children := make([]exchange.Planned, n.ChildCount())
	for i := range children {
		child := n.Child(i)
		cols := opt.ColListToSet(child.OutputCols())
		children[i] = r.planAndEnforce(
			child, required.ConstrainTo(cols), preferred.ConstrainTo(cols), plan.HashAggregation,
		)
	}
	return r.rebase(n, children...)
}

// planAndEnforce plans n using the preferred properties, then enforces the
// required properties on the result.
func (r *rewriter) planAndEnforce(
	n plan.Node, required, preferred physical.StreamPrefs, aggType plan.AggregationType,
) exchange.Planned {
	r.checkProduced(n, required)
	r.checkProduced(n, preferred)

	res := r.visit(n, preferred)
	res = r.enforcer.Enforce(res, required, aggType)
	if r.observer != nil {
		r.observer(required, res)
	}
	return res
}

// checkProduced verifies that the partitioning columns of p are produced by
// n.
func (r *rewriter) checkProduced(n plan.Node, p physical.StreamPrefs) {
	if cols, ok := p.PartitioningCols(); ok && !opt.ColListContainsAll(n.OutputCols(), cols) {
		panic(errors.AssertionFailedf(
			"%s node %d does not produce partitioning columns %s of %s",
			n.Op(), n.ID(), opt.FormatColList(r.md, cols), p.Format(r.md),
		))
	}
}

// rebase replaces the children of n with the planned children, and derives
// the properties of the result.
func (r *rewriter) rebase(n plan.Node, children ...exchange.Planned) exchange.Planned {
	nodes := make([]plan.Node, len(children))
	inputs := make([]physical.StreamProps, len(children))
	for i := range children {
		nodes[i], inputs[i] = children[i].Node, children[i].Props
	}
	return r.enforcer.Derive(plan.ReplaceChildren(n, nodes), inputs...)
}
