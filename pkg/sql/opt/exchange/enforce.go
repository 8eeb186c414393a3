// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package exchange inserts local exchanges into a plan so that the output of
// a node satisfies the stream properties required by its consumer.
package exchange

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/derive"
	"github.com/cockroachdb/localex/pkg/sql/opt/props/physical"
)

// Planned is a plan node together with the stream properties of its output.
type Planned struct {
	Node  plan.Node
	Props physical.StreamProps
}

// Enforcer inserts the local exchanges needed to satisfy required stream
// properties.
type Enforcer struct {
	ids     *plan.IDAllocator
	deriver derive.Deriver

	// OnInsert, if set, is called for every exchange created by the Enforcer.
	OnInsert func(ex *plan.Exchange)
}

// Init initializes the Enforcer. New exchanges get their ids from ids, and
// their properties are computed by deriver.
func (e *Enforcer) Init(ids *plan.IDAllocator, deriver derive.Deriver) {
	*e = Enforcer{ids: ids, deriver: deriver}
}

// NextID returns a new node id.
func (e *Enforcer) NextID() plan.ID {
	return e.ids.NextID()
}

// Derive computes the properties of n from the properties of its inputs.
func (e *Enforcer) Derive(n plan.Node, inputs ...physical.StreamProps) Planned {
	return Planned{Node: n, Props: e.deriver.Derive(n, inputs)}
}

// Inserted derives the properties of an exchange created outside of Enforce
// and reports it to OnInsert.
func (e *Enforcer) Inserted(ex *plan.Exchange, inputs ...physical.StreamProps) Planned {
	if e.OnInsert != nil {
		e.OnInsert(ex)
	}
	return e.Derive(ex, inputs...)
}

// Enforce returns a plan that satisfies the required properties. If p already
// satisfies them, it is returned unchanged; otherwise a single local exchange
// is placed on top of it:
//
//  1. a single stream is preferred: gather, or merge if an ordering must be
//     preserved;
//  2. there is no partitioning preference: arbitrary repartition;
//  3. parallel streams are preferred: hash repartition on the preferred
//     partitioning columns, with the hash scheme of aggType;
//  4. otherwise: gather.
//
// It is an assertion failure if the result does not satisfy required.
func (e *Enforcer) Enforce(
	p Planned, required physical.StreamPrefs, aggType plan.AggregationType,
) Planned {
	if required.IsSatisfiedBy(&p.Props) {
		return p
	}

	var ex *plan.Exchange
	cols, partitioned := required.PartitioningCols()
	switch {
	case required.IsSingleStreamPreferred():
		if ordering := required.Ordering(); len(ordering) > 0 {
			ex = MergingExchange(e.NextID(), plan.LocalScope, p.Node, ordering)
		} else {
			ex = GatheringExchange(e.NextID(), plan.LocalScope, p.Node)
		}

	case !partitioned:
		ex = ArbitraryExchange(e.NextID(), plan.LocalScope, p.Node)

	case required.IsParallelPreferred():
		ex = PartitionedExchange(e.NextID(), plan.LocalScope, p.Node, cols, aggType)

	default:
		// No parallel preference was expressed, so fall back to a single
		// stream.
		ex = GatheringExchange(e.NextID(), plan.LocalScope, p.Node)
	}

	res := e.Inserted(ex, p.Props)
	if !required.IsSatisfiedBy(&res.Props) {
		panic(errors.AssertionFailedf(
			"%s exchange %d provides %s, which does not satisfy %s",
			KindOf(ex), ex.ID(), res.Props.String(), required.String(),
		))
	}
	return res
}
