// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package exchange

import (
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/plan"
)

// Kind classifies exchanges by the way they move rows.
type Kind uint8

const (
	// Gather combines all streams into one, in arbitrary order.
	Gather Kind = iota
	// Merge combines sorted streams into one sorted stream.
	Merge
	// RepartitionHash redistributes rows by the hash of some columns.
	RepartitionHash
	// RepartitionArbitrary redistributes rows round-robin.
	RepartitionArbitrary
	// Other is any other exchange, such as a replicating one.
	Other

	// NumKinds tracks the number of exchange kinds.
	NumKinds
)

var kindNames = [NumKinds]string{
	Gather:               "gather",
	Merge:                "merge",
	RepartitionHash:      "repartition_hash",
	RepartitionArbitrary: "repartition_arbitrary",
	Other:                "other",
}

func (k Kind) String() string {
	if k < NumKinds {
		return kindNames[k]
	}
	return "unknown"
}

// KindOf returns the kind of the exchange.
func KindOf(ex *plan.Exchange) Kind {
	switch {
	case ex.IsMerge():
		return Merge
	case ex.Type == plan.GatherExchange:
		return Gather
	case ex.Type == plan.RepartitionExchange && ex.Partitioning.Handle == plan.FixedHashPartitioning:
		return RepartitionHash
	case ex.Type == plan.RepartitionExchange && ex.Partitioning.Handle == plan.FixedArbitraryPartitioning:
		return RepartitionArbitrary
	}
	return Other
}

func newExchange(
	id plan.ID,
	typ plan.ExchangeType,
	scope plan.ExchangeScope,
	partitioning plan.PartitioningScheme,
	source plan.Node,
) *plan.Exchange {
	cols := source.OutputCols()
	return &plan.Exchange{
		Base:         plan.Base{NodeID: id},
		Type:         typ,
		Scope:        scope,
		Partitioning: partitioning,
		Sources:      []plan.Node{source},
		InputLayouts: []opt.ColList{cols},
		Output:       cols,
	}
}

// GatheringExchange returns an exchange that combines the streams of source
// into a single stream.
func GatheringExchange(id plan.ID, scope plan.ExchangeScope, source plan.Node) *plan.Exchange {
	return newExchange(
		id, plan.GatherExchange, scope,
		plan.PartitioningScheme{Handle: plan.SinglePartitioning},
		source,
	)
}

// MergingExchange returns an exchange that merges the streams of source,
// each sorted on ordering, into a single sorted stream.
func MergingExchange(
	id plan.ID, scope plan.ExchangeScope, source plan.Node, ordering opt.Ordering,
) *plan.Exchange {
	ex := GatheringExchange(id, scope, source)
	ex.Ordering = ordering
	return ex
}

// PartitionedExchange returns an exchange that hash partitions the rows of
// source on cols. The hash scheme matches the one used by aggregations of
// type aggType.
func PartitionedExchange(
	id plan.ID,
	scope plan.ExchangeScope,
	source plan.Node,
	cols opt.ColList,
	aggType plan.AggregationType,
) *plan.Exchange {
	ex := newExchange(
		id, plan.RepartitionExchange, scope,
		plan.PartitioningScheme{Handle: plan.FixedHashPartitioning, Cols: cols},
		source,
	)
	ex.AggType = aggType
	return ex
}

// ArbitraryExchange returns an exchange that distributes the rows of source
// round-robin among a fixed number of streams.
func ArbitraryExchange(id plan.ID, scope plan.ExchangeScope, source plan.Node) *plan.Exchange {
	return newExchange(
		id, plan.RepartitionExchange, scope,
		plan.PartitioningScheme{Handle: plan.FixedArbitraryPartitioning},
		source,
	)
}
