// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plan

import "github.com/cockroachdb/localex/pkg/sql/opt"

// Step distinguishes the partial and final halves of an operator that is
// split across an exchange.
type Step uint8

const (
	// StepSingle is an operator that is not split.
	StepSingle Step = iota
	// StepPartial operates independently on each stream.
	StepPartial
	// StepIntermediate combines partial results without finalizing them.
	StepIntermediate
	// StepFinal combines the partial results into the final result.
	StepFinal
)

var stepNames = [...]string{"single", "partial", "intermediate", "final"}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return "unknown"
}

// AggregationType is the strategy used to group rows in an aggregation. It
// also selects the hash scheme used by a repartitioning exchange that feeds
// the aggregation, so that both agree on how rows are hashed.
type AggregationType uint8

const (
	// HashAggregation groups rows in a hash table.
	HashAggregation AggregationType = iota
	// SortAggregation groups rows that arrive sorted on the grouping keys.
	SortAggregation
)

func (t AggregationType) String() string {
	if t == SortAggregation {
		return "sort"
	}
	return "hash"
}

// ExchangeType describes what an exchange does with its input streams.
type ExchangeType uint8

const (
	// GatherExchange combines all input streams into a single stream.
	GatherExchange ExchangeType = iota
	// RepartitionExchange redistributes rows among a set of output streams.
	RepartitionExchange
	// ReplicateExchange copies every row to every output stream.
	ReplicateExchange
)

func (t ExchangeType) String() string {
	switch t {
	case GatherExchange:
		return "gather"
	case RepartitionExchange:
		return "repartition"
	case ReplicateExchange:
		return "replicate"
	}
	return "unknown"
}

// ExchangeScope is the scope of an exchange.
type ExchangeScope uint8

const (
	// LocalScope exchanges move rows between pipelines of the same process.
	LocalScope ExchangeScope = iota
	// RemoteScope exchanges move rows between machines.
	RemoteScope
)

func (s ExchangeScope) String() string {
	if s == RemoteScope {
		return "remote"
	}
	return "local"
}

// PartitioningHandle identifies a partitioning function.
type PartitioningHandle uint8

const (
	// SinglePartitioning puts all rows in one partition.
	SinglePartitioning PartitioningHandle = iota
	// FixedHashPartitioning hashes the partitioning columns into a fixed
	// number of partitions.
	FixedHashPartitioning
	// FixedArbitraryPartitioning distributes rows round-robin among a fixed
	// number of partitions.
	FixedArbitraryPartitioning
	// FixedBroadcastPartitioning sends every row to every partition.
	FixedBroadcastPartitioning
	// SourcePartitioning keeps the partitioning of the data source.
	SourcePartitioning
	// ConnectorPartitioning is a partitioning function defined by the storage
	// of a table.
	ConnectorPartitioning
)

var partitioningNames = [...]string{
	"single", "fixed-hash", "fixed-arbitrary", "fixed-broadcast", "source", "connector",
}

func (h PartitioningHandle) String() string {
	if int(h) < len(partitioningNames) {
		return partitioningNames[h]
	}
	return "unknown"
}

// ParsePartitioningHandle returns the handle with the given name.
func ParsePartitioningHandle(name string) (PartitioningHandle, bool) {
	for i, n := range partitioningNames {
		if n == name {
			return PartitioningHandle(i), true
		}
	}
	return 0, false
}

// PartitioningScheme describes how rows are assigned to partitions.
type PartitioningScheme struct {
	Handle PartitioningHandle
	// Cols are the arguments of the partitioning function.
	Cols opt.ColList
}

// JoinType is the type of a join.
type JoinType uint8

const (
	// InnerJoin returns the matching rows of both sides.
	InnerJoin JoinType = iota
	// LeftJoin also returns the unmatched rows of the probe (left) side.
	LeftJoin
	// RightJoin also returns the unmatched rows of the build (right) side.
	RightJoin
	// FullJoin also returns the unmatched rows of both sides.
	FullJoin
)

var joinTypeNames = [...]string{"inner", "left", "right", "full"}

func (t JoinType) String() string {
	if int(t) < len(joinTypeNames) {
		return joinTypeNames[t]
	}
	return "unknown"
}

// ParseJoinType returns the join type with the given name.
func ParseJoinType(name string) (JoinType, bool) {
	for i, n := range joinTypeNames {
		if n == name {
			return JoinType(i), true
		}
	}
	return 0, false
}

// Spill records whether a join may spill to disk. It is decided during local
// exchange placement.
type Spill uint8

const (
	// SpillUndecided is the zero value: spilling has not been considered.
	SpillUndecided Spill = iota
	// Spillable joins may spill to disk.
	Spillable
	// NotSpillable joins never spill.
	NotSpillable
)

func (s Spill) String() string {
	switch s {
	case Spillable:
		return "spillable"
	case NotSpillable:
		return "not-spillable"
	}
	return ""
}

// WriterTarget is the kind of table write performed by a table writer.
type WriterTarget uint8

const (
	// InsertTarget inserts rows into an existing table.
	InsertTarget WriterTarget = iota
	// CreateTarget creates a table and inserts rows into it.
	CreateTarget
	// UpdateTarget rewrites updated rows.
	UpdateTarget
	// DeleteAsInsertTarget deletes rows by writing tombstones.
	DeleteAsInsertTarget
)

var writerTargetNames = [...]string{"insert", "create", "update", "delete-as-insert"}

func (t WriterTarget) String() string {
	if int(t) < len(writerTargetNames) {
		return writerTargetNames[t]
	}
	return "unknown"
}

// ParseWriterTarget returns the writer target with the given name.
func ParseWriterTarget(name string) (WriterTarget, bool) {
	for i, n := range writerTargetNames {
		if n == name {
			return WriterTarget(i), true
		}
	}
	return 0, false
}

// EquiJoinCondition is a pair of columns that a join compares for equality.
type EquiJoinCondition struct {
	Left  opt.ColumnID
	Right opt.ColumnID
}

// Assignment computes one output column of a Project.
type Assignment struct {
	Col opt.ColumnID
	// From is the input column that is passed through unchanged, or 0 if the
	// assignment computes a new value.
	From opt.ColumnID
	// Constant is set when the assignment always produces the same value.
	Constant bool
}

// Aggregate is one aggregate function computed by an Aggregation.
type Aggregate struct {
	Col  opt.ColumnID
	Func string
	// Decomposable aggregates can be split into partial and final steps.
	Decomposable bool
}

// WindowFunc is one function computed by a Window.
type WindowFunc struct {
	Col  opt.ColumnID
	Func string
}
