// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import (
	"strings"

	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/sessiondata"
)

// StreamPrefs describe the stream properties that a consumer requires (or
// would like) from its input. They flow top-down. StreamPrefs is an immutable
// value: every method returns a new value.
//
// An order-sensitive preference is always satisfied by a single stream. Its
// strict form, created by WithOrderSensitivity, is satisfied by nothing else.
// The relaxed forms returned by WithoutPreference and WithParallelism accept
// parallel streams too, so that an operator below an order-sensitive consumer
// can run in parallel without breaking up a stream that is already ordered.
type StreamPrefs struct {
	// distribution is DistributionUnspecified when there is no preference.
	distribution Distribution

	// partitioning is only meaningful when partitioned is true.
	partitioning opt.ColList
	partitioned  bool

	// exactColumns requires the actual partitioning to be on exactly the
	// partitioning columns, rather than on some subset of them.
	exactColumns bool

	// orderSensitive is set when the consumer depends on the order of rows.
	orderSensitive bool

	// ordering is the order that must be preserved when the streams are
	// gathered, if any.
	ordering opt.Ordering
}

// AnyPrefs returns a preference that is satisfied by any input.
func AnyPrefs() StreamPrefs {
	return StreamPrefs{}
}

// SingleStreamPrefs returns a preference for a single stream.
func SingleStreamPrefs() StreamPrefs {
	return StreamPrefs{distribution: DistributionSingle}
}

// FixedParallelismPrefs returns a preference for a fixed number of parallel
// streams, with any partitioning.
func FixedParallelismPrefs() StreamPrefs {
	return StreamPrefs{distribution: DistributionFixed}
}

// DefaultParallelismPrefs returns a preference for parallel streams when the
// session allows it, and no preference otherwise.
func DefaultParallelismPrefs(sd *sessiondata.SessionData) StreamPrefs {
	return AnyPrefs().WithDefaultParallelism(sd)
}

// PartitionedOnPrefs returns a preference for fixed parallel streams that are
// partitioned on some subset of the given columns.
func PartitionedOnPrefs(cols opt.ColList) StreamPrefs {
	return StreamPrefs{distribution: DistributionFixed, partitioning: cols, partitioned: true}
}

// ExactlyPartitionedOnPrefs returns a preference for fixed parallel streams
// that are partitioned on exactly the given columns.
func ExactlyPartitionedOnPrefs(cols opt.ColList) StreamPrefs {
	return StreamPrefs{
		distribution: DistributionFixed,
		partitioning: cols,
		partitioned:  true,
		exactColumns: true,
	}
}

// Distribution returns the preferred distribution, which is
// DistributionUnspecified if there is no preference.
func (p StreamPrefs) Distribution() Distribution {
	return p.distribution
}

// PartitioningCols returns the preferred partitioning columns. The second
// return value is false if there is no partitioning preference.
func (p StreamPrefs) PartitioningCols() (opt.ColList, bool) {
	return p.partitioning, p.partitioned
}

// ExactColumns returns true if the partitioning must be on exactly the
// partitioning columns.
func (p StreamPrefs) ExactColumns() bool {
	return p.exactColumns
}

// OrderSensitive returns true if the consumer depends on the order of rows.
func (p StreamPrefs) OrderSensitive() bool {
	return p.orderSensitive
}

// Ordering returns the ordering that must be preserved when the input streams
// are gathered.
func (p StreamPrefs) Ordering() opt.Ordering {
	return p.ordering
}

// IsSingleStreamPreferred returns true if the preference is for a single
// stream.
func (p StreamPrefs) IsSingleStreamPreferred() bool {
	return p.distribution == DistributionSingle
}

// IsParallelPreferred returns true if the preference is for parallel streams.
func (p StreamPrefs) IsParallelPreferred() bool {
	return p.distribution == DistributionFixed || p.distribution == DistributionMultiple
}

// WithoutPreference drops the distribution and partitioning preferences. The
// result is satisfied by any input, but remembers the order sensitivity.
func (p StreamPrefs) WithoutPreference() StreamPrefs {
	if p.orderSensitive {
		return StreamPrefs{orderSensitive: true, ordering: p.ordering}
	}
	return AnyPrefs()
}

// WithDefaultParallelism prefers parallel streams if the session runs more
// than one driver per pipeline and does not favor streaming operators.
func (p StreamPrefs) WithDefaultParallelism(sd *sessiondata.SessionData) StreamPrefs {
	if sd.TaskConcurrency > 1 && !sd.PreferStreamingOperators {
		return p.WithParallelism()
	}
	return p
}

// WithParallelism prefers an arbitrary number of parallel streams. An
// existing parallel preference is not overridden. An order-sensitive
// preference stays order-sensitive, and is then satisfied by either a single
// stream or parallel streams.
func (p StreamPrefs) WithParallelism() StreamPrefs {
	if p.IsParallelPreferred() {
		return p
	}
	return StreamPrefs{
		distribution:   DistributionMultiple,
		orderSensitive: p.orderSensitive,
		ordering:       p.ordering,
	}
}

// WithFixedParallelism prefers a fixed number of parallel streams.
func (p StreamPrefs) WithFixedParallelism() StreamPrefs {
	if p.distribution == DistributionFixed {
		return p
	}
	return FixedParallelismPrefs()
}

// WithPartitioning prefers streams that are partitioned on the given
// columns. An empty list of columns can only be satisfied by a single stream.
//
// An existing partitioning preference is kept when it can be satisfied
// together with the new one: an exact preference on the same columns is
// returned unchanged, and a non-exact preference that shares columns with
// cols is narrowed to the shared columns.
//
// Repartitioning loses the order of rows anyway, so the result is not
// order-sensitive. A parallel distribution preference is kept, while a single
// stream that was only preferred because of the order sensitivity is dropped.
func (p StreamPrefs) WithPartitioning(cols opt.ColList) StreamPrefs {
	if len(cols) == 0 {
		return SingleStreamPrefs()
	}
	desired := cols
	if p.partitioned {
		if p.exactColumns {
			if opt.ColListEquals(p.partitioning, cols) {
				return p
			}
		} else {
			colSet := opt.ColListToSet(cols)
			var common opt.ColList
			for _, col := range p.partitioning {
				if colSet.Contains(int(col)) {
					common = append(common, col)
				}
			}
			if len(common) > 0 {
				desired = common
			}
		}
	}
	distribution := p.distribution
	if p.orderSensitive && distribution == DistributionSingle {
		distribution = DistributionUnspecified
	}
	return StreamPrefs{
		distribution: distribution,
		partitioning: desired,
		partitioned:  true,
	}
}

// WithOrderSensitivity makes the preference strictly order-sensitive. Since
// order can only be preserved in a single stream, the result requires a
// single stream and drops any partitioning preference.
func (p StreamPrefs) WithOrderSensitivity() StreamPrefs {
	return StreamPrefs{
		distribution:   DistributionSingle,
		orderSensitive: true,
		ordering:       p.ordering,
	}
}

// WithOrdering is like WithOrderSensitivity, but additionally requires that
// the given ordering be preserved when the input streams are gathered.
func (p StreamPrefs) WithOrdering(ordering opt.Ordering) StreamPrefs {
	res := p.WithOrderSensitivity()
	res.ordering = ordering
	return res
}

// ConstrainTo removes the references to columns outside of cols, so that the
// preference can be imposed on an input that only produces cols:
//
//   - an exact partitioning on a column that is not in cols cannot be
//     satisfied, so the preference is dropped entirely;
//   - a non-exact partitioning is narrowed to the columns in cols, and is
//     dropped entirely if none remain;
//   - an ordering on a column that is not in cols is dropped together with
//     the order sensitivity.
func (p StreamPrefs) ConstrainTo(cols opt.ColSet) StreamPrefs {
	if len(p.ordering) > 0 && !p.ordering.ColSet().SubsetOf(cols) {
		p.ordering = nil
		p.orderSensitive = false
	}
	if !p.partitioned {
		return p
	}
	if p.exactColumns {
		if opt.ColListToSet(p.partitioning).SubsetOf(cols) {
			return p
		}
		return AnyPrefs()
	}
	var common opt.ColList
	for _, col := range p.partitioning {
		if cols.Contains(int(col)) {
			common = append(common, col)
		}
	}
	if len(common) == 0 {
		return AnyPrefs()
	}
	return StreamPrefs{
		distribution: p.distribution,
		partitioning: common,
		partitioned:  true,
	}
}

// IsSatisfiedBy returns true if the actual stream properties satisfy the
// preference.
func (p StreamPrefs) IsSatisfiedBy(actual *StreamProps) bool {
	if p.orderSensitive && actual.IsSingleStream() {
		return true
	}
	if p.distribution == DistributionUnspecified && !p.partitioned {
		return true
	}
	if p.partitioned {
		cols := opt.ColListToSet(p.partitioning)
		if p.exactColumns {
			return actual.IsExactlyPartitionedOn(cols)
		}
		return actual.IsPartitionedOn(cols)
	}
	switch p.distribution {
	case DistributionSingle:
		return actual.Distribution == DistributionSingle
	case DistributionFixed:
		return actual.Distribution == DistributionFixed
	default:
		return actual.Distribution == DistributionFixed || actual.Distribution == DistributionMultiple
	}
}

// Equals returns true if the two preferences are identical.
func (p StreamPrefs) Equals(rhs StreamPrefs) bool {
	return p.distribution == rhs.distribution &&
		p.partitioned == rhs.partitioned &&
		opt.ColListEquals(p.partitioning, rhs.partitioning) &&
		p.exactColumns == rhs.exactColumns &&
		p.orderSensitive == rhs.orderSensitive &&
		p.ordering.Equals(rhs.ordering)
}

func (p StreamPrefs) String() string {
	return p.Format(nil)
}

// Format prints the preference, for example "fixed partitioned on (a)" or
// "single order-sensitive +b".
func (p StreamPrefs) Format(md *opt.Metadata) string {
	var buf strings.Builder
	buf.WriteString(p.distribution.String())
	if p.partitioned {
		if p.exactColumns {
			buf.WriteString(" exactly")
		}
		buf.WriteString(" partitioned on ")
		buf.WriteString(opt.FormatColList(md, p.partitioning))
	}
	if p.orderSensitive {
		buf.WriteString(" order-sensitive")
	}
	if len(p.ordering) > 0 {
		buf.WriteByte(' ')
		buf.WriteString(p.ordering.Format(md))
	}
	return buf.String()
}
