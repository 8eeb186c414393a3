// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt"
	"github.com/cockroachdb/localex/pkg/sql/opt/props"
)

// Distribution describes how many parallel streams carry the output of an
// operator.
type Distribution uint8

const (
	// DistributionUnspecified is the zero value. It is only valid in
	// StreamPrefs, where it means "no preference".
	DistributionUnspecified Distribution = iota
	// DistributionSingle is exactly one stream.
	DistributionSingle
	// DistributionFixed is a known, fixed number of parallel streams that does
	// not depend on the data.
	DistributionFixed
	// DistributionMultiple is an arbitrary or unknown number of parallel
	// streams.
	DistributionMultiple
)

func (d Distribution) String() string {
	switch d {
	case DistributionUnspecified:
		return "any"
	case DistributionSingle:
		return "single"
	case DistributionFixed:
		return "fixed"
	case DistributionMultiple:
		return "multiple"
	}
	return "unknown"
}

// StreamProps are the stream properties actually provided by the output of a
// plan node. They are derived bottom-up.
//
// A single stream always has a known, empty partitioning: there is only one
// partition, which trivially satisfies any request to be partitioned on some
// subset of columns.
type StreamProps struct {
	// Distribution is never DistributionUnspecified.
	Distribution Distribution

	// Partitioning lists the columns whose values determine which stream a row
	// belongs to. It is only meaningful when Partitioned is true.
	Partitioning opt.ColList

	// Partitioned is false when the partitioning is unknown or there is none.
	Partitioned bool

	// Local are the properties that hold within each stream.
	Local []props.LocalProperty
}

// SingleStream returns the properties of a single stream.
func SingleStream() StreamProps {
	return StreamProps{Distribution: DistributionSingle, Partitioned: true}
}

// FixedStreams returns the properties of a fixed number of streams with an
// unknown partitioning.
func FixedStreams() StreamProps {
	return StreamProps{Distribution: DistributionFixed}
}

// MultipleStreams returns the properties of an arbitrary number of streams
// with an unknown partitioning.
func MultipleStreams() StreamProps {
	return StreamProps{Distribution: DistributionMultiple}
}

// PartitionedStreams returns the properties of a fixed number of streams that
// are hash partitioned on the given columns.
func PartitionedStreams(cols opt.ColList) StreamProps {
	return FixedStreams().WithPartitioning(cols)
}

// WithPartitioning returns a copy of the properties that are partitioned on
// the given columns. A single stream is left unchanged.
func (p StreamProps) WithPartitioning(cols opt.ColList) StreamProps {
	if p.Distribution == DistributionSingle {
		return p
	}
	p.Partitioning = cols
	p.Partitioned = true
	return p
}

// WithUnknownPartitioning returns a copy of the properties where the
// partitioning is no longer known. A single stream is left unchanged.
func (p StreamProps) WithUnknownPartitioning() StreamProps {
	if p.Distribution == DistributionSingle {
		return p
	}
	p.Partitioning = nil
	p.Partitioned = false
	return p
}

// WithLocal returns a copy of the properties with the given local
// properties.
func (p StreamProps) WithLocal(local []props.LocalProperty) StreamProps {
	p.Local = local
	return p
}

// WithoutLocal returns a copy of the properties with no local properties.
func (p StreamProps) WithoutLocal() StreamProps {
	p.Local = nil
	return p
}

// IsSingleStream returns true if there is exactly one stream.
func (p *StreamProps) IsSingleStream() bool {
	return p.Distribution == DistributionSingle
}

// IsPartitionedOn returns true if the streams are partitioned on a subset of
// the given columns. Rows with equal values for all the given columns are
// then guaranteed to be in the same stream.
func (p *StreamProps) IsPartitionedOn(cols opt.ColSet) bool {
	return p.Partitioned && opt.ColListToSet(p.Partitioning).SubsetOf(cols)
}

// IsExactlyPartitionedOn returns true if the streams are partitioned on
// exactly the given set of columns.
func (p *StreamProps) IsExactlyPartitionedOn(cols opt.ColSet) bool {
	return p.Partitioned && opt.ColListToSet(p.Partitioning).Equals(cols)
}

// Translate maps the columns of the properties through fn. The partitioning
// becomes unknown if any of its columns cannot be mapped; local properties are
// translated with props.Translate.
func (p StreamProps) Translate(fn func(opt.ColumnID) (opt.ColumnID, bool)) StreamProps {
	if p.Partitioned && p.Distribution != DistributionSingle {
		newCols := make(opt.ColList, 0, len(p.Partitioning))
		for _, col := range p.Partitioning {
			to, ok := fn(col)
			if !ok {
				p = p.WithUnknownPartitioning()
				break
			}
			newCols = append(newCols, to)
		}
		if p.Partitioned {
			p.Partitioning = newCols
		}
	}
	p.Local = props.Translate(p.Local, fn)
	return p
}

// Verify checks the internal consistency of the properties.
func (p *StreamProps) Verify() {
	if p.Distribution == DistributionUnspecified || p.Distribution > DistributionMultiple {
		panic(errors.AssertionFailedf("invalid stream distribution %d", p.Distribution))
	}
	if p.Distribution == DistributionSingle && (!p.Partitioned || len(p.Partitioning) != 0) {
		panic(errors.AssertionFailedf("single stream with partitioning %v", p.Partitioning))
	}
	if !p.Partitioned && len(p.Partitioning) != 0 {
		panic(errors.AssertionFailedf("unknown partitioning with columns %v", p.Partitioning))
	}
}

// Equals returns true if the two sets of properties are identical.
func (p *StreamProps) Equals(rhs *StreamProps) bool {
	return p.Distribution == rhs.Distribution &&
		p.Partitioned == rhs.Partitioned &&
		opt.ColListEquals(p.Partitioning, rhs.Partitioning) &&
		props.Equal(p.Local, rhs.Local)
}

func (p StreamProps) String() string {
	return p.Format(nil)
}

// Format prints the properties, for example "fixed on (a) [sorted(+b)]".
func (p *StreamProps) Format(md *opt.Metadata) string {
	var buf strings.Builder
	buf.WriteString(p.Distribution.String())
	if p.Partitioned && p.Distribution != DistributionSingle {
		buf.WriteString(" on ")
		buf.WriteString(opt.FormatColList(md, p.Partitioning))
	}
	if len(p.Local) > 0 {
		buf.WriteByte(' ')
		buf.WriteString(props.Format(md, p.Local))
	}
	return buf.String()
}
